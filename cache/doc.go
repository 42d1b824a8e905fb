// Package cache provides the key builder, store contract, and configuration
// for GraphQL field-resolution caching.
//
// # Overview
//
// This package exports the two contracts the rest of the module is built on:
//
//   - KeyBuilder: builds a stable cache key from one field resolution
//   - Store: the external key-value collaborator values are written through
//
// # Key format
//
// Keys are five clauses joined with ":":
//
//	namespace:parentType:field:argumentsClause:objectClause
//
// Arguments flatten to alternating name/value tokens in their declared
// order; the object clause is "<class>:<identity>". Both clauses stay in
// position when empty, so a bare root field produces "graphql:Query:things::".
//
// # Key serialization strategy
//
// Argument values are serialized with reflection to keep keys deterministic
// across runs:
//
//   - Basic types: direct string representation
//   - Slices/arrays: recursive serialization of elements
//   - Maps: sorted key-value pairs for deterministic output
//   - Structs: exported fields with name:value pairs
//   - Function pointers: %p formatting, stable within a process only
//   - Complex types: JSON fallback with error handling
//
// # Object identity
//
// The identity half of the object clause is resolved in a fixed order: the
// directive's explicit attribute, its derive function, its literal value,
// the object's CacheFingerprint, a plain ID field, and finally a runtime
// identity token. The last resort means key construction never fails;
// caching fails open to unique-per-instance keys instead.
//
// # Error handling
//
// The package prioritizes stability over perfection. When JSON marshaling
// of an argument fails, serialization falls back to type information rather
// than panicking, so key construction continues even with problematic
// argument types. Tokens carrying control characters are replaced with a
// stable digest, so built keys always satisfy ValidateKey regardless of
// what the argument or identity values contain.
//
// # See Also
//
// For the read-through engine that consumes these keys, see the fieldcache
// package. For value reduction, see the canonical package.
package cache
