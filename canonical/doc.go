// Package canonical reduces arbitrary resolved values to the store-safe
// canonical form: primitives, ordered lists of canonical values, and
// string-keyed mappings of canonical values.
//
// # Overview
//
// Two collaborators do the work:
//
//   - Deconstructor: strips engine envelopes (typed object wrappers,
//     paginated connection wrappers, lazy handles) down to plain data
//   - Sanitizer: recursively cleans that data under depth and cycle bounds
//
// Values are classified once into a closed set of semantic shapes (Shape)
// and the cleaning algorithm dispatches on the tag. Callables and runtime
// handles are dropped; records flagged dangerous by type name are reduced
// to an opaque summary {class, id?, name?, timestamp?}; identity-bearing
// records become attribute mappings with id and class injected.
//
// # Deferred values
//
// A value that is not yet available is represented by Lazy. Deconstructing
// a deferred value yields a deferred canonical value, never a blocking
// wait: continuations registered with WhenResolved fire once the engine
// resolves the handle. Host engines plug their own future types in via the
// Resolvable interface.
//
// # Termination
//
// Clean always terminates. Recursion is bounded by the configured MaxDepth,
// and a visited set scoped to the current recursion stack breaks cycles;
// the set is released on subtree exit so sibling branches never observe
// stale markers.
package canonical
