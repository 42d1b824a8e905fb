package cache

import "time"

// Arg is a single named field argument. Argument order is significant: the
// host engine hands us arguments in their declared order and the key builder
// flattens them in that same order.
type Arg struct {
	Name  string
	Value any
}

// Directive carries the per-field caching options the host engine collected
// from the schema (enabled flag, explicit key source, expiry override).
type Directive struct {
	// Enabled toggles caching for the field. A disabled directive makes the
	// resolver glue invoke the underlying computation directly.
	Enabled bool

	// KeyAttribute names a field on the parent object whose value becomes
	// the object identity clause of the key.
	KeyAttribute string

	// KeyFunc derives the object identity from the parent object and the
	// full resolution. It is consulted only when KeyAttribute is empty.
	KeyFunc func(object any, res Resolution) any

	// KeyLiteral is a fixed identity value, consulted only when both
	// KeyAttribute and KeyFunc are unset.
	KeyLiteral any

	// TTL overrides the process-wide default expiry when greater than zero.
	TTL time.Duration
}

// Resolution is the immutable context of a single field resolution attempt:
// the object being resolved, the field identity, and the ordered arguments.
// It is constructed once per resolution and never mutated or shared.
type Resolution struct {
	// Object is the parent object the field is being resolved on. Nil for
	// root fields.
	Object any

	// Args holds the field arguments in declaration order.
	Args []Arg

	// ParentType is the GraphQL type name the field belongs to, e.g. "User".
	ParentType string

	// Field is the field name, e.g. "posts".
	Field string

	// Directive holds the per-field cache options.
	Directive Directive
}

// Fingerprinter is implemented by domain objects that carry a version-aware
// cache identity (for example "users/1-20240131094512"). It takes precedence
// over plain ID fields when the key builder probes for object identity.
type Fingerprinter interface {
	CacheFingerprint() string
}
