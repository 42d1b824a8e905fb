package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// DefaultNamespace is the leading clause of every cache key.
const DefaultNamespace = "graphql"

// DefaultTTL is the process-wide default expiry for cached field values.
const DefaultTTL = 5400 * time.Second

// Config holds the process-wide caching options. It is constructed once at
// startup and passed by reference into the key builder and marshal engine;
// there is no package-level mutable state.
type Config struct {
	// Namespace is the leading clause of every cache key.
	Namespace string

	// TTL is the default expiry applied when a field's directive does not
	// supply one.
	TTL time.Duration

	// MaxDepth bounds the sanitizer's recursion. A value nested deeper than
	// MaxDepth levels is dropped.
	MaxDepth int

	// StrictDepth is the tighter bound used for the single re-clean pass
	// after a store rejects a value for serialization reasons.
	StrictDepth int

	// SingleFlight de-duplicates concurrent misses on the same key. Off by
	// default: two concurrent misses may both compute and both write, with
	// last write winning at the store.
	SingleFlight bool

	// Logger receives hit/miss/skip diagnostics at debug level.
	Logger *zap.Logger
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Namespace:   DefaultNamespace,
		TTL:         DefaultTTL,
		MaxDepth:    10,
		StrictDepth: 3,
		Logger:      zap.NewNop(),
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxDepth, validation.Required, validation.Min(1)),
		validation.Field(&c.StrictDepth, validation.Required, validation.Min(1), validation.Max(c.MaxDepth)),
	)
}

// LoggerOrNop returns the configured logger, or a no-op logger when unset.
func (c Config) LoggerOrNop() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
