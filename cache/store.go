package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum length of a cache key before the key builder
// digests the arguments clause.
const MaxKeyLength = 512

// Sentinel errors shared by store adapters.
var (
	// ErrUnsupportedValue is wrapped by store adapters when a value cannot be
	// serialized for storage. The marshal engine treats it as a soft failure
	// and re-cleans the value once before giving up on the write.
	ErrUnsupportedValue = errors.New("cache: value cannot be serialized for storage")

	// ErrInvalidKey is returned when a key is empty or contains characters
	// that backends reject.
	ErrInvalidKey = errors.New("cache: key is invalid")
)

// Store is the key-value collaborator the marshal engine writes through.
//
// Contract:
//   - Read returns (value, true, nil) on a hit and (nil, false, nil) on a
//     miss. Absence is the boolean, never an error; stored falsy values
//     (empty strings, zero, nil entries) are still hits.
//   - Write stores value under key for ttl. Adapters that serialize values
//     must wrap ErrUnsupportedValue when serialization fails; any other
//     error is treated as a store outage and propagates.
//   - Implementations must be safe for concurrent use.
type Store interface {
	Read(ctx context.Context, key string) (any, bool, error)
	Write(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks whether a key is acceptable to the common backends.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
