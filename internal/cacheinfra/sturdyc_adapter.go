package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-graphql-field-cache/cache"
)

// Config holds the configuration for the sturdyc memory store adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the client-wide time-to-live for cached entries. sturdyc does
	// not support per-entry TTLs, so per-field expiries passed to Write are
	// clamped by this value.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	// Default: 10 (evict 10% of entries)
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                cache.DefaultTTL,
		EvictionPercentage: 10,
		EvictionInterval:   0, // Use default
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included in the options.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycStore adapts a sturdyc client to the cache.Store contract. Values
// are held in process memory without serialization, so this adapter never
// rejects a value; the serialization-failure recovery path only engages with
// stores that encode (see the redis adapter).
type sturdycStore struct {
	client *sturdyc.Client[any]
}

var _ cache.Store = (*sturdycStore)(nil)

// NewSturdycStore creates a new in-memory store backed by sturdyc.
// It validates the configuration and initializes a sturdyc client with the
// provided settings.
//
// Version compatibility note: this implementation assumes sturdyc v1.x API.
// Monitor sturdyc version upgrades for potential option mapping changes.
func NewSturdycStore(cfg Config) (*sturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycStore{client: client}, nil
}

// Read implements cache.Store.Read. Absence is the boolean; a stored nil or
// empty value is still a hit.
func (s *sturdycStore) Read(ctx context.Context, key string) (any, bool, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Write implements cache.Store.Write. The ttl argument is accepted for
// contract compatibility but entries expire on the client-wide TTL.
func (s *sturdycStore) Write(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	s.client.Set(key, value)
	return nil
}

// Delete implements cache.Store.Delete.
func (s *sturdycStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}
