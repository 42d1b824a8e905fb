package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-graphql-field-cache/cache"
)

// RedisConfig holds the connection options for the redis store adapter.
type RedisConfig struct {
	// Addr is the host:port of the redis server.
	Addr string

	// Password authenticates the connection. Empty means no auth.
	Password string

	// DB selects the redis logical database.
	DB int

	// MaxRetries is the number of retries the client performs before
	// giving up on a command.
	MaxRetries int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections kept open.
	MinIdleConns int

	// DialTimeout bounds the initial connectivity check.
	DialTimeout time.Duration
}

// DefaultRedisConfig returns connection defaults for a local redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
	}
}

// redisStore adapts a redis client to the cache.Store contract. Values are
// encoded with msgpack on write; encoding failures are reported as
// cache.ErrUnsupportedValue so the marshal engine can re-clean and retry.
type redisStore struct {
	client *redis.Client
}

var _ cache.Store = (*redisStore)(nil)

// NewRedisStore connects to redis and verifies connectivity with a ping.
func NewRedisStore(cfg RedisConfig) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisStore{client: client}, nil
}

// Read implements cache.Store.Read. redis.Nil is the miss signal; every
// other error is a store outage and propagates.
func (s *redisStore) Read(ctx context.Context, key string) (any, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var decoded any
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		return nil, false, err
	}
	return decoded, true, nil
}

// Write implements cache.Store.Write with per-entry TTLs.
func (s *redisStore) Write(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}

	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", cache.ErrUnsupportedValue, err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Delete implements cache.Store.Delete. Idempotent; no error on miss.
func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close releases the underlying client connections.
func (s *redisStore) Close() error {
	return s.client.Close()
}
