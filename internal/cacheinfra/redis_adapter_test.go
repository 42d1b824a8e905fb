package cacheinfra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-graphql-field-cache/cache"
)

func newRedisTestStore(t *testing.T) (*redisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()

	store, err := NewRedisStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestNewRedisStore_FailsWhenUnreachable(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "localhost:1"
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.MaxRetries = 0

	_, err := NewRedisStore(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()
	key := "graphql:Query:author::"

	_, ok, err := store.Read(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "expected a clean miss before the first write")

	value := map[string]any{"id": "7", "class": "author", "name": "Ada"}
	require.NoError(t, store.Write(ctx, key, value, time.Minute))

	got, ok, err := store.Read(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	decoded, ok := got.(map[string]any)
	require.True(t, ok, "expected a decoded mapping, got %T", got)
	assert.Equal(t, "7", decoded["id"])
	assert.Equal(t, "author", decoded["class"])
	assert.Equal(t, "Ada", decoded["name"])
}

func TestRedisStore_WriteSetsTTL(t *testing.T) {
	store, mr := newRedisTestStore(t)
	key := "graphql:Query:viewer::"

	require.NoError(t, store.Write(context.Background(), key, "v1", 90*time.Second))
	assert.Equal(t, 90*time.Second, mr.TTL(key))
}

func TestRedisStore_UnsupportedValue(t *testing.T) {
	store, _ := newRedisTestStore(t)

	err := store.Write(context.Background(), "graphql:T:f::", func() {}, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrUnsupportedValue)
}

func TestRedisStore_WriteValidatesKey(t *testing.T) {
	store, _ := newRedisTestStore(t)

	err := store.Write(context.Background(), "  ", "v1", time.Minute)
	assert.ErrorIs(t, err, cache.ErrInvalidKey)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()
	key := "graphql:Query:viewer::"

	require.NoError(t, store.Write(ctx, key, "v1", time.Minute))
	require.NoError(t, store.Delete(ctx, key))

	_, ok, err := store.Read(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key stays silent.
	require.NoError(t, store.Delete(ctx, key))
}

func TestRedisStore_ReadAfterServerStop(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()
	key := "graphql:Query:viewer::"

	require.NoError(t, store.Write(ctx, key, "v1", time.Minute))
	mr.Close()

	_, _, err := store.Read(ctx, key)
	assert.Error(t, err, "expected an outage, not a silent miss")
}
