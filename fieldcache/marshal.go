package fieldcache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-graphql-field-cache/cache"
	"github.com/goliatone/go-graphql-field-cache/canonical"
)

// Thunk is the suspended field computation the engine hands us. It is only
// invoked on a cache miss.
type Thunk func(ctx context.Context) (any, error)

// ReadOptions carries the per-call options for one read-through cycle.
type ReadOptions struct {
	// TTL overrides the configured default expiry when greater than zero.
	TTL time.Duration

	// Force skips the store lookup and recomputes unconditionally,
	// overwriting whatever is cached.
	Force bool
}

// Marshal orchestrates the read-through protocol: key lookup, computation,
// deconstruction, sanitization, and the store write, including the
// deferred-write continuation for lazy resolved values.
type Marshal struct {
	store  cache.Store
	decon  *canonical.Deconstructor
	strict *canonical.Sanitizer
	cfg    cache.Config
	logger *zap.Logger
	group  *singleflight.Group
}

// NewMarshal creates the read-through engine over the given store.
func NewMarshal(store cache.Store, cfg cache.Config) *Marshal {
	m := &Marshal{
		store:  store,
		decon:  canonical.NewDeconstructor(canonical.NewSanitizer(cfg.MaxDepth)),
		strict: canonical.NewSanitizer(cfg.StrictDepth),
		cfg:    cfg,
		logger: cfg.LoggerOrNop().With(zap.String("component", "fieldcache")),
	}
	if cfg.SingleFlight {
		m.group = &singleflight.Group{}
	}
	return m
}

// Read implements read-or-compute-and-write semantics for one key.
//
// On a hit the stored canonical value is returned verbatim and the thunk is
// never invoked. On a miss the thunk runs, its raw result is deconstructed,
// and the canonical form is written to the store, synchronously for plain
// values and via a continuation for deferred ones. In both miss paths the raw
// resolved value is what the caller gets back, preserving the engine's own
// deferred-value contract.
//
// Thunk errors propagate unchanged: caching must not mask a genuine
// resolution error.
func (m *Marshal) Read(ctx context.Context, key string, opts ReadOptions, thunk Thunk) (any, error) {
	if m.group != nil && !opts.Force {
		v, err, _ := m.group.Do(key, func() (any, error) {
			return m.read(ctx, key, opts, thunk)
		})
		return v, err
	}
	return m.read(ctx, key, opts, thunk)
}

func (m *Marshal) read(ctx context.Context, key string, opts ReadOptions, thunk Thunk) (any, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = m.cfg.TTL
	}

	if !opts.Force {
		stored, ok, err := m.store.Read(ctx, key)
		if err != nil {
			// Store outages are the store client's problem; no retry here.
			return nil, err
		}
		if ok {
			m.logger.Debug("cache hit", zap.String("key", key))
			return stored, nil
		}
		m.logger.Debug("cache miss", zap.String("key", key))
	}

	raw, err := thunk(ctx)
	if err != nil {
		return nil, err
	}

	out := m.decon.Deconstruct(raw)
	if lazy, ok := out.(*canonical.Lazy); ok {
		// The caller gets the raw value now; the write happens once the
		// value materializes. The detached context keeps the continuation
		// alive past the resolution call that registered it.
		writeCtx := context.WithoutCancel(ctx)
		lazy.WhenResolved(func(v any) {
			if err := m.write(writeCtx, key, v, ttl); err != nil {
				m.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
			}
		})
		return raw, nil
	}

	if err := m.write(ctx, key, out, ttl); err != nil {
		return nil, err
	}
	return raw, nil
}

// write stores the canonical value. A serialization rejection triggers
// exactly one re-clean at the stricter depth and one retry; a second
// serialization failure is logged and swallowed so a failed cache write
// never fails the overall field resolution.
func (m *Marshal) write(ctx context.Context, key string, value any, ttl time.Duration) error {
	err := m.store.Write(ctx, key, value, ttl)
	if err == nil {
		return nil
	}
	if !errors.Is(err, cache.ErrUnsupportedValue) {
		return err
	}

	recleaned := m.strict.Clean(value)
	retryErr := m.store.Write(ctx, key, recleaned, ttl)
	if retryErr == nil {
		m.logger.Debug("cache write successful after cleaning", zap.String("key", key))
		return nil
	}
	if !errors.Is(retryErr, cache.ErrUnsupportedValue) {
		return retryErr
	}

	m.logger.Debug("cache write skipped", zap.String("key", key), zap.Error(retryErr))
	return nil
}

// Invalidate removes a single key from the store.
func (m *Marshal) Invalidate(ctx context.Context, key string) error {
	return m.store.Delete(ctx, key)
}
