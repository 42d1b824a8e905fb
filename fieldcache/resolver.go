package fieldcache

import (
	"context"

	"github.com/goliatone/go-graphql-field-cache/cache"
)

// Resolver is the integration point the host engine's suspension hook
// invokes. It owns no algorithm of its own: it builds the cache key from the
// resolution context and hands the computation thunk to the marshal engine.
type Resolver struct {
	marshal *Marshal
	keys    cache.KeyBuilder
}

// NewResolver wires a marshal engine and key builder into a resolver.
func NewResolver(marshal *Marshal, keys cache.KeyBuilder) *Resolver {
	return &Resolver{marshal: marshal, keys: keys}
}

// ResolveField resolves one field through the cache. Fields whose directive
// is disabled invoke the thunk directly with no key construction and no
// store traffic.
func (r *Resolver) ResolveField(ctx context.Context, res cache.Resolution, thunk Thunk) (any, error) {
	if !res.Directive.Enabled {
		return thunk(ctx)
	}

	key := r.keys.Build(res)
	opts := ReadOptions{
		TTL:   res.Directive.TTL,
		Force: ForceRefreshFromContext(ctx),
	}
	return r.marshal.Read(ctx, key, opts, thunk)
}

// Invalidate drops the cached entry for the given resolution, if any.
func (r *Resolver) Invalidate(ctx context.Context, res cache.Resolution) error {
	return r.marshal.Invalidate(ctx, r.keys.Build(res))
}

// Key exposes the key the resolver would use for a resolution. Useful for
// diagnostics and external invalidation.
func (r *Resolver) Key(res cache.Resolution) string {
	return r.keys.Build(res)
}
