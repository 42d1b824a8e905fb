package fieldcache

import "context"

type forceRefreshContextKey struct{}

// WithForceRefresh marks the context so that resolutions bypass the cache
// lookup and recompute, overwriting stored values. Used to programmatically
// punch through a stale cache for one request.
func WithForceRefresh(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, forceRefreshContextKey{}, true)
}

// ForceRefreshFromContext reports whether the context carries the
// force-refresh mark.
func ForceRefreshFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	force, ok := ctx.Value(forceRefreshContextKey{}).(bool)
	return ok && force
}
