package di

import (
	"context"
	"testing"

	"github.com/goliatone/go-graphql-field-cache/cache"
	"github.com/goliatone/go-graphql-field-cache/pkg/testsupport"
)

func TestNewContainerWithDefaults(t *testing.T) {
	c, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if c.Resolver() == nil {
		t.Error("expected a resolver instance")
	}
	if c.Marshal() == nil {
		t.Error("expected a marshal instance")
	}
	if c.Store() == nil {
		t.Error("expected a default store instance")
	}
	if c.KeyBuilder() == nil {
		t.Error("expected a key builder instance")
	}
	if got := c.Config().Namespace; got != cache.DefaultNamespace {
		t.Errorf("expected default namespace but got: %q", got)
	}
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.TTL = 0

	if _, err := NewContainer(cfg, nil); err == nil {
		t.Error("expected an invalid config to be rejected")
	}
}

func TestNewContainer_UsesProvidedStore(t *testing.T) {
	store := testsupport.NewRecordingStore()

	c, err := NewContainer(cache.DefaultConfig(), store)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if c.Store() != cache.Store(store) {
		t.Error("expected the container to keep the provided store")
	}
}

func TestContainer_SingletonAccessors(t *testing.T) {
	c, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if c.Resolver() != c.Resolver() {
		t.Error("expected the same resolver instance on every call")
	}
	if c.Store() != c.Store() {
		t.Error("expected the same store instance on every call")
	}
}

func TestContainer_ResolveWithMultilineArgument(t *testing.T) {
	c, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	res := cache.Resolution{
		ParentType: "Query",
		Field:      "search",
		Args:       []cache.Arg{{Name: "term", Value: "line1\nline2"}},
		Directive:  cache.Directive{Enabled: true},
	}
	ctx := context.Background()

	got, err := c.Resolver().ResolveField(ctx, res, func(ctx context.Context) (any, error) {
		return "computed", nil
	})
	if err != nil {
		t.Fatalf("expected resolution to survive a hostile argument but got: %v", err)
	}
	if got != "computed" {
		t.Errorf("expected 'computed' but got: %v", got)
	}

	// The write landed under the digested key, so the next call is a hit.
	got, err = c.Resolver().ResolveField(ctx, res, func(ctx context.Context) (any, error) {
		t.Error("expected the cached value, not a recomputation")
		return "recomputed", nil
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != "computed" {
		t.Errorf("expected cached 'computed' but got: %v", got)
	}
}

func TestContainer_EndToEndResolve(t *testing.T) {
	store := testsupport.NewRecordingStore()
	cfg := cache.DefaultConfig()
	cfg.Namespace = "api"

	c, err := NewContainer(cfg, store)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	res := cache.Resolution{
		ParentType: "Query",
		Field:      "viewer",
		Directive:  cache.Directive{Enabled: true},
	}
	ctx := context.Background()

	got, err := c.Resolver().ResolveField(ctx, res, func(ctx context.Context) (any, error) {
		return "v1", nil
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != "v1" {
		t.Errorf("expected 'v1' but got: %v", got)
	}

	// The configured namespace flows through to the built key.
	if _, ok := store.Entry("api:Query:viewer::"); !ok {
		t.Error("expected an entry under the namespaced key")
	}

	got, err = c.Resolver().ResolveField(ctx, res, func(ctx context.Context) (any, error) {
		t.Error("expected the cached value, not a recomputation")
		return "v2", nil
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != "v1" {
		t.Errorf("expected cached 'v1' but got: %v", got)
	}
}
