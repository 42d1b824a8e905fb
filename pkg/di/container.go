package di

import (
	"github.com/goliatone/go-graphql-field-cache/cache"
	"github.com/goliatone/go-graphql-field-cache/fieldcache"
	"github.com/goliatone/go-graphql-field-cache/internal/cacheinfra"
)

// Container provides dependency injection for the field-cache components.
// It manages singleton instances of the store, key builder, and marshal
// engine, and exposes the resolver the host engine's hook invokes.
type Container struct {
	resolver *fieldcache.Resolver
	marshal  *fieldcache.Marshal
	store    cache.Store
	keys     cache.KeyBuilder
	config   cache.Config
}

// NewContainer creates a DI container wiring the provided configuration and
// store. A nil store gets an in-memory sturdyc store sized with adapter
// defaults and the configured TTL.
func NewContainer(config cache.Config, store cache.Store) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if store == nil {
		storeCfg := cacheinfra.DefaultConfig()
		storeCfg.TTL = config.TTL

		var err error
		store, err = cacheinfra.NewSturdycStore(storeCfg)
		if err != nil {
			return nil, err
		}
	}

	keys := cache.NewDefaultKeyBuilder(config.Namespace)
	marshal := fieldcache.NewMarshal(store, config)

	return &Container{
		resolver: fieldcache.NewResolver(marshal, keys),
		marshal:  marshal,
		store:    store,
		keys:     keys,
		config:   config,
	}, nil
}

// NewContainerWithDefaults creates a container using default configuration
// and the in-memory store. This is the typical single-process setup.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig(), nil)
}

// NewRedisContainer creates a container backed by a redis store, for
// deployments sharing one cache across processes.
func NewRedisContainer(config cache.Config, redisConfig cacheinfra.RedisConfig) (*Container, error) {
	store, err := cacheinfra.NewRedisStore(redisConfig)
	if err != nil {
		return nil, err
	}
	return NewContainer(config, store)
}

// Resolver returns the resolver the host engine's suspension hook invokes.
func (c *Container) Resolver() *fieldcache.Resolver {
	return c.resolver
}

// Marshal returns the read-through engine for callers that manage their own
// keys.
func (c *Container) Marshal() *fieldcache.Marshal {
	return c.marshal
}

// Store returns the singleton store instance.
func (c *Container) Store() cache.Store {
	return c.store
}

// KeyBuilder returns the singleton key builder instance.
func (c *Container) KeyBuilder() cache.KeyBuilder {
	return c.keys
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}
