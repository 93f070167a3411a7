package cache

import (
	"fmt"

	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// QueryCacheFactory picks the query cache backend from configuration
type QueryCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	client                *redis.Client
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// QueryCacheFactoryOption configures the factory
type QueryCacheFactoryOption func(*QueryCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) QueryCacheFactoryOption {
	return func(f *QueryCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls falling back to the in-memory cache when Redis
// is unavailable. Default true.
func WithInMemoryFallback(allow bool) QueryCacheFactoryOption {
	return func(f *QueryCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRedisClient reuses an already connected client
func WithRedisClient(client *redis.Client) QueryCacheFactoryOption {
	return func(f *QueryCacheFactory) {
		f.client = client
	}
}

// NewQueryCacheFactory creates a new factory
func NewQueryCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...QueryCacheFactoryOption) *QueryCacheFactory {
	f := &QueryCacheFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a noop cache when caching is disabled, Redis when it is
// configured and reachable, and the in-memory cache otherwise
func (f *QueryCacheFactory) Create() (QueryCache, error) {
	if !f.cacheConfig.Enabled {
		f.logger.Info("Query cache disabled")
		return NoopQueryCache{}, nil
	}

	if f.client != nil {
		f.logger.Info("Using Redis query cache", zap.String("prefix", f.cacheConfig.Prefix))
		return NewRedisQueryCache(f.client, f.cacheConfig.Prefix), nil
	}

	if f.redisConfig.Enabled() {
		client, err := NewRedisClient(f.redisConfig)
		if err == nil {
			f.logger.Info("Using Redis query cache", zap.String("addr", f.redisConfig.Addr()))
			c := NewRedisQueryCache(client, f.cacheConfig.Prefix)
			c.ownsClient = true
			return c, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for query cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory query cache. "+
			"Invalidations will not be shared between instances.",
			zap.Error(err),
		)
	}

	return NewInMemoryQueryCache(defaultCleanupInterval), nil
}
