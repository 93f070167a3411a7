package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix     = "doorsets:query:"
	defaultScanBatchSize = 100
	pingTimeout          = 5 * time.Second
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisQueryCache implements QueryCache on Redis so that every API instance
// sees the same invalidations
type RedisQueryCache struct {
	client     *redis.Client
	ownsClient bool
	keyPrefix  string
}

// NewRedisQueryCache wraps a shared client. The caller keeps ownership.
func NewRedisQueryCache(client *redis.Client, keyPrefix string) *RedisQueryCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisQueryCache{client: client, keyPrefix: keyPrefix}
}

// Get reads a key
func (c *RedisQueryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache get: %w", err)
	}
	return raw, true, nil
}

// Set writes a key with expiry
func (c *RedisQueryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("query cache set: %w", err)
	}
	return nil
}

// InvalidatePrefix deletes matching keys in SCAN batches
func (c *RedisQueryCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := c.keyPrefix + prefix + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("query cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("query cache delete: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close releases the client if this cache created it
func (c *RedisQueryCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ QueryCache = (*RedisQueryCache)(nil)
