package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/doorsets/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// QueryCache stores serialized query results by key
type QueryCache interface {
	// Get returns the cached bytes and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidatePrefix drops every key starting with prefix
	InvalidatePrefix(ctx context.Context, prefix string) error
	Close() error
}

// EntityPrefix is the key prefix shared by all cached queries of an entity
func EntityPrefix(entity string) string {
	return entity + ":"
}

// ListKey builds the cache key of a GetAll query. Equal filters give equal keys
// regardless of map ordering.
func ListKey(entity string, filter shared.Filter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p=%d|s=%d|o=%s|d=%s|q=%s",
		filter.Page, filter.PageSize, filter.OrderBy, strings.ToLower(filter.OrderDir), filter.Search)

	keys := make([]string, 0, len(filter.Filters))
	for k := range filter.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, filter.Filters[k])
	}

	return fmt.Sprintf("%slist:%016x", EntityPrefix(entity), xxhash.Sum64String(b.String()))
}

// GetOrLoad returns the cached value for key or calls load and caches its result.
// Cache failures are logged and never fail the query.
func GetOrLoad[T any](ctx context.Context, c QueryCache, key string, ttl time.Duration, logger *zap.Logger, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if raw, ok, err := c.Get(ctx, key); err != nil {
		logger.Warn("Query cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Query result not cacheable", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		logger.Warn("Query cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// NoopQueryCache never stores anything. Used when the cache is disabled.
type NoopQueryCache struct{}

func (NoopQueryCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopQueryCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopQueryCache) InvalidatePrefix(context.Context, string) error { return nil }

func (NoopQueryCache) Close() error { return nil }

var _ QueryCache = NoopQueryCache{}
