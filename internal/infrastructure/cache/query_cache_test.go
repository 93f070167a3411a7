package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListKey(t *testing.T) {
	a := shared.DefaultFilter()
	a.Filters["status"] = "open"
	a.Filters["customer_id"] = uint(3)

	b := shared.DefaultFilter()
	b.Filters["customer_id"] = uint(3)
	b.Filters["status"] = "open"

	assert.Equal(t, ListKey("PickList", a), ListKey("PickList", b))
	assert.Contains(t, ListKey("PickList", a), "PickList:list:")

	b.Page = 2
	assert.NotEqual(t, ListKey("PickList", a), ListKey("PickList", b))
	assert.NotEqual(t, ListKey("PickList", a), ListKey("PurchaseOrder", a))
}

func TestInMemoryQueryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryQueryCache(time.Hour)
	defer c.Close()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "Item:list:1", []byte(`[1]`), time.Minute))
		v, ok, err := c.Get(ctx, "Item:list:1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`[1]`), v)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "Item:list:2", []byte(`x`), 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)
		_, ok, err := c.Get(ctx, "Item:list:2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate prefix", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "Customer:list:a", []byte(`a`), time.Minute))
		require.NoError(t, c.Set(ctx, "Customer:list:b", []byte(`b`), time.Minute))
		require.NoError(t, c.Set(ctx, "Supplier:list:a", []byte(`s`), time.Minute))

		require.NoError(t, c.InvalidatePrefix(ctx, EntityPrefix("Customer")))

		_, ok, _ := c.Get(ctx, "Customer:list:a")
		assert.False(t, ok)
		_, ok, _ = c.Get(ctx, "Supplier:list:a")
		assert.True(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		other := NewInMemoryQueryCache(0)
		assert.NoError(t, other.Close())
		assert.NoError(t, other.Close())
	})
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryQueryCache(time.Hour)
	defer c.Close()

	calls := 0
	load := func() (shared.Paginated[string], error) {
		calls++
		return shared.NewPaginated([]string{"a", "b"}, 2, 1, 20), nil
	}

	first, err := GetOrLoad(ctx, c, "Item:list:x", time.Minute, nil, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "Item:list:x", time.Minute, nil, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	t.Run("load errors are not cached", func(t *testing.T) {
		_, err := GetOrLoad(ctx, c, "Item:list:err", time.Minute, nil, func() (int, error) {
			return 0, errors.New("db down")
		})
		assert.Error(t, err)
		_, ok, _ := c.Get(ctx, "Item:list:err")
		assert.False(t, ok)
	})

	t.Run("nil cache loads directly", func(t *testing.T) {
		v, err := GetOrLoad(ctx, nil, "k", time.Minute, nil, func() (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}

func TestInvalidationHandler(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryQueryCache(time.Hour)
	defer c.Close()
	h := NewInvalidationHandler(c, nil)
	assert.Empty(t, h.EventTypes())

	seed := func() {
		for _, k := range []string{"Item:list:1", "PurchaseOrder:list:1", "Customer:list:1", "PickList:list:1", "Supplier:list:1"} {
			require.NoError(t, c.Set(ctx, k, []byte(`1`), time.Minute))
		}
	}
	present := func(key string) bool {
		_, ok, _ := c.Get(ctx, key)
		return ok
	}

	t.Run("customer change invalidates customers and pick lists", func(t *testing.T) {
		seed()
		require.NoError(t, h.Handle(ctx, shared.NewEntityChangedEvent("Customer", 1, shared.ActionDeleted)))
		assert.False(t, present("Customer:list:1"))
		assert.False(t, present("PickList:list:1"))
		assert.True(t, present("Item:list:1"))
		assert.True(t, present("PurchaseOrder:list:1"))
	})

	t.Run("supplier change invalidates purchase orders", func(t *testing.T) {
		seed()
		require.NoError(t, h.Handle(ctx, shared.NewEntityChangedEvent("Supplier", 2, shared.ActionUpdated)))
		assert.False(t, present("Supplier:list:1"))
		assert.False(t, present("PurchaseOrder:list:1"))
		assert.True(t, present("PickList:list:1"))
	})

	t.Run("item rename invalidates pick lists and purchase orders", func(t *testing.T) {
		seed()
		require.NoError(t, h.Handle(ctx, shared.NewEntityChangedEvent("Item", 3, shared.ActionUpdated)))
		assert.False(t, present("Item:list:1"))
		assert.False(t, present("PickList:list:1"))
		assert.False(t, present("PurchaseOrder:list:1"))
		assert.True(t, present("Customer:list:1"))
		assert.True(t, present("Supplier:list:1"))
	})

	t.Run("purchase order events also invalidate items", func(t *testing.T) {
		seed()
		require.NoError(t, h.Handle(ctx, shared.NewEntityChangedEvent("PurchaseOrder", 4, shared.ActionUpdated)))
		assert.False(t, present("PurchaseOrder:list:1"))
		assert.False(t, present("Item:list:1"))
		assert.True(t, present("Customer:list:1"))
	})

	t.Run("stock change invalidates items", func(t *testing.T) {
		seed()
		item := &catalog.Item{Code: "HINGE"}
		item.ID = 9
		require.NoError(t, h.Handle(ctx, catalog.NewItemStockChangedEvent(item, 3, catalog.MovementAdjustment)))
		assert.False(t, present("Item:list:1"))
	})
}

func TestQueryCacheFactory(t *testing.T) {
	t.Run("disabled gives noop", func(t *testing.T) {
		c, err := NewQueryCacheFactory(config.RedisConfig{}, config.CacheConfig{}).Create()
		require.NoError(t, err)
		assert.IsType(t, NoopQueryCache{}, c)
	})

	t.Run("enabled without redis gives in-memory", func(t *testing.T) {
		c, err := NewQueryCacheFactory(config.RedisConfig{}, config.CacheConfig{Enabled: true}).Create()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryQueryCache{}, c)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		redisCfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
		c, err := NewQueryCacheFactory(redisCfg, config.CacheConfig{Enabled: true}).Create()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryQueryCache{}, c)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		redisCfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
		_, err := NewQueryCacheFactory(redisCfg, config.CacheConfig{Enabled: true}, WithInMemoryFallback(false)).Create()
		assert.Error(t, err)
	})
}
