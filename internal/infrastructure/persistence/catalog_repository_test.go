package persistence

import (
	"context"
	"testing"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedItem(t *testing.T, db *gorm.DB, code string, qty, reorder int, cost string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(code, catalog.ItemDetails{
		Name:         "Item " + code,
		UnitCost:     decimal.RequireFromString(cost),
		ReorderLevel: reorder,
	}, qty)
	require.NoError(t, err)
	require.NoError(t, NewGormItemRepository(db).Save(context.Background(), item))
	return item
}

func TestGormCategoryRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormCategoryRepository(db)

	c, err := catalog.NewCategory("Hinges", "Door hinges")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))
	require.NotZero(t, c.ID)

	t.Run("name uniqueness is case-insensitive", func(t *testing.T) {
		dup, err := repo.ExistsByName(ctx, "hinges", 0)
		require.NoError(t, err)
		assert.True(t, dup)

		self, err := repo.ExistsByName(ctx, "HINGES", c.ID)
		require.NoError(t, err)
		assert.False(t, self)
	})

	t.Run("referenced by items", func(t *testing.T) {
		item := seedItem(t, db, "H-1", 1, 0, "1")
		item.CategoryID = &c.ID
		require.NoError(t, NewGormItemRepository(db).Save(ctx, item))

		used, err := repo.IsReferenced(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, 9999), shared.ErrNotFound)
	})
}

func TestGormItemRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormItemRepository(db)

	seedItem(t, db, "LOCK-1", 2, 5, "10")
	seedItem(t, db, "LOCK-2", 20, 5, "12")
	seedItem(t, db, "HINGE-1", 0, 0, "3")

	t.Run("search and paginate", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Search = "lock"
		f.PageSize = 1
		items, total, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 1)
		assert.Equal(t, "LOCK-2", items[0].Code)
	})

	t.Run("low stock filter", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["low_stock"] = true
		f.OrderBy = "code"
		f.OrderDir = "asc"
		items, total, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, "HINGE-1", items[0].Code)
		assert.Equal(t, "LOCK-1", items[1].Code)
	})

	t.Run("page size zero returns everything", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 3)
	})

	t.Run("low stock list", func(t *testing.T) {
		items, err := repo.FindLowStock(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "LOCK-1", items[0].Code)
	})
}

func TestGormItemRepository_SaveWithMovement(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	item := seedItem(t, db, "FRAME-1", 10, 2, "5")

	mv, err := item.RemoveStock(4, catalog.MovementProduction, "PL-000001")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithMovement(ctx, item, mv))
	assert.NotZero(t, mv.ID)

	stored, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Quantity)

	movements, total, err := repo.FindByItem(ctx, item.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, -4, movements[0].Delta)
	assert.Equal(t, 6, movements[0].QuantityAfter)
	assert.Equal(t, "PL-000001", movements[0].Reference)

	t.Run("stale copy conflicts", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		fresh, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		mv1, err := fresh.AddStock(1, catalog.MovementReceipt, "PO-000001")
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithMovement(ctx, fresh, mv1))

		mv2, err := stale.RemoveStock(1, catalog.MovementProduction, "PL-000002")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.SaveWithMovement(ctx, stale, mv2), shared.ErrConcurrencyConflict)
	})
}

func TestGormItemRepository_Save(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	item := seedItem(t, db, "PANEL-1", 3, 1, "12")

	t.Run("stale copy does not overwrite stock", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		require.Equal(t, 3, stale.Quantity)

		fresh, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		mv, err := fresh.AdjustStock(50, catalog.MovementAdjustment, "count")
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithMovement(ctx, fresh, mv))

		d := stale.Details()
		d.Name = "Panel renamed"
		require.NoError(t, stale.Update(d))
		require.NoError(t, repo.Save(ctx, stale))

		stored, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, stored.Quantity)
		assert.Equal(t, "Panel renamed", stored.Name)
	})

	t.Run("missing row", func(t *testing.T) {
		ghost, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		ghost.ID = 9999
		assert.ErrorIs(t, repo.Save(ctx, ghost), shared.ErrNotFound)
	})
}

func TestGormItemRepository_StockLevelsAndSummary(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	a := seedItem(t, db, "A", 3, 5, "2.5")
	b := seedItem(t, db, "B", 10, 1, "1")

	levels, err := repo.StockLevels(ctx, []uint{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{a.ID: 3, b.ID: 10}, levels)

	sum, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.ItemCount)
	assert.Equal(t, int64(1), sum.LowStockCount)
	assert.True(t, sum.TotalValue.Equal(decimal.RequireFromString("17.5")), sum.TotalValue.String())
}

func TestGormAssemblyRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormAssemblyRepository(db)
	hinge := seedItem(t, db, "HINGE", 50, 0, "1")
	leaf := seedItem(t, db, "LEAF", 5, 0, "40")

	a, err := catalog.NewAssembly("door-std", "Standard door", "", nil)
	require.NoError(t, err)
	require.NoError(t, a.SetComponents([]catalog.Requirement{{ItemID: hinge.ID, Quantity: 3}, {ItemID: leaf.ID, Quantity: 1}}))
	require.NoError(t, repo.Save(ctx, a))

	loaded, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Components, 2)
	assert.Equal(t, hinge.ID, loaded.Components[0].ItemID)

	require.NoError(t, loaded.SetComponents([]catalog.Requirement{{ItemID: leaf.ID, Quantity: 2}}))
	require.NoError(t, repo.Save(ctx, loaded))

	again, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, again.Components, 1)
	assert.Equal(t, 2, again.Components[0].Quantity)

	used, err := NewGormItemRepository(db).IsReferenced(ctx, leaf.ID)
	require.NoError(t, err)
	assert.True(t, used)

	dup, err := repo.ExistsByCode(ctx, "DOOR-STD", 0)
	require.NoError(t, err)
	assert.True(t, dup)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
