//go:build integration

package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/doorsets/backend/internal/application/transaction"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories_Postgres(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewPostgresDB(t)
	items := NewGormItemRepository(db)
	pickLists := NewGormPickListRepository(db)
	orders := NewGormPurchaseOrderRepository(db)

	supplier, err := partner.NewSupplier(partner.Contact{Name: "Hinge Co"}, "", 5)
	require.NoError(t, err)
	require.NoError(t, NewGormSupplierRepository(db).Save(ctx, supplier))
	customer, err := partner.NewCustomer(partner.Contact{Name: "Harbour Builders"})
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(ctx, customer))

	hinge := seedItem(t, db, "HNG-1", 2, 10, "2.50")
	lock := seedItem(t, db, "LCK-1", 20, 5, "10.00")

	t.Run("duplicate code is rejected by the unique index", func(t *testing.T) {
		dup, err := catalog.NewItem("hng-1", catalog.ItemDetails{Name: "Again"}, 0)
		require.NoError(t, err)
		assert.Error(t, items.Save(ctx, dup))
	})

	t.Run("stock movement and summary", func(t *testing.T) {
		mv, err := hinge.AddStock(3, catalog.MovementReceipt, "PO-000001")
		require.NoError(t, err)
		require.NoError(t, items.SaveWithMovement(ctx, hinge, mv))

		stale, err := items.FindByID(ctx, lock.ID)
		require.NoError(t, err)
		mv, err = lock.RemoveStock(4, catalog.MovementProduction, "PL-000001")
		require.NoError(t, err)
		require.NoError(t, items.SaveWithMovement(ctx, lock, mv))

		mv, err = stale.RemoveStock(1, catalog.MovementProduction, "PL-000002")
		require.NoError(t, err)
		assert.ErrorIs(t, items.SaveWithMovement(ctx, stale, mv), shared.ErrConcurrencyConflict)

		sum, err := items.Summary(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, sum.ItemCount)
		assert.EqualValues(t, 1, sum.LowStockCount)
		assert.True(t, decimal.RequireFromString("172.50").Equal(sum.TotalValue), sum.TotalValue.String())

		low, err := items.FindLowStock(ctx)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, "HNG-1", low[0].Code)
	})

	t.Run("pick list with linked purchase order", func(t *testing.T) {
		pl, err := production.NewPickList(production.Header{CustomerID: customer.ID, Title: "Block A"})
		require.NoError(t, err)
		require.NoError(t, pl.AddLine(hinge.ID, 8))
		require.NoError(t, pickLists.Save(ctx, pl))
		assert.Equal(t, production.FormatNumber(pl.ID), pl.Number)

		po, err := purchasing.NewPurchaseOrder(purchasing.Header{SupplierID: supplier.ID, PickListID: &pl.ID})
		require.NoError(t, err)
		require.NoError(t, po.AddLine(hinge.ID, 3, decimal.RequireFromString("2.50")))
		require.NoError(t, orders.Save(ctx, po))

		require.NoError(t, pl.LinkPurchaseOrder([]uint{pl.Lines[0].ID}, po.ID))
		require.NoError(t, pickLists.Save(ctx, pl))

		loaded, err := pickLists.FindByID(ctx, pl.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Lines, 1)
		assert.Equal(t, &po.ID, loaded.Lines[0].PurchaseOrderID)

		f := shared.DefaultFilter()
		f.Filters["statuses"] = []string{"open", "in_production"}
		_, total, err := pickLists.FindAll(ctx, f)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("transaction scope rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := NewGormTransactionScope(db).Execute(ctx, func(repos transaction.Repositories) error {
			it, err := repos.Items().FindByID(ctx, lock.ID)
			if err != nil {
				return err
			}
			mv, err := it.AddStock(100, catalog.MovementAdjustment, "test")
			if err != nil {
				return err
			}
			if err := repos.Items().SaveWithMovement(ctx, it, mv); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		levels, err := items.StockLevels(ctx, []uint{lock.ID})
		require.NoError(t, err)
		assert.Equal(t, 16, levels[lock.ID])
	})
}
