package purchasing

import (
	"context"
	"testing"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
	"github.com/doorsets/backend/internal/infrastructure/persistence"
	"github.com/doorsets/backend/internal/infrastructure/printing"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	ctx       context.Context
	svc       *PurchaseOrderService
	items     *persistence.GormItemRepository
	suppliers *persistence.GormSupplierRepository
	pickLists *persistence.GormPickListRepository
	events    *testutil.EventRecorder
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	events := testutil.NewEventRecorder()

	f := &orderFixture{
		ctx:       context.Background(),
		items:     persistence.NewGormItemRepository(db),
		suppliers: persistence.NewGormSupplierRepository(db),
		pickLists: persistence.NewGormPickListRepository(db),
		events:    events,
	}
	f.svc = NewPurchaseOrderService(
		persistence.NewGormPurchaseOrderRepository(db),
		f.suppliers,
		f.items,
		f.pickLists,
		persistence.NewGormTransactionScope(db),
		printing.NewDocumentService(nil, nil, nil, printing.DocumentConfig{CompanyName: "DoorSets"}, nil),
		common.NewSupport(events, nil, 0, nil),
	)
	return f
}

func (f *orderFixture) supplier(t *testing.T, name string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(partner.Contact{Name: name, Email: "sales@example.com"}, "", 5)
	require.NoError(t, err)
	require.NoError(t, f.suppliers.Save(f.ctx, s))
	return s
}

func (f *orderFixture) item(t *testing.T, code string, qty int, cost string, supplierID *uint) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(code, catalog.ItemDetails{
		Name:       "Item " + code,
		UnitCost:   decimal.RequireFromString(cost),
		SupplierID: supplierID,
	}, qty)
	require.NoError(t, err)
	require.NoError(t, f.items.Save(f.ctx, item))
	return item
}

func (f *orderFixture) stock(t *testing.T, id uint) int {
	t.Helper()
	item, err := f.items.FindByID(f.ctx, id)
	require.NoError(t, err)
	return item.Quantity
}

func (f *orderFixture) pickList(t *testing.T, lines map[uint]int, order ...uint) *production.PickList {
	t.Helper()
	pl, err := production.NewPickList(production.Header{CustomerID: 1, Title: "Block B"})
	require.NoError(t, err)
	for _, id := range order {
		require.NoError(t, pl.AddLine(id, lines[id]))
	}
	require.NoError(t, f.pickLists.Save(f.ctx, pl))
	return pl
}

func TestPurchaseOrderService_CreateAndEdit(t *testing.T) {
	f := newOrderFixture(t)
	sup := f.supplier(t, "Ironmongery Ltd")
	hinge := f.item(t, "HNG-1", 0, "2.50", &sup.ID)
	lock := f.item(t, "LCK-1", 0, "12.00", &sup.ID)
	custom := decimal.RequireFromString("11.25")

	po, err := f.svc.Create(f.ctx, PurchaseOrderRequest{
		SupplierID: sup.ID,
		Lines: []LineRequest{
			{ItemID: hinge.ID, Quantity: 10},
			{ItemID: lock.ID, Quantity: 2, UnitCost: &custom},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, purchasing.FormatNumber(po.ID), po.Number)
	assert.Equal(t, "draft", po.Status)
	assert.Equal(t, "Ironmongery Ltd", po.SupplierName)
	require.Len(t, po.Lines, 2)
	assert.True(t, decimal.RequireFromString("2.50").Equal(po.Lines[0].UnitCost), "defaults to the item cost")
	assert.True(t, custom.Equal(po.Lines[1].UnitCost))
	assert.True(t, decimal.RequireFromString("47.50").Equal(po.Total))
	assert.Equal(t, 12, po.TotalOrdered)

	t.Run("unknown supplier", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx, PurchaseOrderRequest{SupplierID: 404})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown pick list", func(t *testing.T) {
		missing := uint(404)
		_, err := f.svc.Create(f.ctx, PurchaseOrderRequest{SupplierID: sup.ID, PickListID: &missing})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("add line merges", func(t *testing.T) {
		updated, err := f.svc.AddLine(f.ctx, po.ID, LineRequest{ItemID: hinge.ID, Quantity: 5})
		require.NoError(t, err)
		require.Len(t, updated.Lines, 2)
		assert.Equal(t, 15, updated.Lines[0].Quantity)
	})

	t.Run("update and remove line", func(t *testing.T) {
		updated, err := f.svc.UpdateLine(f.ctx, po.ID, po.Lines[1].ID, UpdateLineRequest{Quantity: 3, UnitCost: custom})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Lines[1].Quantity)

		updated, err = f.svc.RemoveLine(f.ctx, po.ID, po.Lines[1].ID)
		require.NoError(t, err)
		assert.Len(t, updated.Lines, 1)
	})

	t.Run("export", func(t *testing.T) {
		file, err := f.svc.Export(f.ctx, PurchaseOrderListQuery{}, export.FormatCSV)
		require.NoError(t, err)
		assert.Contains(t, string(file.Content), po.Number)
		assert.Contains(t, string(file.Content), "HNG-1")
	})

	t.Run("print html", func(t *testing.T) {
		out, err := f.svc.Print(f.ctx, po.ID, printing.PrintOptions{Format: printing.FormatHTML})
		require.NoError(t, err)
		assert.Contains(t, string(out.Content), po.Number)
		assert.Contains(t, string(out.Content), "Ironmongery Ltd")
	})

	t.Run("draft can be deleted", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(f.ctx, po.ID))
		_, err := f.svc.GetByID(f.ctx, po.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPurchaseOrderService_Receive(t *testing.T) {
	f := newOrderFixture(t)
	sup := f.supplier(t, "Timber Co")
	board := f.item(t, "BRD-1", 4, "8.00", &sup.ID)

	po, err := f.svc.Create(f.ctx, PurchaseOrderRequest{SupplierID: sup.ID, Lines: []LineRequest{{ItemID: board.ID, Quantity: 10}}})
	require.NoError(t, err)
	lineID := po.Lines[0].ID

	_, err = f.svc.Receive(f.ctx, po.ID, ReceiveRequest{Lines: []ReceiptLineRequest{{LineID: lineID, Quantity: 1}}})
	assert.ErrorIs(t, err, shared.ErrInvalidState, "drafts cannot be received")

	placed, err := f.svc.Place(f.ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "ordered", placed.Status)
	assert.NotNil(t, placed.OrderDate)

	f.events.Reset()
	partial, err := f.svc.Receive(f.ctx, po.ID, ReceiveRequest{Lines: []ReceiptLineRequest{{LineID: lineID, Quantity: 6}}})
	require.NoError(t, err)
	assert.Equal(t, "partially_received", partial.Status)
	assert.Equal(t, 6, partial.TotalReceived)
	assert.Equal(t, 4, partial.TotalRemaining)
	assert.Equal(t, 10, f.stock(t, board.ID))
	assert.Contains(t, f.events.Types(), purchasing.EventTypePurchaseOrderReceived)
	assert.Contains(t, f.events.Types(), catalog.EventTypeItemStockChanged)

	movements, _, err := f.items.FindByItem(f.ctx, board.ID, shared.Filter{Page: 1, PageSize: 10, Filters: map[string]any{"reason": "receipt"}})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 6, movements[0].Delta)
	assert.Equal(t, 10, movements[0].QuantityAfter)
	assert.Equal(t, po.Number, movements[0].Reference)

	t.Run("over receipt is rejected and changes nothing", func(t *testing.T) {
		_, err := f.svc.Receive(f.ctx, po.ID, ReceiveRequest{Lines: []ReceiptLineRequest{{LineID: lineID, Quantity: 5}}})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Equal(t, 10, f.stock(t, board.ID))
	})

	t.Run("cannot cancel after a receipt", func(t *testing.T) {
		_, err := f.svc.Cancel(f.ctx, po.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("final receipt", func(t *testing.T) {
		done, err := f.svc.Receive(f.ctx, po.ID, ReceiveRequest{Lines: []ReceiptLineRequest{{LineID: lineID, Quantity: 4}}})
		require.NoError(t, err)
		assert.Equal(t, "received", done.Status)
		assert.Equal(t, 14, f.stock(t, board.ID))
		assert.ErrorIs(t, f.svc.Delete(f.ctx, po.ID), shared.ErrInvalidState)
	})
}

func TestPurchaseOrderService_CancelUnlinksPickLists(t *testing.T) {
	f := newOrderFixture(t)
	sup := f.supplier(t, "Glass Works")
	pane := f.item(t, "GLS-1", 0, "30.00", &sup.ID)
	pl := f.pickList(t, map[uint]int{pane.ID: 2}, pane.ID)

	po, err := f.svc.Create(f.ctx, PurchaseOrderRequest{SupplierID: sup.ID, PickListID: &pl.ID, Lines: []LineRequest{{ItemID: pane.ID, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, pl.Number, po.PickListNumber)

	loaded, err := f.pickLists.FindByID(f.ctx, pl.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.LinkPurchaseOrder([]uint{loaded.Lines[0].ID}, po.ID))
	require.NoError(t, f.pickLists.Save(f.ctx, loaded))

	_, err = f.svc.Place(f.ctx, po.ID)
	require.NoError(t, err)
	cancelled, err := f.svc.Cancel(f.ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	after, err := f.pickLists.FindByID(f.ctx, pl.ID)
	require.NoError(t, err)
	assert.Nil(t, after.Lines[0].PurchaseOrderID)
	assert.False(t, after.Lines[0].MadeOrder)

	require.NoError(t, f.svc.Delete(f.ctx, po.ID), "cancelled orders can be deleted")
}

func TestPurchaseOrderService_CreateFromPickList(t *testing.T) {
	f := newOrderFixture(t)
	ironmonger := f.supplier(t, "Ironmongery Ltd")
	timber := f.supplier(t, "Timber Co")
	hinge := f.item(t, "HNG-1", 1, "2.50", &ironmonger.ID)
	lock := f.item(t, "LCK-1", 0, "12.00", &ironmonger.ID)
	board := f.item(t, "BRD-1", 0, "8.00", &timber.ID)
	paint := f.item(t, "PNT-1", 0, "5.00", nil)
	stocked := f.item(t, "SCR-1", 100, "0.05", &ironmonger.ID)

	pl := f.pickList(t,
		map[uint]int{hinge.ID: 4, lock.ID: 1, board.ID: 2, paint.ID: 1, stocked.ID: 20},
		hinge.ID, lock.ID, board.ID, paint.ID, stocked.ID)

	res, err := f.svc.CreateFromPickList(f.ctx, pl.ID)
	require.NoError(t, err)
	require.Len(t, res.PurchaseOrders, 2)
	assert.Equal(t, []uint{paint.ID}, res.SkippedItemIDs)
	assert.Len(t, res.LinkedLineIDs, 3)

	first := res.PurchaseOrders[0]
	assert.Equal(t, ironmonger.ID, first.SupplierID)
	assert.Equal(t, "draft", first.Status)
	require.Len(t, first.Lines, 2)
	assert.Equal(t, hinge.ID, first.Lines[0].ItemID)
	assert.Equal(t, 3, first.Lines[0].Quantity, "orders only the shortfall")
	assert.Equal(t, lock.ID, first.Lines[1].ItemID)
	require.NotNil(t, first.PickListID)
	assert.Equal(t, pl.ID, *first.PickListID)

	second := res.PurchaseOrders[1]
	assert.Equal(t, timber.ID, second.SupplierID)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, 2, second.Lines[0].Quantity)

	after, err := f.pickLists.FindByID(f.ctx, pl.ID)
	require.NoError(t, err)
	report := production.CheckStock(after.Lines, map[uint]int{hinge.ID: 1, stocked.ID: 100})
	warnings := report.Warnings()
	require.Len(t, warnings, 1, "only the item without a supplier is still unordered")
	assert.Equal(t, paint.ID, warnings[0].ItemID)

	t.Run("running again orders nothing new", func(t *testing.T) {
		res, err := f.svc.CreateFromPickList(f.ctx, pl.ID)
		require.NoError(t, err)
		assert.Empty(t, res.PurchaseOrders)
		assert.Equal(t, []uint{paint.ID}, res.SkippedItemIDs)
	})

	t.Run("completed pick lists are rejected", func(t *testing.T) {
		done := f.pickList(t, map[uint]int{stocked.ID: 1}, stocked.ID)
		done.Status = production.PickListStatusCompleted
		require.NoError(t, f.pickLists.Save(f.ctx, done))

		_, err := f.svc.CreateFromPickList(f.ctx, done.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}
