package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/infrastructure/event"
	"github.com/doorsets/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type inventoryStub struct {
	sum catalog.InventorySummary
	err error
}

func (s inventoryStub) Summary(context.Context) (catalog.InventorySummary, error) {
	return s.sum, s.err
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewBusinessMetrics(nil, nil, nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestBusinessMetrics_FromEvents(t *testing.T) {
	ctx := context.Background()
	meter, reader := newTestMeter(t)
	bm, err := telemetry.NewBusinessMetrics(meter, inventoryStub{sum: catalog.InventorySummary{
		ItemCount:     12,
		LowStockCount: 3,
		TotalValue:    decimal.RequireFromString("1520.75"),
	}}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(bm.Stop)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(bm)

	pl := &production.PickList{Number: "PL-000001", Lines: []production.PickListLine{
		{ItemID: 1, Quantity: 4},
		{ItemID: 2, Quantity: 2},
		{ItemID: 1, Quantity: 1},
	}}
	po := &purchasing.PurchaseOrder{Number: "PO-000001", Status: purchasing.StatusPartiallyReceived}
	item := &catalog.Item{Code: "HNG-1", Quantity: 10}

	require.NoError(t, bus.Publish(ctx,
		production.NewPickListCompletedEvent(pl),
		purchasing.NewPurchaseOrderReceivedEvent(po, []purchasing.ReceivedLine{{ItemID: 1, Quantity: 6}, {ItemID: 3, Quantity: 2}}),
		catalog.NewItemStockChangedEvent(item, 6, catalog.MovementReceipt),
		catalog.NewItemStockChangedEvent(item, -5, catalog.MovementProduction),
		catalog.NewItemStockChangedEvent(item, 2, catalog.MovementReceipt),
	))

	got := collect(t, reader)
	assert.EqualValues(t, 1, sumInt64(t, got["doorsets_pick_lists_completed_total"]))
	assert.EqualValues(t, 7, sumInt64(t, got["doorsets_units_consumed_total"]))
	assert.EqualValues(t, 1, sumInt64(t, got["doorsets_purchase_order_receipts_total"],
		telemetry.AttrOrderStatus.String(string(purchasing.StatusPartiallyReceived))))
	assert.EqualValues(t, 8, sumInt64(t, got["doorsets_units_received_total"]))
	assert.EqualValues(t, 2, sumInt64(t, got["doorsets_stock_movements_total"],
		telemetry.AttrMovementReason.String(string(catalog.MovementReceipt))))

	low := got["doorsets_inventory_low_stock_items"].Data.(metricdata.Gauge[int64])
	require.Len(t, low.DataPoints, 1)
	assert.EqualValues(t, 3, low.DataPoints[0].Value)

	value := got["doorsets_inventory_value"].Data.(metricdata.Gauge[float64])
	require.Len(t, value.DataPoints, 1)
	assert.InDelta(t, 1520.75, value.DataPoints[0].Value, 0.001)
}

func TestBusinessMetrics_InventoryError(t *testing.T) {
	meter, reader := newTestMeter(t)
	bm, err := telemetry.NewBusinessMetrics(meter, inventoryStub{err: errors.New("db down")}, nil)
	require.NoError(t, err)
	t.Cleanup(bm.Stop)

	got := collect(t, reader)
	assert.NotContains(t, got, "doorsets_inventory_items")
}
