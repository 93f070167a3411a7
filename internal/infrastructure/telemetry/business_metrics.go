package telemetry

import (
	"context"
	"errors"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter is nil")

// InventorySummaryProvider reports the current stock figures
type InventorySummaryProvider interface {
	Summary(ctx context.Context) (catalog.InventorySummary, error)
}

// BusinessMetrics counts workshop activity from domain events and observes
// inventory health on each collection.
type BusinessMetrics struct {
	logger *zap.Logger

	pickListsCompleted *Counter
	unitsConsumed      *Counter
	ordersReceived     *Counter
	unitsReceived      *Counter
	stockMovements     *Counter

	registration metric.Registration
}

// NewBusinessMetrics creates the instruments. inventory may be nil, in which
// case the inventory gauges are not registered.
func NewBusinessMetrics(meter metric.Meter, inventory InventorySummaryProvider, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger}

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.pickListsCompleted, "doorsets_pick_lists_completed_total", "Pick lists completed", "{pick_list}"},
		{&bm.unitsConsumed, "doorsets_units_consumed_total", "Item units consumed by production", "{unit}"},
		{&bm.ordersReceived, "doorsets_purchase_order_receipts_total", "Goods receipts against purchase orders", "{receipt}"},
		{&bm.unitsReceived, "doorsets_units_received_total", "Item units received from suppliers", "{unit}"},
		{&bm.stockMovements, "doorsets_stock_movements_total", "Stock movements by reason", "{movement}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	if inventory != nil {
		if err := bm.observeInventory(meter, inventory); err != nil {
			return nil, err
		}
	}
	return bm, nil
}

func (bm *BusinessMetrics) observeInventory(meter metric.Meter, inventory InventorySummaryProvider) error {
	items, err := meter.Int64ObservableGauge("doorsets_inventory_items",
		metric.WithDescription("Active items"), metric.WithUnit("{item}"))
	if err != nil {
		return err
	}
	low, err := meter.Int64ObservableGauge("doorsets_inventory_low_stock_items",
		metric.WithDescription("Active items at or below their reorder level"), metric.WithUnit("{item}"))
	if err != nil {
		return err
	}
	value, err := meter.Float64ObservableGauge("doorsets_inventory_value",
		metric.WithDescription("Stock on hand valued at unit cost"))
	if err != nil {
		return err
	}

	bm.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		sum, err := inventory.Summary(ctx)
		if err != nil {
			bm.logger.Warn("Failed to collect inventory metrics", zap.Error(err))
			return nil
		}
		o.ObserveInt64(items, sum.ItemCount)
		o.ObserveInt64(low, sum.LowStockCount)
		o.ObserveFloat64(value, sum.TotalValue.InexactFloat64())
		return nil
	}, items, low, value)
	return err
}

// Handle implements shared.EventHandler
func (bm *BusinessMetrics) Handle(ctx context.Context, ev shared.DomainEvent) error {
	switch e := ev.(type) {
	case *production.PickListCompletedEvent:
		bm.pickListsCompleted.Inc(ctx)
		var units int64
		for _, q := range e.Consumed {
			units += int64(q)
		}
		bm.unitsConsumed.Add(ctx, units)
	case *purchasing.PurchaseOrderReceivedEvent:
		bm.ordersReceived.Inc(ctx, AttrOrderStatus.String(string(e.Status)))
		var units int64
		for _, r := range e.Received {
			units += int64(r.Quantity)
		}
		bm.unitsReceived.Add(ctx, units)
	case *catalog.ItemStockChangedEvent:
		bm.stockMovements.Inc(ctx, AttrMovementReason.String(string(e.Reason)))
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		production.EventTypePickListCompleted,
		purchasing.EventTypePurchaseOrderReceived,
		catalog.EventTypeItemStockChanged,
	}
}

// Stop unregisters the inventory callback
func (bm *BusinessMetrics) Stop() {
	if bm.registration != nil {
		_ = bm.registration.Unregister()
		bm.registration = nil
	}
}
