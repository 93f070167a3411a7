package cache

import (
	"context"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// dependents lists, per aggregate, the other cached lists that embed its data.
// Pick lists and purchase orders show item and partner names; stock moves
// when either of them changes state.
var dependents = map[string][]string{
	catalog.AggregateTypeItem:             {production.AggregateTypePickList, purchasing.AggregateTypePurchaseOrder, catalog.AggregateTypeAssembly},
	partner.AggregateTypeCustomer:         {production.AggregateTypePickList},
	partner.AggregateTypeSupplier:         {purchasing.AggregateTypePurchaseOrder},
	production.AggregateTypePickList:      {catalog.AggregateTypeItem},
	purchasing.AggregateTypePurchaseOrder: {catalog.AggregateTypeItem, production.AggregateTypePickList},
}

// InvalidationHandler drops cached queries of the aggregate an event belongs
// to and of the aggregates that depend on it. It subscribes to every event.
type InvalidationHandler struct {
	cache  QueryCache
	logger *zap.Logger
}

// NewInvalidationHandler creates the handler
func NewInvalidationHandler(c QueryCache, logger *zap.Logger) *InvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationHandler{cache: c, logger: logger.Named("cache_invalidation")}
}

// EventTypes is empty so the handler receives every event
func (h *InvalidationHandler) EventTypes() []string {
	return nil
}

// Handle invalidates the aggregate prefix and those of its dependents
func (h *InvalidationHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	prefixes := []string{EntityPrefix(ev.AggregateType())}
	for _, d := range dependents[ev.AggregateType()] {
		prefixes = append(prefixes, EntityPrefix(d))
	}
	for _, p := range prefixes {
		if err := h.cache.InvalidatePrefix(ctx, p); err != nil {
			return err
		}
	}
	h.logger.Debug("Invalidated query cache",
		zap.String("event_type", ev.EventType()),
		zap.Strings("prefixes", prefixes),
	)
	return nil
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)
