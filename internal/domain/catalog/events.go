package catalog

import "github.com/doorsets/backend/internal/domain/shared"

// EventTypeItemStockChanged is published whenever stock on hand changes
const EventTypeItemStockChanged = "Item.stockChanged"

// ItemStockChangedEvent carries a stock delta
type ItemStockChangedEvent struct {
	shared.BaseDomainEvent
	Code          string         `json:"code"`
	Delta         int            `json:"delta"`
	QuantityAfter int            `json:"quantityAfter"`
	Reason        MovementReason `json:"reason"`
	LowStock      bool           `json:"lowStock"`
}

// NewItemStockChangedEvent creates an ItemStockChangedEvent
func NewItemStockChangedEvent(item *Item, delta int, reason MovementReason) *ItemStockChangedEvent {
	return &ItemStockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemStockChanged, AggregateTypeItem, item.ID),
		Code:            item.Code,
		Delta:           delta,
		QuantityAfter:   item.Quantity,
		Reason:          reason,
		LowStock:        item.IsLowStock(),
	}
}
