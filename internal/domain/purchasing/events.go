package purchasing

import "github.com/doorsets/backend/internal/domain/shared"

// EventTypePurchaseOrderReceived is published after goods are received
const EventTypePurchaseOrderReceived = "PurchaseOrder.received"

// PurchaseOrderReceivedEvent lists the received quantities
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	Number    string         `json:"number"`
	Status    Status         `json:"status"`
	Received  []ReceivedLine `json:"received"`
	Remaining int            `json:"remaining"`
}

// NewPurchaseOrderReceivedEvent creates a PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(o *PurchaseOrder, received []ReceivedLine) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, o.ID),
		Number:          o.Number,
		Status:          o.Status,
		Received:        received,
		Remaining:       o.TotalRemaining(),
	}
}
