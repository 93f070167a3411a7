package production

import "github.com/doorsets/backend/internal/domain/shared"

// EventTypePickListCompleted is published when a pick list is completed
const EventTypePickListCompleted = "PickList.completed"

// PickListCompletedEvent carries the consumed item quantities
type PickListCompletedEvent struct {
	shared.BaseDomainEvent
	Number   string       `json:"number"`
	Consumed map[uint]int `json:"consumed"`
}

// NewPickListCompletedEvent creates a PickListCompletedEvent
func NewPickListCompletedEvent(p *PickList) *PickListCompletedEvent {
	consumed := make(map[uint]int, len(p.Lines))
	for _, l := range p.Lines {
		consumed[l.ItemID] += l.Quantity
	}
	return &PickListCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickListCompleted, AggregateTypePickList, p.ID),
		Number:          p.Number,
		Consumed:        consumed,
	}
}
