package shared

import "context"

// EventPublisher is how application services announce committed changes.
// Publishing never undoes the change; a failure only means some reaction
// (cache invalidation, metrics) was missed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler reacts to published events. EventTypes filters delivery; nil
// receives everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventBus routes published events to subscribed handlers. Explicit types
// passed to Subscribe take precedence over the handler's EventTypes.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}
