package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/doorsets/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches events synchronously to registered handlers.
// A failing or panicking handler is logged and never blocks the others.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	running   atomic.Bool
	published atomic.Int64
	failures  atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish delivers each event to its handlers in registration order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		b.published.Add(1)
		for _, h := range b.registry.GetHandlers(ev.EventType()) {
			if err := b.dispatch(ctx, h, ev); err != nil {
				b.failures.Add(1)
				b.logger.Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Uint("aggregate_id", ev.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler; with no explicit types the handler's own
// EventTypes are used, and an empty list makes it a wildcard
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop marks the bus as stopped. Dispatch is synchronous so nothing is in flight.
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.running.Store(false)
	b.logger.Info("Event bus stopped",
		zap.Int64("published", b.published.Load()),
		zap.Int64("handler_failures", b.failures.Load()),
	)
	return nil
}

// IsRunning reports whether Start has been called without a matching Stop
func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

// FuncHandler adapts a function to shared.EventHandler
type FuncHandler struct {
	types []string
	fn    func(ctx context.Context, ev shared.DomainEvent) error
}

// NewFuncHandler wraps fn; no event types makes it a wildcard handler
func NewFuncHandler(fn func(ctx context.Context, ev shared.DomainEvent) error, eventTypes ...string) *FuncHandler {
	return &FuncHandler{types: eventTypes, fn: fn}
}

// Handle calls the wrapped function
func (h *FuncHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	return h.fn(ctx, ev)
}

// EventTypes returns the subscribed types
func (h *FuncHandler) EventTypes() []string {
	return h.types
}

var (
	_ shared.EventBus     = (*InMemoryEventBus)(nil)
	_ shared.EventHandler = (*FuncHandler)(nil)
)
