package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	types   []string
	err     error
	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, ev)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func itemUpdated(id uint) shared.DomainEvent {
	return shared.NewEntityChangedEvent("Item", id, shared.ActionUpdated)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("typed and wildcard handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		typed := &recordingHandler{types: []string{"Item.updated"}}
		other := &recordingHandler{types: []string{"Customer.updated"}}
		wildcard := &recordingHandler{}
		bus.Subscribe(typed)
		bus.Subscribe(other)
		bus.Subscribe(wildcard)

		require.NoError(t, bus.Publish(context.Background(), itemUpdated(1), itemUpdated(2)))
		assert.Equal(t, 2, typed.count())
		assert.Equal(t, 0, other.count())
		assert.Equal(t, 2, wildcard.count())
	})

	t.Run("failing handler does not stop others", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))
		failing := &recordingHandler{err: errors.New("nope")}
		ok := &recordingHandler{}
		bus.Subscribe(failing)
		bus.Subscribe(ok)

		require.NoError(t, bus.Publish(context.Background(), itemUpdated(1)))
		assert.Equal(t, 1, ok.count())
		assert.Equal(t, 1, logs.FilterMessage("Event handler failed").Len())
	})

	t.Run("panicking handler is recovered", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(NewFuncHandler(func(context.Context, shared.DomainEvent) error { panic("boom") }))
		after := &recordingHandler{}
		bus.Subscribe(after)

		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), itemUpdated(1))
		})
		assert.Equal(t, 1, after.count())
	})
}

func TestInMemoryEventBus_UnsubscribeAndLifecycle(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"Item.updated"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())

	_ = bus.Publish(context.Background(), itemUpdated(1))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), itemUpdated(1))
	assert.Equal(t, 1, h.count())

	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.IsRunning())
}

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	a := &recordingHandler{}
	b := &recordingHandler{}
	r.Register(a, "X", "Y")
	r.Register(b)

	assert.Len(t, r.GetHandlers("X"), 2)
	assert.Len(t, r.GetHandlers("Z"), 1)
	assert.Equal(t, 2, r.Len())

	r.Unregister(a)
	assert.Len(t, r.GetHandlers("X"), 1)
	assert.Equal(t, 1, r.Len())
}
