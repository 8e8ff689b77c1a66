package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEvent struct {
	shared.BaseDomainEvent
}

func newStubEvent(eventType string) *stubEvent {
	return &stubEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Expedition", uuid.New()),
	}
}

// recordingHandler collects every event it receives
type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	received   []shared.DomainEvent
	err        error
	panicMsg   string
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	h.received = append(h.received, ev)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to the subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newRecordingHandler("expedition.consumption.recorded")
		bus.Subscribe(h)

		ev := newStubEvent("expedition.consumption.recorded")
		require.NoError(t, bus.Publish(ctx, ev))

		require.Equal(t, 1, h.count())
		assert.Equal(t, ev, h.received[0])
	})

	t.Run("delivers multiple events in order", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newRecordingHandler("expedition.activated")
		bus.Subscribe(h)

		first := newStubEvent("expedition.activated")
		second := newStubEvent("expedition.activated")
		require.NoError(t, bus.Publish(ctx, first, second))

		require.Equal(t, 2, h.count())
		assert.Equal(t, first.EventID(), h.received[0].EventID())
		assert.Equal(t, second.EventID(), h.received[1].EventID())
	})

	t.Run("fans out to every handler of the type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		first := newRecordingHandler("expedition.completed")
		second := newRecordingHandler("expedition.completed")
		bus.Subscribe(first)
		bus.Subscribe(second)

		require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.completed")))

		assert.Equal(t, 1, first.count())
		assert.Equal(t, 1, second.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newRecordingHandler()
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newStubEvent("vault.pirate.enrolled")))
		require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.failed")))

		assert.Equal(t, 2, h.count())
	})

	t.Run("handler error does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newRecordingHandler("expedition.created")
		failing.err = errors.New("boom")
		healthy := newRecordingHandler("expedition.created")
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.created")))

		assert.Equal(t, 1, failing.count())
		assert.Equal(t, 1, healthy.count())
	})

	t.Run("handler panic does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := newRecordingHandler("expedition.created")
		panicking.panicMsg = "bad handler"
		healthy := newRecordingHandler("expedition.created")
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.created")))
		assert.Equal(t, 1, healthy.count())
	})

	t.Run("no matching handler is a no-op", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newRecordingHandler("vault.note.attached")
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.cancelled")))
		assert.Equal(t, 0, h.count())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecordingHandler("expedition.created")
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.created")))
	require.Equal(t, 1, h.count())

	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.created")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)

	require.NoError(t, bus.Start(ctx))

	h := newRecordingHandler("expedition.created")
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(ctx, newStubEvent("expedition.created")))
	assert.Equal(t, 1, h.count())

	require.NoError(t, bus.Stop(ctx))
}
