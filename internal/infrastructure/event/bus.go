package event

import (
	"context"
	"fmt"

	"github.com/corsair/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers domain events synchronously and in publish
// order to every handler registered for the event type. A failing or
// panicking handler is logged and skipped; the remaining handlers still
// receive the event, and Publish itself never returns an error.
type InMemoryEventBus struct {
	subs   *HandlerRegistry
	logger *zap.Logger
}

// NewInMemoryEventBus creates an in-process event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		subs:   NewHandlerRegistry(),
		logger: logger,
	}
}

// Publish fans each event out to its subscribed handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.subs.GetHandlers(ev.EventType()) {
			if err := b.deliver(ctx, h, ev); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit event types the
// handler's own EventTypes() decide what it receives; an empty answer
// there subscribes it to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.Register(handler, eventTypes...)
	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.Unregister(handler)
	b.logger.Debug("event handler unsubscribed")
}

// Start marks the bus ready. Delivery is synchronous, so there is no
// background machinery to spin up.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.logger.Info("event bus started",
		zap.Int("handlers", len(b.subs.GetAllHandlers())),
	)
	return nil
}

// Stop shuts the bus down. Any in-flight Publish has already returned
// by the time callers get here.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.logger.Info("event bus stopped")
	return nil
}

// deliver invokes one handler, converting a panic into an error so one
// bad handler cannot take down the publisher
func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, ev)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
