package expedition

import (
	"time"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the expedition context
const (
	EventTypeExpeditionCreated   = "expedition.created"
	EventTypeExpeditionActivated = "expedition.activated"
	EventTypeExpeditionCompleted = "expedition.completed"
	EventTypeExpeditionFailed    = "expedition.failed"
	EventTypeExpeditionCancelled = "expedition.cancelled"
	EventTypeConsumptionRecorded = "expedition.consumption.recorded"
)

// ExpeditionCreatedEvent is emitted when a new expedition is created
type ExpeditionCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string     `json:"name"`
	OwnerRef uuid.UUID  `json:"owner_ref"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// NewExpeditionCreatedEvent creates a new ExpeditionCreatedEvent
func NewExpeditionCreatedEvent(e *Expedition) *ExpeditionCreatedEvent {
	return &ExpeditionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpeditionCreated, "Expedition", e.ID),
		Name:            e.Name,
		OwnerRef:        e.OwnerRef,
		Deadline:        e.Deadline,
	}
}

// ExpeditionActivatedEvent is emitted when an expedition becomes active
type ExpeditionActivatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewExpeditionActivatedEvent creates a new ExpeditionActivatedEvent
func NewExpeditionActivatedEvent(e *Expedition) *ExpeditionActivatedEvent {
	return &ExpeditionActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpeditionActivated, "Expedition", e.ID),
		Name:            e.Name,
	}
}

// ExpeditionCompletedEvent is emitted when an expedition completes
type ExpeditionCompletedEvent struct {
	shared.BaseDomainEvent
	Name        string     `json:"name"`
	CompletedAt *time.Time `json:"completed_at"`
}

// NewExpeditionCompletedEvent creates a new ExpeditionCompletedEvent
func NewExpeditionCompletedEvent(e *Expedition) *ExpeditionCompletedEvent {
	return &ExpeditionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpeditionCompleted, "Expedition", e.ID),
		Name:            e.Name,
		CompletedAt:     e.CompletedAt,
	}
}

// ExpeditionFailedEvent is emitted when a deadline passes before completion
type ExpeditionFailedEvent struct {
	shared.BaseDomainEvent
	Name     string     `json:"name"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// NewExpeditionFailedEvent creates a new ExpeditionFailedEvent
func NewExpeditionFailedEvent(e *Expedition) *ExpeditionFailedEvent {
	return &ExpeditionFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpeditionFailed, "Expedition", e.ID),
		Name:            e.Name,
		Deadline:        e.Deadline,
	}
}

// ExpeditionCancelledEvent is emitted when the owner cancels an expedition
type ExpeditionCancelledEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewExpeditionCancelledEvent creates a new ExpeditionCancelledEvent
func NewExpeditionCancelledEvent(e *Expedition) *ExpeditionCancelledEvent {
	return &ExpeditionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpeditionCancelled, "Expedition", e.ID),
		Name:            e.Name,
	}
}

// ConsumptionRecordedEvent is emitted when an alias consumes quantity of an
// item. It carries alias and quantities only.
type ConsumptionRecordedEvent struct {
	shared.BaseDomainEvent
	ExpeditionID     uuid.UUID       `json:"expedition_id"`
	ExpeditionItemID uuid.UUID       `json:"expedition_item_id"`
	Alias            string          `json:"alias"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// NewConsumptionRecordedEvent creates a new ConsumptionRecordedEvent
func NewConsumptionRecordedEvent(expeditionID uuid.UUID, c *Consumption) *ConsumptionRecordedEvent {
	return &ConsumptionRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeConsumptionRecorded, "Consumption", c.ID),
		ExpeditionID:     expeditionID,
		ExpeditionItemID: c.ExpeditionItemID,
		Alias:            c.Alias,
		Quantity:         c.Quantity,
		UnitPrice:        c.UnitPrice,
	}
}
