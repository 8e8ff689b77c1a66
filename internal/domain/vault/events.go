package vault

import (
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the vault context
const (
	EventTypePirateEnrolled = "vault.pirate.enrolled"
	EventTypeNoteAttached   = "vault.note.attached"
)

// PirateEnrolledEvent is emitted when an alias record is created for an
// expedition. It carries the alias only, never identity material.
type PirateEnrolledEvent struct {
	shared.BaseDomainEvent
	ExpeditionID uuid.UUID `json:"expedition_id"`
	Alias        string    `json:"alias"`
}

// NewPirateEnrolledEvent creates a new PirateEnrolledEvent
func NewPirateEnrolledEvent(p *Pirate) *PirateEnrolledEvent {
	return &PirateEnrolledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePirateEnrolled, "Pirate", p.ID),
		ExpeditionID:    p.ExpeditionID,
		Alias:           p.Alias,
	}
}

// NoteAttachedEvent is emitted when an encrypted note is attached to an
// expedition
type NoteAttachedEvent struct {
	shared.BaseDomainEvent
	ExpeditionID uuid.UUID `json:"expedition_id"`
}

// NewNoteAttachedEvent creates a new NoteAttachedEvent
func NewNoteAttachedEvent(n *Note) *NoteAttachedEvent {
	return &NoteAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNoteAttached, "Note", n.ID),
		ExpeditionID:    n.ExpeditionID,
	}
}
