package expedition

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the lifecycle status of an expedition
type Status string

const (
	StatusPlanning  Status = "PLANNING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states that admit no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPlanning:
		// A planning expedition can be cancelled by the owner or fail when
		// its deadline passes before anything happened.
		return target == StatusActive || target == StatusCancelled || target == StatusFailed
	case StatusActive:
		return target == StatusCompleted || target == StatusFailed || target == StatusCancelled
	case StatusCompleted, StatusFailed, StatusCancelled:
		return false
	}
	return false
}

// Expedition is the aggregate root for a bounded group purchase.
// The owner key itself is never stored; only its fingerprint is kept for
// validating keys presented by the owner.
type Expedition struct {
	shared.BaseAggregateRoot
	Name                string
	OwnerRef            uuid.UUID
	Deadline            *time.Time
	Status              Status
	OwnerKeyFingerprint string
	CompletedAt         *time.Time
	FailedAt            *time.Time
	CancelledAt         *time.Time
}

// NewExpedition creates a new expedition in PLANNING status.
// keyFingerprint is the fingerprint of the freshly generated owner key; the
// key material is handed to the owner by the caller and never persisted.
func NewExpedition(name string, ownerRef uuid.UUID, deadline *time.Time, keyFingerprint string) (*Expedition, error) {
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Expedition name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_NAME", "Expedition name cannot exceed 200 characters")
	}
	if ownerRef == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_OWNER", "Owner reference cannot be empty")
	}
	if keyFingerprint == "" {
		return nil, shared.NewValidationError("INVALID_KEY", "Owner key fingerprint cannot be empty")
	}
	if deadline != nil && deadline.Before(time.Now()) {
		return nil, shared.NewValidationError("INVALID_DEADLINE", "Deadline cannot be in the past")
	}

	e := &Expedition{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Name:                name,
		OwnerRef:            ownerRef,
		Deadline:            deadline,
		Status:              StatusPlanning,
		OwnerKeyFingerprint: keyFingerprint,
	}

	e.AddDomainEvent(NewExpeditionCreatedEvent(e))

	return e, nil
}

// IsOwnedBy returns true if the given user owns this expedition
func (e *Expedition) IsOwnedBy(userRef uuid.UUID) bool {
	return e.OwnerRef == userRef
}

// VerifyKeyFingerprint checks a presented key fingerprint against the stored
// one in constant time
func (e *Expedition) VerifyKeyFingerprint(fingerprint string) error {
	if subtle.ConstantTimeCompare([]byte(fingerprint), []byte(e.OwnerKeyFingerprint)) != 1 {
		return shared.ErrKeyMismatch
	}
	return nil
}

// UpdateDeadline changes the deadline; allowed only in non-terminal states
func (e *Expedition) UpdateDeadline(deadline *time.Time) error {
	if e.Status.IsTerminal() {
		return shared.NewValidationError("INVALID_STATE", fmt.Sprintf("Cannot edit deadline of a %s expedition", e.Status))
	}
	e.Deadline = deadline
	e.UpdatedAt = time.Now()
	return nil
}

// Activate transitions the expedition from PLANNING to ACTIVE.
// Callers activate once the expedition has at least one alias and one item.
func (e *Expedition) Activate() error {
	if !e.Status.CanTransitionTo(StatusActive) {
		return shared.NewValidationError("INVALID_STATE", fmt.Sprintf("Cannot activate expedition in %s status", e.Status))
	}
	e.Status = StatusActive
	e.UpdatedAt = time.Now()

	e.AddDomainEvent(NewExpeditionActivatedEvent(e))

	return nil
}

// Complete marks the expedition completed
func (e *Expedition) Complete() error {
	if !e.Status.CanTransitionTo(StatusCompleted) {
		return shared.NewValidationError("INVALID_STATE", fmt.Sprintf("Cannot complete expedition in %s status", e.Status))
	}
	now := time.Now()
	e.Status = StatusCompleted
	e.CompletedAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpeditionCompletedEvent(e))

	return nil
}

// Fail marks the expedition failed (deadline passed before completion)
func (e *Expedition) Fail() error {
	if !e.Status.CanTransitionTo(StatusFailed) {
		return shared.NewValidationError("INVALID_STATE", fmt.Sprintf("Cannot fail expedition in %s status", e.Status))
	}
	now := time.Now()
	e.Status = StatusFailed
	e.FailedAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpeditionFailedEvent(e))

	return nil
}

// Cancel cancels the expedition; owner-triggered and terminal
func (e *Expedition) Cancel() error {
	if !e.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewValidationError("INVALID_STATE", fmt.Sprintf("Cannot cancel expedition in %s status", e.Status))
	}
	now := time.Now()
	e.Status = StatusCancelled
	e.CancelledAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpeditionCancelledEvent(e))

	return nil
}

// TransitionTo applies an explicit status change, validating legality
func (e *Expedition) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	switch target {
	case StatusActive:
		return e.Activate()
	case StatusCompleted:
		return e.Complete()
	case StatusFailed:
		return e.Fail()
	case StatusCancelled:
		return e.Cancel()
	default:
		return shared.NewValidationError("INVALID_STATE", fmt.Sprintf("Cannot transition from %s to %s", e.Status, target))
	}
}

// DeadlinePassed returns true if a deadline is set and lies in the past
func (e *Expedition) DeadlinePassed(now time.Time) bool {
	return e.Deadline != nil && e.Deadline.Before(now)
}

// AcceptsConsumption returns true while consumption may still be recorded
func (e *Expedition) AcceptsConsumption() bool {
	return !e.Status.IsTerminal()
}
