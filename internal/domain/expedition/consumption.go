package expedition

import (
	"time"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a consumption record
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// Consumption is the log entry of an alias taking some quantity of an item
// at some price. It references the item by ID and the participant by alias
// only; no identity material ever appears here.
type Consumption struct {
	shared.BaseEntity
	ExpeditionItemID uuid.UUID
	Alias            string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	RecordedAt       time.Time
	PaymentStatus    PaymentStatus
	// ExternalReconciliationRef stores the sale line reference issued by
	// the real-identity ledger. Non-nil means this record has been
	// reconciled; it is the idempotence key for the bridge.
	ExternalReconciliationRef *string
}

// NewConsumption creates a new pending consumption record
func NewConsumption(itemID uuid.UUID, alias string, quantity, unitPrice decimal.Decimal) (*Consumption, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ITEM", "Expedition item ID cannot be empty")
	}
	if alias == "" {
		return nil, shared.NewValidationError("INVALID_ALIAS", "Alias cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Consumed quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Consumption{
		BaseEntity:       shared.NewBaseEntity(),
		ExpeditionItemID: itemID,
		Alias:            alias,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		RecordedAt:       time.Now(),
		PaymentStatus:    PaymentStatusPending,
	}, nil
}

// Amount returns quantity × unit price
func (c *Consumption) Amount() decimal.Decimal {
	return c.Quantity.Mul(c.UnitPrice)
}

// IsReconciled returns true once an external sale reference is attached
func (c *Consumption) IsReconciled() bool {
	return c.ExternalReconciliationRef != nil
}

// MarkReconciled attaches the external sale reference exactly once
func (c *Consumption) MarkReconciled(externalRef string) error {
	if externalRef == "" {
		return shared.NewValidationError("INVALID_REF", "External reconciliation reference cannot be empty")
	}
	if c.ExternalReconciliationRef != nil {
		return shared.NewConflictError("ALREADY_RECONCILED", "Consumption record is already reconciled")
	}
	c.ExternalReconciliationRef = &externalRef
	c.UpdatedAt = time.Now()
	return nil
}

// MarkPaid settles the record
func (c *Consumption) MarkPaid() error {
	if c.PaymentStatus == PaymentStatusPaid {
		return shared.NewConflictError("ALREADY_PAID", "Consumption record is already paid")
	}
	c.PaymentStatus = PaymentStatusPaid
	c.UpdatedAt = time.Now()
	return nil
}

// IsPending returns true while the record is unsettled
func (c *Consumption) IsPending() bool {
	return c.PaymentStatus == PaymentStatusPending
}
