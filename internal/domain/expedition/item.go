package expedition

import (
	"time"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one pooled product within an expedition. QuantityConsumed is the
// running counter the storage layer decrements against atomically, so the
// sum of consumption quantities can never exceed QuantityRequired.
type Item struct {
	shared.BaseEntity
	ExpeditionID     uuid.UUID
	ProductRef       uuid.UUID
	QuantityRequired decimal.Decimal
	QuantityConsumed decimal.Decimal
	TargetUnitPrice  *decimal.Decimal
	// EncryptedLabel optionally carries the owner-encrypted display name
	// of the product for anonymized listings.
	EncryptedLabel []byte
}

// NewItem creates a new expedition item
func NewItem(expeditionID, productRef uuid.UUID, quantityRequired decimal.Decimal, targetUnitPrice *decimal.Decimal) (*Item, error) {
	if expeditionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_EXPEDITION", "Expedition ID cannot be empty")
	}
	if productRef == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product reference cannot be empty")
	}
	if quantityRequired.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Required quantity must be positive")
	}
	if targetUnitPrice != nil && targetUnitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Target unit price cannot be negative")
	}

	return &Item{
		BaseEntity:       shared.NewBaseEntity(),
		ExpeditionID:     expeditionID,
		ProductRef:       productRef,
		QuantityRequired: quantityRequired,
		QuantityConsumed: decimal.Zero,
		TargetUnitPrice:  targetUnitPrice,
	}, nil
}

// Remaining returns the quantity still available for consumption
func (i *Item) Remaining() decimal.Decimal {
	return i.QuantityRequired.Sub(i.QuantityConsumed)
}

// IsFullyConsumed returns true once nothing remains
func (i *Item) IsFullyConsumed() bool {
	return i.QuantityConsumed.GreaterThanOrEqual(i.QuantityRequired)
}

// HasConsumption returns true if any quantity has been consumed
func (i *Item) HasConsumption() bool {
	return i.QuantityConsumed.GreaterThan(decimal.Zero)
}

// SetEncryptedLabel attaches the owner-encrypted product display name
func (i *Item) SetEncryptedLabel(label []byte) {
	i.EncryptedLabel = label
	i.UpdatedAt = time.Now()
}

// ValidateConsumption checks whether a proposed consumption is acceptable
// against the in-memory snapshot. The storage layer re-checks atomically;
// this gives callers an early, precise error.
func (i *Item) ValidateConsumption(quantity decimal.Decimal, unitPrice decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Consumed quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if quantity.GreaterThan(i.Remaining()) {
		return shared.NewConflictError("OVER_CONSUMPTION", "Requested quantity exceeds the remaining quantity")
	}
	return nil
}
