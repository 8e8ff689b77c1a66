package reconciliation

import (
	"time"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records money received from an alias against an expedition.
// It references the participant by alias only; the external payment
// reference ties it to the real-identity ledger entry created by the bridge.
type Payment struct {
	shared.BaseEntity
	ExpeditionID       uuid.UUID
	Alias              string
	Amount             decimal.Decimal
	Method             string
	Notes              string
	ExternalPaymentRef string
	RecordedAt         time.Time
}

// NewPayment creates a payment record
func NewPayment(expeditionID uuid.UUID, alias string, amount decimal.Decimal, method, notes, externalRef string) (*Payment, error) {
	if expeditionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_EXPEDITION", "Expedition ID cannot be empty")
	}
	if alias == "" {
		return nil, shared.NewValidationError("INVALID_ALIAS", "Alias cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if externalRef == "" {
		return nil, shared.NewValidationError("INVALID_REF", "External payment reference cannot be empty")
	}

	return &Payment{
		BaseEntity:         shared.NewBaseEntity(),
		ExpeditionID:       expeditionID,
		Alias:              alias,
		Amount:             amount,
		Method:             method,
		Notes:              notes,
		ExternalPaymentRef: externalRef,
		RecordedAt:         time.Now(),
	}, nil
}

// SettleFIFO decides which pending consumption records are fully covered
// once totalPaid has accumulated, walking the records in recording order.
// A record is settled only when the cumulative owed amount up to and
// including it fits inside totalPaid; a partially covered record stays
// pending. The input order is preserved and records already paid are
// skipped without consuming budget twice.
func SettleFIFO(records []expedition.Consumption, totalPaid decimal.Decimal) []*expedition.Consumption {
	var settled []*expedition.Consumption
	covered := decimal.Zero
	for idx := range records {
		c := &records[idx]
		covered = covered.Add(c.Amount())
		if !c.IsPending() {
			continue
		}
		if covered.LessThanOrEqual(totalPaid) {
			settled = append(settled, c)
		} else {
			break
		}
	}
	return settled
}
