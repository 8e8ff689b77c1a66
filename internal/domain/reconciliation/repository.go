package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByExpedition finds all payments of an expedition, oldest first
	FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]Payment, error)

	// FindByAlias finds an alias's payments within an expedition,
	// oldest first
	FindByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) ([]Payment, error)

	// SumByAlias returns the total amount paid by an alias in an expedition
	SumByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (decimal.Decimal, error)

	// SumByExpedition returns the total amount paid across an expedition
	SumByExpedition(ctx context.Context, expeditionID uuid.UUID) (decimal.Decimal, error)

	// Save persists a payment
	Save(ctx context.Context, p *Payment) error
}
