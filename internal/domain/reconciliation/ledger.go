package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesLedger is the external real-identity sales collaborator. The bridge
// hands it decrypted identities transiently; implementations own their own
// persistence and identifier scheme.
type SalesLedger interface {
	// CreateSaleLine creates (or finds and reuses) a sale line under the
	// real identity and returns its reference
	CreateSaleLine(ctx context.Context, realIdentity string, productRef uuid.UUID, quantity, unitPrice decimal.Decimal) (string, error)

	// RecordPayment records a payment under the real identity and returns
	// the payment reference
	RecordPayment(ctx context.Context, realIdentity string, amount decimal.Decimal) (string, error)
}

// CashBalance is the external cash-book collaborator
type CashBalance interface {
	// AddRevenue books a received payment as revenue
	AddRevenue(ctx context.Context, paymentRef string, amount decimal.Decimal) error
}
