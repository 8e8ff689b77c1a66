package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sync line statuses
const (
	SyncStatusReconciled        = "reconciled"
	SyncStatusAlreadyReconciled = "already_reconciled"
	SyncStatusSkipped           = "skipped"
)

// SyncLine reports the outcome for one consumption record during a sync
type SyncLine struct {
	ConsumptionID uuid.UUID       `json:"consumption_id"`
	Alias         string          `json:"alias"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	ExternalRef   *string         `json:"external_ref,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// SyncReport summarizes a reconciliation run
type SyncReport struct {
	ExpeditionID      uuid.UUID  `json:"expedition_id"`
	Reconciled        int        `json:"reconciled"`
	AlreadyReconciled int        `json:"already_reconciled"`
	Skipped           int        `json:"skipped"`
	Lines             []SyncLine `json:"lines"`
}

// RecordPaymentRequest represents money received from an alias
type RecordPaymentRequest struct {
	Alias  string          `json:"alias" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"omitempty,max=50"`
	Notes  string          `json:"notes" binding:"omitempty,max=500"`
}

// PaymentResponse represents a recorded payment in API responses
type PaymentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ExpeditionID       uuid.UUID       `json:"expedition_id"`
	Alias              string          `json:"alias"`
	Amount             decimal.Decimal `json:"amount"`
	Method             string          `json:"method,omitempty"`
	ExternalPaymentRef string          `json:"external_payment_ref"`
	SettledRecords     int             `json:"settled_records"`
	RecordedAt         time.Time       `json:"recorded_at"`
}

// AliasSummary is the anonymized financial position of one alias
type AliasSummary struct {
	Alias       string          `json:"alias"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// FinancialSummaryResponse is the anonymized expedition-level financial
// summary. It is computed without any decryption.
type FinancialSummaryResponse struct {
	ExpeditionID      uuid.UUID       `json:"expedition_id"`
	TotalConsumed     decimal.Decimal `json:"total_consumed"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	TotalOutstanding  decimal.Decimal `json:"total_outstanding"`
	PendingRecords    int             `json:"pending_records"`
	ReconciledRecords int             `json:"reconciled_records"`
	Aliases           []AliasSummary  `json:"aliases"`
}
