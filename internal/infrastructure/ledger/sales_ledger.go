package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corsair/backend/internal/domain/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleLineModel is a billed line under a real identity
type SaleLineModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	Ref        string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	Identity   string          `gorm:"type:varchar(200);index;not null"`
	ProductRef uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time
}

// TableName returns the table name for SaleLineModel
func (SaleLineModel) TableName() string {
	return "sale_lines"
}

// LedgerPaymentModel is a received payment under a real identity
type LedgerPaymentModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Ref       string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	Identity  string          `gorm:"type:varchar(200);index;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for LedgerPaymentModel
func (LedgerPaymentModel) TableName() string {
	return "ledger_payments"
}

// GormSalesLedger implements reconciliation.SalesLedger. Identities appear
// here in plaintext on purpose: this is the owner-facing side of the bridge.
type GormSalesLedger struct {
	db *gorm.DB
}

// NewGormSalesLedger creates a new GORM-backed sales ledger
func NewGormSalesLedger(db *gorm.DB) *GormSalesLedger {
	return &GormSalesLedger{db: db}
}

// CreateSaleLine creates a sale line under the real identity and returns its
// reference. An existing line with the same identity, product and amounts is
// reused so a retry after a partial sync does not double-bill.
func (l *GormSalesLedger) CreateSaleLine(ctx context.Context, realIdentity string, productRef uuid.UUID, quantity, unitPrice decimal.Decimal) (string, error) {
	var existing SaleLineModel
	err := l.db.WithContext(ctx).
		Where("identity = ? AND product_ref = ? AND quantity = ? AND unit_price = ?",
			realIdentity, productRef, quantity, unitPrice).
		First(&existing).Error
	if err == nil {
		return existing.Ref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up sale line: %w", err)
	}

	line := SaleLineModel{
		ID:         uuid.New(),
		Ref:        newRef("SALE"),
		Identity:   realIdentity,
		ProductRef: productRef,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
	if err := l.db.WithContext(ctx).Create(&line).Error; err != nil {
		return "", fmt.Errorf("failed to create sale line: %w", err)
	}
	return line.Ref, nil
}

// RecordPayment records a payment under the real identity and returns its reference
func (l *GormSalesLedger) RecordPayment(ctx context.Context, realIdentity string, amount decimal.Decimal) (string, error) {
	payment := LedgerPaymentModel{
		ID:       uuid.New(),
		Ref:      newRef("PAY"),
		Identity: realIdentity,
		Amount:   amount,
	}
	if err := l.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return "", fmt.Errorf("failed to record payment: %w", err)
	}
	return payment.Ref, nil
}

// newRef generates an external reference like "SALE-1a2b3c4d"
func newRef(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%x", prefix, id[:4])
}

// Ensure GormSalesLedger implements SalesLedger
var _ reconciliation.SalesLedger = (*GormSalesLedger)(nil)
