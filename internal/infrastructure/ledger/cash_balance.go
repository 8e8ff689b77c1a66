package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/corsair/backend/internal/domain/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashMovementModel is a booked revenue entry in the cash book
type CashMovementModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	PaymentRef string          `gorm:"type:varchar(100);index;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time
}

// TableName returns the table name for CashMovementModel
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// GormCashBalance implements reconciliation.CashBalance over the cash_movements table
type GormCashBalance struct {
	db *gorm.DB
}

// NewGormCashBalance creates a new GORM-backed cash balance
func NewGormCashBalance(db *gorm.DB) *GormCashBalance {
	return &GormCashBalance{db: db}
}

// AddRevenue books a received payment as revenue
func (b *GormCashBalance) AddRevenue(ctx context.Context, paymentRef string, amount decimal.Decimal) error {
	movement := CashMovementModel{
		ID:         uuid.New(),
		PaymentRef: paymentRef,
		Amount:     amount,
	}
	if err := b.db.WithContext(ctx).Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to book revenue: %w", err)
	}
	return nil
}

// Balance sums all booked movements
func (b *GormCashBalance) Balance(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := b.db.WithContext(ctx).Model(&CashMovementModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum cash movements: %w", err)
	}
	return result.Total, nil
}

// Ensure GormCashBalance implements CashBalance
var _ reconciliation.CashBalance = (*GormCashBalance)(nil)
