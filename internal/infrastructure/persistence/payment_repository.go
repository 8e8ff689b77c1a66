package persistence

import (
	"context"

	"github.com/corsair/backend/internal/domain/reconciliation"
	"github.com/corsair/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements reconciliation.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByExpedition finds all payments of an expedition, oldest first
func (r *GormPaymentRepository) FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]reconciliation.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("expedition_id = ?", expeditionID).
		Order("recorded_at ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindByAlias finds an alias's payments within an expedition, oldest first
func (r *GormPaymentRepository) FindByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) ([]reconciliation.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("expedition_id = ? AND alias = ?", expeditionID, alias).
		Order("recorded_at ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// SumByAlias returns the total amount paid by an alias in an expedition
func (r *GormPaymentRepository) SumByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("expedition_id = ? AND alias = ?", expeditionID, alias).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// SumByExpedition returns the total amount paid across an expedition
func (r *GormPaymentRepository) SumByExpedition(ctx context.Context, expeditionID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("expedition_id = ?", expeditionID).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// Save persists a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *reconciliation.Payment) error {
	model := models.PaymentModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainPayments(paymentModels []models.PaymentModel) []reconciliation.Payment {
	payments := make([]reconciliation.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements reconciliation.PaymentRepository
var _ reconciliation.PaymentRepository = (*GormPaymentRepository)(nil)
