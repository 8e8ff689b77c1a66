package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormConsumptionRepository implements expedition.ConsumptionRepository using GORM
type GormConsumptionRepository struct {
	db *gorm.DB
}

// NewGormConsumptionRepository creates a new GormConsumptionRepository
func NewGormConsumptionRepository(db *gorm.DB) *GormConsumptionRepository {
	return &GormConsumptionRepository{db: db}
}

// FindByID finds a consumption record by its ID
func (r *GormConsumptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*expedition.Consumption, error) {
	var model models.ConsumptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Record appends a consumption record in a single transaction. The item's
// consumed counter is incremented with a guard on the remaining quantity;
// when the guard rejects the update nothing is written and a Conflict error
// is returned. This is the invariant that keeps the sum of consumptions
// within the pooled quantity under concurrent writers.
func (r *GormConsumptionRepository) Record(ctx context.Context, c *expedition.Consumption) error {
	model := models.ConsumptionModelFromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ItemModel{}).
			Where("id = ? AND quantity_required - quantity_consumed >= ?", c.ExpeditionItemID, c.Quantity).
			Updates(map[string]interface{}{
				"quantity_consumed": gorm.Expr("quantity_consumed + ?", c.Quantity),
				"updated_at":        time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewConflictError("OVER_CONSUMPTION", "Requested quantity exceeds the remaining quantity")
		}
		return tx.Create(model).Error
	})
}

// FindByItem finds all consumption records of an item, oldest first
func (r *GormConsumptionRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]expedition.Consumption, error) {
	var consumptionModels []models.ConsumptionModel
	if err := r.db.WithContext(ctx).
		Where("expedition_item_id = ?", itemID).
		Order("recorded_at ASC, created_at ASC").
		Find(&consumptionModels).Error; err != nil {
		return nil, err
	}
	return toDomainConsumptions(consumptionModels), nil
}

// FindByExpedition finds all consumption records of an expedition, oldest first
func (r *GormConsumptionRepository) FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]expedition.Consumption, error) {
	var consumptionModels []models.ConsumptionModel
	if err := r.db.WithContext(ctx).
		Where("expedition_item_id IN (?)", r.itemIDs(expeditionID)).
		Order("recorded_at ASC, created_at ASC").
		Find(&consumptionModels).Error; err != nil {
		return nil, err
	}
	return toDomainConsumptions(consumptionModels), nil
}

// FindByAlias finds an alias's records across an expedition in FIFO order
func (r *GormConsumptionRepository) FindByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) ([]expedition.Consumption, error) {
	var consumptionModels []models.ConsumptionModel
	if err := r.db.WithContext(ctx).
		Where("alias = ? AND expedition_item_id IN (?)", alias, r.itemIDs(expeditionID)).
		Order("recorded_at ASC, created_at ASC").
		Find(&consumptionModels).Error; err != nil {
		return nil, err
	}
	return toDomainConsumptions(consumptionModels), nil
}

// FindUnreconciledByExpedition finds records without an external
// reconciliation reference, oldest first
func (r *GormConsumptionRepository) FindUnreconciledByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]expedition.Consumption, error) {
	var consumptionModels []models.ConsumptionModel
	if err := r.db.WithContext(ctx).
		Where("external_reconciliation_ref IS NULL AND expedition_item_id IN (?)", r.itemIDs(expeditionID)).
		Order("recorded_at ASC, created_at ASC").
		Find(&consumptionModels).Error; err != nil {
		return nil, err
	}
	return toDomainConsumptions(consumptionModels), nil
}

// SumConsumedByItem returns the total quantity consumed for an item
func (r *GormConsumptionRepository) SumConsumedByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ConsumptionModel{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("expedition_item_id = ?", itemID).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// Save updates a consumption record (settlement, reconciliation ref)
func (r *GormConsumptionRepository) Save(ctx context.Context, c *expedition.Consumption) error {
	model := models.ConsumptionModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// CountUnsettledByExpedition counts pending records of an expedition
func (r *GormConsumptionRepository) CountUnsettledByExpedition(ctx context.Context, expeditionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConsumptionModel{}).
		Where("payment_status = ? AND expedition_item_id IN (?)", expedition.PaymentStatusPending, r.itemIDs(expeditionID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// itemIDs builds the subquery selecting item IDs of an expedition
func (r *GormConsumptionRepository) itemIDs(expeditionID uuid.UUID) *gorm.DB {
	return r.db.Model(&models.ItemModel{}).Select("id").Where("expedition_id = ?", expeditionID)
}

func toDomainConsumptions(consumptionModels []models.ConsumptionModel) []expedition.Consumption {
	records := make([]expedition.Consumption, len(consumptionModels))
	for i, model := range consumptionModels {
		records[i] = *model.ToDomain()
	}
	return records
}

// Ensure GormConsumptionRepository implements expedition.ConsumptionRepository
var _ expedition.ConsumptionRepository = (*GormConsumptionRepository)(nil)
