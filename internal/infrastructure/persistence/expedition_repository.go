package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpeditionRepository implements expedition.Repository using GORM
type GormExpeditionRepository struct {
	db *gorm.DB
}

// NewGormExpeditionRepository creates a new GormExpeditionRepository
func NewGormExpeditionRepository(db *gorm.DB) *GormExpeditionRepository {
	return &GormExpeditionRepository{db: db}
}

// FindByID finds an expedition by its ID
func (r *GormExpeditionRepository) FindByID(ctx context.Context, id uuid.UUID) (*expedition.Expedition, error) {
	var model models.ExpeditionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner finds all expeditions of an owner matching the filter
func (r *GormExpeditionRepository) FindByOwner(ctx context.Context, ownerRef uuid.UUID, filter shared.Filter) ([]expedition.Expedition, error) {
	var expeditionModels []models.ExpeditionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ExpeditionModel{}).Where("owner_ref = ?", ownerRef),
		filter,
	)

	if err := query.Find(&expeditionModels).Error; err != nil {
		return nil, err
	}

	expeditions := make([]expedition.Expedition, len(expeditionModels))
	for i, model := range expeditionModels {
		expeditions[i] = *model.ToDomain()
	}
	return expeditions, nil
}

// FindAll finds all expeditions matching the filter
func (r *GormExpeditionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]expedition.Expedition, error) {
	var expeditionModels []models.ExpeditionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpeditionModel{}), filter)

	if err := query.Find(&expeditionModels).Error; err != nil {
		return nil, err
	}

	expeditions := make([]expedition.Expedition, len(expeditionModels))
	for i, model := range expeditionModels {
		expeditions[i] = *model.ToDomain()
	}
	return expeditions, nil
}

// Save creates or updates an expedition
func (r *GormExpeditionRepository) Save(ctx context.Context, e *expedition.Expedition) error {
	model := models.ExpeditionModelFromDomain(e)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves an expedition guarded by its version so concurrent
// lifecycle transitions cannot overwrite each other. On success the
// in-memory aggregate version is advanced to match the stored row.
func (r *GormExpeditionRepository) SaveWithLock(ctx context.Context, e *expedition.Expedition) error {
	result := r.db.WithContext(ctx).
		Model(&models.ExpeditionModel{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Updates(map[string]interface{}{
			"name":         e.Name,
			"deadline":     e.Deadline,
			"status":       e.Status,
			"completed_at": e.CompletedAt,
			"failed_at":    e.FailedAt,
			"cancelled_at": e.CancelledAt,
			"version":      e.Version + 1,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	e.IncrementVersion()
	return nil
}

// Delete removes an expedition
func (r *GormExpeditionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpeditionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts expeditions matching the filter
func (r *GormExpeditionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ExpeditionModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormExpeditionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ExpeditionSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormExpeditionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "owner_ref":
			query = query.Where("owner_ref = ?", value)
		}
	}

	return query
}

// Ensure GormExpeditionRepository implements expedition.Repository
var _ expedition.Repository = (*GormExpeditionRepository)(nil)
