package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/corsair/backend/internal/domain/identity"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/infrastructure/persistence/models"
)

// GormOwnerRepository implements identity.OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByID finds an owner by ID
func (r *GormOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUsername finds an owner by username
func (r *GormOwnerRepository) FindByUsername(ctx context.Context, username string) (*identity.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByUsername checks whether a username is already taken
func (r *GormOwnerRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OwnerModel{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates a new owner account. The unique username index resolves
// concurrent registration races.
func (r *GormOwnerRepository) Save(ctx context.Context, owner *identity.Owner) error {
	model := models.OwnerModelFromDomain(owner)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing owner account
func (r *GormOwnerRepository) Update(ctx context.Context, owner *identity.Owner) error {
	model := models.OwnerModelFromDomain(owner)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormOwnerRepository implements identity.OwnerRepository
var _ identity.OwnerRepository = (*GormOwnerRepository)(nil)
