package persistence

import (
	"context"
	"errors"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/domain/vault"
	"github.com/corsair/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPirateRepository implements vault.PirateRepository using GORM
type GormPirateRepository struct {
	db *gorm.DB
}

// NewGormPirateRepository creates a new GormPirateRepository
func NewGormPirateRepository(db *gorm.DB) *GormPirateRepository {
	return &GormPirateRepository{db: db}
}

// FindByID finds an alias record by its ID
func (r *GormPirateRepository) FindByID(ctx context.Context, id uuid.UUID) (*vault.Pirate, error) {
	var model models.PirateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExpedition finds all alias records of an expedition
func (r *GormPirateRepository) FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]vault.Pirate, error) {
	var pirateModels []models.PirateModel
	if err := r.db.WithContext(ctx).
		Where("expedition_id = ?", expeditionID).
		Order("created_at ASC").
		Find(&pirateModels).Error; err != nil {
		return nil, err
	}

	pirates := make([]vault.Pirate, len(pirateModels))
	for i, model := range pirateModels {
		pirates[i] = *model.ToDomain()
	}
	return pirates, nil
}

// FindByAlias finds an alias record within an expedition
func (r *GormPirateRepository) FindByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (*vault.Pirate, error) {
	var model models.PirateModel
	if err := r.db.WithContext(ctx).
		Where("expedition_id = ? AND alias = ?", expeditionID, alias).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByAlias checks whether an alias is already enrolled in an expedition
func (r *GormPirateRepository) ExistsByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PirateModel{}).
		Where("expedition_id = ? AND alias = ?", expeditionID, alias).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an alias record
func (r *GormPirateRepository) Save(ctx context.Context, pirate *vault.Pirate) error {
	model := models.PirateModelFromDomain(pirate)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteByExpedition removes all alias records of an expedition
func (r *GormPirateRepository) DeleteByExpedition(ctx context.Context, expeditionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.PirateModel{}, "expedition_id = ?", expeditionID).Error
}

// Ensure GormPirateRepository implements vault.PirateRepository
var _ vault.PirateRepository = (*GormPirateRepository)(nil)

// GormAliasRegistryRepository implements vault.AliasRegistryRepository using GORM
type GormAliasRegistryRepository struct {
	db *gorm.DB
}

// NewGormAliasRegistryRepository creates a new GormAliasRegistryRepository
func NewGormAliasRegistryRepository(db *gorm.DB) *GormAliasRegistryRepository {
	return &GormAliasRegistryRepository{db: db}
}

// FindByDigest finds the registry entry for an identity digest
func (r *GormAliasRegistryRepository) FindByDigest(ctx context.Context, identityDigest string) (*vault.AliasRegistryEntry, error) {
	var model models.AliasRegistryModel
	if err := r.db.WithContext(ctx).
		Where("identity_digest = ?", identityDigest).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByAlias checks whether an alias has been issued to any identity
func (r *GormAliasRegistryRepository) ExistsByAlias(ctx context.Context, alias string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AliasRegistryModel{}).
		Where("alias = ?", alias).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists a registry entry. The unique constraints on alias and
// digest turn concurrent assignment races into a Conflict error the caller
// resolves by re-reading.
func (r *GormAliasRegistryRepository) Save(ctx context.Context, entry *vault.AliasRegistryEntry) error {
	model := models.AliasRegistryModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Ensure GormAliasRegistryRepository implements vault.AliasRegistryRepository
var _ vault.AliasRegistryRepository = (*GormAliasRegistryRepository)(nil)

// GormNoteRepository implements vault.NoteRepository using GORM
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new GormNoteRepository
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

// FindByExpedition finds all notes of an expedition, oldest first
func (r *GormNoteRepository) FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]vault.Note, error) {
	var noteModels []models.NoteModel
	if err := r.db.WithContext(ctx).
		Where("expedition_id = ?", expeditionID).
		Order("created_at ASC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}

	notes := make([]vault.Note, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// Save persists a note
func (r *GormNoteRepository) Save(ctx context.Context, note *vault.Note) error {
	model := models.NoteModelFromDomain(note)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteByExpedition removes all notes of an expedition
func (r *GormNoteRepository) DeleteByExpedition(ctx context.Context, expeditionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.NoteModel{}, "expedition_id = ?", expeditionID).Error
}

// Ensure GormNoteRepository implements vault.NoteRepository
var _ vault.NoteRepository = (*GormNoteRepository)(nil)
