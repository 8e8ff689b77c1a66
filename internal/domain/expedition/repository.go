package expedition

import (
	"context"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for expedition persistence
type Repository interface {
	// FindByID finds an expedition by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Expedition, error)

	// FindByOwner finds all expeditions of an owner with filtering
	FindByOwner(ctx context.Context, ownerRef uuid.UUID, filter shared.Filter) ([]Expedition, error)

	// FindAll finds all expeditions with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Expedition, error)

	// Save creates or updates an expedition
	Save(ctx context.Context, e *Expedition) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, e *Expedition) error

	// Delete removes an expedition
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts expeditions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ItemRepository defines the interface for expedition item persistence
type ItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByExpedition finds all items of an expedition
	FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]Item, error)

	// FindByProduct finds the item of an expedition for a product
	FindByProduct(ctx context.Context, expeditionID, productRef uuid.UUID) (*Item, error)

	// ExistsByProduct checks whether an expedition already pools a product
	ExistsByProduct(ctx context.Context, expeditionID, productRef uuid.UUID) (bool, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// Delete removes an item
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByExpedition counts items of an expedition
	CountByExpedition(ctx context.Context, expeditionID uuid.UUID) (int64, error)
}

// ConsumptionRepository defines the interface for consumption persistence
type ConsumptionRepository interface {
	// FindByID finds a consumption record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Consumption, error)

	// Record appends a consumption atomically: in one transaction it
	// increments the item's consumed counter guarded by
	// "remaining >= quantity" and inserts the record. When the guard
	// fails it returns a Conflict error and nothing is written.
	Record(ctx context.Context, c *Consumption) error

	// FindByItem finds all consumption records of an item
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]Consumption, error)

	// FindByExpedition finds all consumption records of an expedition
	FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]Consumption, error)

	// FindByAlias finds an alias's consumption records across an
	// expedition, oldest first (FIFO settlement order)
	FindByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) ([]Consumption, error)

	// FindUnreconciledByExpedition finds records without an external
	// reconciliation reference, oldest first
	FindUnreconciledByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]Consumption, error)

	// SumConsumedByItem returns the total quantity consumed for an item
	SumConsumedByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)

	// Save updates a consumption record (settlement, reconciliation ref)
	Save(ctx context.Context, c *Consumption) error

	// CountUnsettledByExpedition counts pending records of an expedition
	CountUnsettledByExpedition(ctx context.Context, expeditionID uuid.UUID) (int64, error)
}
