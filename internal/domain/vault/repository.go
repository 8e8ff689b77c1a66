package vault

import (
	"context"

	"github.com/google/uuid"
)

// PirateRepository defines the interface for alias record persistence
type PirateRepository interface {
	// FindByID finds an alias record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Pirate, error)

	// FindByExpedition finds all alias records for an expedition,
	// ordered by creation time
	FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]Pirate, error)

	// FindByAlias finds an alias record within an expedition
	FindByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (*Pirate, error)

	// ExistsByAlias checks whether an alias is already enrolled in an expedition
	ExistsByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (bool, error)

	// Save creates or updates an alias record
	Save(ctx context.Context, pirate *Pirate) error

	// DeleteByExpedition removes all alias records of an expedition
	DeleteByExpedition(ctx context.Context, expeditionID uuid.UUID) error
}

// AliasRegistryRepository defines the interface for the global alias registry
type AliasRegistryRepository interface {
	// FindByDigest finds the registry entry for an identity digest
	FindByDigest(ctx context.Context, identityDigest string) (*AliasRegistryEntry, error)

	// ExistsByAlias checks whether an alias has been issued to any identity
	ExistsByAlias(ctx context.Context, alias string) (bool, error)

	// Save persists a registry entry. Both alias and digest carry unique
	// constraints; a constraint violation surfaces as a Conflict error so
	// concurrent assignment races resolve deterministically.
	Save(ctx context.Context, entry *AliasRegistryEntry) error
}

// NoteRepository defines the interface for encrypted note persistence
type NoteRepository interface {
	// FindByExpedition finds all notes of an expedition, oldest first
	FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]Note, error)

	// Save persists a note
	Save(ctx context.Context, note *Note) error

	// DeleteByExpedition removes all notes of an expedition
	DeleteByExpedition(ctx context.Context, expeditionID uuid.UUID) error
}
