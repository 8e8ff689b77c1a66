package identity

import (
	"context"

	"github.com/google/uuid"
)

// OwnerRepository defines the persistence interface for owner accounts
type OwnerRepository interface {
	// FindByID finds an owner by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Owner, error)

	// FindByUsername finds an owner by username
	FindByUsername(ctx context.Context, username string) (*Owner, error)

	// ExistsByUsername checks whether a username is already taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Save creates a new owner account
	Save(ctx context.Context, owner *Owner) error

	// Update persists changes to an existing owner account
	Update(ctx context.Context, owner *Owner) error
}
