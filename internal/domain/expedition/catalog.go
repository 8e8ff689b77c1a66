package expedition

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog view of a purchasable product
type Product struct {
	Ref       uuid.UUID
	Code      string
	Name      string
	ListPrice decimal.Decimal
}

// ProductCatalog is the external catalog collaborator. Implementations
// return a NotFound domain error when the reference is unknown.
type ProductCatalog interface {
	GetProduct(ctx context.Context, ref uuid.UUID) (*Product, error)
}

// Notifier is the best-effort push collaborator. Calls are fire-and-forget;
// implementations log failures and never propagate them.
type Notifier interface {
	OnProgressChanged(ctx context.Context, expeditionID uuid.UUID, data map[string]any)
	OnCompleted(ctx context.Context, expeditionID uuid.UUID, data map[string]any)
}
