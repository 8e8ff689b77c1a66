package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductModel is the catalog's own persistence row. The catalog is a
// collaborator with its own table, not part of the expedition schema.
type ProductModel struct {
	Ref       uuid.UUID       `gorm:"type:uuid;primary_key"`
	Code      string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	ListPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ProductModel
func (ProductModel) TableName() string {
	return "products"
}

// GormProductCatalog implements expedition.ProductCatalog over the products table
type GormProductCatalog struct {
	db *gorm.DB
}

// NewGormProductCatalog creates a new GORM-backed product catalog
func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

// GetProduct finds a product by its reference
func (c *GormProductCatalog) GetProduct(ctx context.Context, ref uuid.UUID) (*expedition.Product, error) {
	var model ProductModel
	err := c.db.WithContext(ctx).Where("ref = ?", ref).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("PRODUCT_NOT_FOUND", "product not found")
		}
		return nil, err
	}

	return &expedition.Product{
		Ref:       model.Ref,
		Code:      model.Code,
		Name:      model.Name,
		ListPrice: model.ListPrice,
	}, nil
}

// Save creates or updates a catalog entry
func (c *GormProductCatalog) Save(ctx context.Context, product *expedition.Product) error {
	model := ProductModel{
		Ref:       product.Ref,
		Code:      product.Code,
		Name:      product.Name,
		ListPrice: product.ListPrice,
	}
	return c.db.WithContext(ctx).Save(&model).Error
}

// Ensure GormProductCatalog implements ProductCatalog
var _ expedition.ProductCatalog = (*GormProductCatalog)(nil)
