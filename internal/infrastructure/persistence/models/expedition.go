package models

import (
	"time"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpeditionModel is the persistence model for the Expedition aggregate.
// Only the owner key fingerprint is stored; key material never reaches
// this layer.
type ExpeditionModel struct {
	AggregateModel
	Name                string            `gorm:"type:varchar(200);not null"`
	OwnerRef            uuid.UUID         `gorm:"type:uuid;not null;index"`
	Deadline            *time.Time        `gorm:"index"`
	Status              expedition.Status `gorm:"type:varchar(20);not null;default:'PLANNING';index"`
	OwnerKeyFingerprint string            `gorm:"type:varchar(64);not null"`
	CompletedAt         *time.Time
	FailedAt            *time.Time
	CancelledAt         *time.Time
}

// TableName returns the table name for GORM
func (ExpeditionModel) TableName() string {
	return "expeditions"
}

// ToDomain converts the persistence model to a domain Expedition aggregate.
func (m *ExpeditionModel) ToDomain() *expedition.Expedition {
	return &expedition.Expedition{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:                m.Name,
		OwnerRef:            m.OwnerRef,
		Deadline:            m.Deadline,
		Status:              m.Status,
		OwnerKeyFingerprint: m.OwnerKeyFingerprint,
		CompletedAt:         m.CompletedAt,
		FailedAt:            m.FailedAt,
		CancelledAt:         m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain Expedition aggregate.
func (m *ExpeditionModel) FromDomain(e *expedition.Expedition) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Name = e.Name
	m.OwnerRef = e.OwnerRef
	m.Deadline = e.Deadline
	m.Status = e.Status
	m.OwnerKeyFingerprint = e.OwnerKeyFingerprint
	m.CompletedAt = e.CompletedAt
	m.FailedAt = e.FailedAt
	m.CancelledAt = e.CancelledAt
}

// ExpeditionModelFromDomain creates a new persistence model from a domain Expedition aggregate.
func ExpeditionModelFromDomain(e *expedition.Expedition) *ExpeditionModel {
	m := &ExpeditionModel{}
	m.FromDomain(e)
	return m
}

// ItemModel is the persistence model for the expedition Item entity.
// QuantityConsumed is the counter the atomic consumption guard updates.
type ItemModel struct {
	BaseModel
	ExpeditionID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_item_expedition_product,priority:1"`
	ProductRef       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_item_expedition_product,priority:2"`
	QuantityRequired decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	QuantityConsumed decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TargetUnitPrice  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	EncryptedLabel   []byte           `gorm:"type:bytea"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "expedition_items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *ItemModel) ToDomain() *expedition.Item {
	return &expedition.Item{
		BaseEntity:       m.BaseModel.ToDomain(),
		ExpeditionID:     m.ExpeditionID,
		ProductRef:       m.ProductRef,
		QuantityRequired: m.QuantityRequired,
		QuantityConsumed: m.QuantityConsumed,
		TargetUnitPrice:  m.TargetUnitPrice,
		EncryptedLabel:   m.EncryptedLabel,
	}
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *ItemModel) FromDomain(i *expedition.Item) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.ExpeditionID = i.ExpeditionID
	m.ProductRef = i.ProductRef
	m.QuantityRequired = i.QuantityRequired
	m.QuantityConsumed = i.QuantityConsumed
	m.TargetUnitPrice = i.TargetUnitPrice
	m.EncryptedLabel = i.EncryptedLabel
}

// ItemModelFromDomain creates a new persistence model from a domain Item entity.
func ItemModelFromDomain(i *expedition.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

// ConsumptionModel is the persistence model for the Consumption entity.
// Rows reference the participant by alias only.
type ConsumptionModel struct {
	BaseModel
	ExpeditionItemID          uuid.UUID                `gorm:"type:uuid;not null;index"`
	Alias                     string                   `gorm:"type:varchar(100);not null;index"`
	Quantity                  decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	UnitPrice                 decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	RecordedAt                time.Time                `gorm:"not null;index"`
	PaymentStatus             expedition.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ExternalReconciliationRef *string                  `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ConsumptionModel) TableName() string {
	return "consumptions"
}

// ToDomain converts the persistence model to a domain Consumption entity.
func (m *ConsumptionModel) ToDomain() *expedition.Consumption {
	return &expedition.Consumption{
		BaseEntity:                m.BaseModel.ToDomain(),
		ExpeditionItemID:          m.ExpeditionItemID,
		Alias:                     m.Alias,
		Quantity:                  m.Quantity,
		UnitPrice:                 m.UnitPrice,
		RecordedAt:                m.RecordedAt,
		PaymentStatus:             m.PaymentStatus,
		ExternalReconciliationRef: m.ExternalReconciliationRef,
	}
}

// FromDomain populates the persistence model from a domain Consumption entity.
func (m *ConsumptionModel) FromDomain(c *expedition.Consumption) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ExpeditionItemID = c.ExpeditionItemID
	m.Alias = c.Alias
	m.Quantity = c.Quantity
	m.UnitPrice = c.UnitPrice
	m.RecordedAt = c.RecordedAt
	m.PaymentStatus = c.PaymentStatus
	m.ExternalReconciliationRef = c.ExternalReconciliationRef
}

// ConsumptionModelFromDomain creates a new persistence model from a domain Consumption entity.
func ConsumptionModelFromDomain(c *expedition.Consumption) *ConsumptionModel {
	m := &ConsumptionModel{}
	m.FromDomain(c)
	return m
}
