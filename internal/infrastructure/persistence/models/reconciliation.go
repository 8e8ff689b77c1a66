package models

import (
	"time"

	"github.com/corsair/backend/internal/domain/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for alias-scoped payments.
type PaymentModel struct {
	BaseModel
	ExpeditionID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_payment_expedition_alias,priority:1"`
	Alias              string          `gorm:"type:varchar(100);not null;index:idx_payment_expedition_alias,priority:2"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method             string          `gorm:"type:varchar(50)"`
	Notes              string          `gorm:"type:varchar(500)"`
	ExternalPaymentRef string          `gorm:"type:varchar(100);not null"`
	RecordedAt         time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "alias_payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *reconciliation.Payment {
	return &reconciliation.Payment{
		BaseEntity:         m.BaseModel.ToDomain(),
		ExpeditionID:       m.ExpeditionID,
		Alias:              m.Alias,
		Amount:             m.Amount,
		Method:             m.Method,
		Notes:              m.Notes,
		ExternalPaymentRef: m.ExternalPaymentRef,
		RecordedAt:         m.RecordedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *reconciliation.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ExpeditionID = p.ExpeditionID
	m.Alias = p.Alias
	m.Amount = p.Amount
	m.Method = p.Method
	m.Notes = p.Notes
	m.ExternalPaymentRef = p.ExternalPaymentRef
	m.RecordedAt = p.RecordedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *reconciliation.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
