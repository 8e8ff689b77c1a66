package models

import (
	"time"

	"github.com/corsair/backend/internal/domain/identity"
	"github.com/corsair/backend/internal/domain/shared"
)

// OwnerModel is the persistence model for owner accounts. Only the bcrypt
// hash is stored; plaintext passwords never reach this layer.
type OwnerModel struct {
	AggregateModel
	Username       string `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayName    string `gorm:"type:varchar(200)"`
	PasswordHash   string `gorm:"type:varchar(100);not null"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (OwnerModel) TableName() string {
	return "owners"
}

// ToDomain converts the persistence model to a domain Owner aggregate.
func (m *OwnerModel) ToDomain() *identity.Owner {
	return &identity.Owner{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Username:       m.Username,
		DisplayName:    m.DisplayName,
		PasswordHash:   m.PasswordHash,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
		LastLoginAt:    m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain Owner aggregate.
func (m *OwnerModel) FromDomain(o *identity.Owner) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Username = o.Username
	m.DisplayName = o.DisplayName
	m.PasswordHash = o.PasswordHash
	m.FailedAttempts = o.FailedAttempts
	m.LockedUntil = o.LockedUntil
	m.LastLoginAt = o.LastLoginAt
}

// OwnerModelFromDomain creates a new persistence model from a domain Owner aggregate.
func OwnerModelFromDomain(o *identity.Owner) *OwnerModel {
	m := &OwnerModel{}
	m.FromDomain(o)
	return m
}
