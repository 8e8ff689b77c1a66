package models

import (
	"github.com/corsair/backend/internal/domain/vault"
	"github.com/google/uuid"
)

// PirateModel is the persistence model for the Pirate alias record.
// Only the encrypted identity blob is stored; the transient decrypted
// identity on the domain entity is never mapped.
type PirateModel struct {
	BaseModel
	ExpeditionID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pirate_expedition_alias,priority:1"`
	Alias             string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_pirate_expedition_alias,priority:2"`
	EncryptedIdentity []byte    `gorm:"type:bytea;not null"`
}

// TableName returns the table name for GORM
func (PirateModel) TableName() string {
	return "pirates"
}

// ToDomain converts the persistence model to a domain Pirate entity.
func (m *PirateModel) ToDomain() *vault.Pirate {
	return &vault.Pirate{
		BaseEntity:        m.BaseModel.ToDomain(),
		ExpeditionID:      m.ExpeditionID,
		Alias:             m.Alias,
		EncryptedIdentity: m.EncryptedIdentity,
	}
}

// FromDomain populates the persistence model from a domain Pirate entity.
func (m *PirateModel) FromDomain(p *vault.Pirate) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ExpeditionID = p.ExpeditionID
	m.Alias = p.Alias
	m.EncryptedIdentity = p.EncryptedIdentity
}

// PirateModelFromDomain creates a new persistence model from a domain Pirate entity.
func PirateModelFromDomain(p *vault.Pirate) *PirateModel {
	m := &PirateModel{}
	m.FromDomain(p)
	return m
}

// AliasRegistryModel is the persistence model for the global alias registry.
// Both columns carry unique constraints so concurrent assignment races
// resolve at the database.
type AliasRegistryModel struct {
	BaseModel
	Alias          string `gorm:"type:varchar(100);not null;uniqueIndex"`
	IdentityDigest string `gorm:"type:varchar(64);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (AliasRegistryModel) TableName() string {
	return "alias_registry"
}

// ToDomain converts the persistence model to a domain AliasRegistryEntry.
func (m *AliasRegistryModel) ToDomain() *vault.AliasRegistryEntry {
	return &vault.AliasRegistryEntry{
		BaseEntity:     m.BaseModel.ToDomain(),
		Alias:          m.Alias,
		IdentityDigest: m.IdentityDigest,
	}
}

// FromDomain populates the persistence model from a domain AliasRegistryEntry.
func (m *AliasRegistryModel) FromDomain(e *vault.AliasRegistryEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Alias = e.Alias
	m.IdentityDigest = e.IdentityDigest
}

// AliasRegistryModelFromDomain creates a new persistence model from a domain AliasRegistryEntry.
func AliasRegistryModelFromDomain(e *vault.AliasRegistryEntry) *AliasRegistryModel {
	m := &AliasRegistryModel{}
	m.FromDomain(e)
	return m
}

// NoteModel is the persistence model for owner-encrypted expedition notes.
type NoteModel struct {
	BaseModel
	ExpeditionID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EncryptedBody []byte    `gorm:"type:bytea;not null"`
}

// TableName returns the table name for GORM
func (NoteModel) TableName() string {
	return "expedition_notes"
}

// ToDomain converts the persistence model to a domain Note entity.
func (m *NoteModel) ToDomain() *vault.Note {
	return &vault.Note{
		BaseEntity:    m.BaseModel.ToDomain(),
		ExpeditionID:  m.ExpeditionID,
		EncryptedBody: m.EncryptedBody,
	}
}

// FromDomain populates the persistence model from a domain Note entity.
func (m *NoteModel) FromDomain(n *vault.Note) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.ExpeditionID = n.ExpeditionID
	m.EncryptedBody = n.EncryptedBody
}

// NoteModelFromDomain creates a new persistence model from a domain Note entity.
func NoteModelFromDomain(n *vault.Note) *NoteModel {
	m := &NoteModel{}
	m.FromDomain(n)
	return m
}
