package vault

import (
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Pirate is the per-expedition alias record. The real identity exists only
// as an encrypted blob; the RealIdentity field is populated transiently in
// memory after an explicit decrypt and is never persisted.
type Pirate struct {
	shared.BaseEntity
	ExpeditionID      uuid.UUID
	Alias             string
	EncryptedIdentity []byte

	// RealIdentity is transient decrypt output. Persistence models must
	// not map this field.
	RealIdentity string `gorm:"-" json:"-"`
}

// NewPirate creates a new alias record for an expedition.
// The identity must already be encrypted by the caller; this constructor
// never sees plaintext.
func NewPirate(expeditionID uuid.UUID, alias string, encryptedIdentity []byte) (*Pirate, error) {
	if expeditionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_EXPEDITION", "Expedition ID cannot be empty")
	}
	if alias == "" {
		return nil, shared.NewValidationError("INVALID_ALIAS", "Alias cannot be empty")
	}
	if len(alias) > 100 {
		return nil, shared.NewValidationError("INVALID_ALIAS", "Alias cannot exceed 100 characters")
	}
	if len(encryptedIdentity) == 0 {
		return nil, shared.NewValidationError("INVALID_IDENTITY", "Encrypted identity cannot be empty")
	}

	return &Pirate{
		BaseEntity:        shared.NewBaseEntity(),
		ExpeditionID:      expeditionID,
		Alias:             alias,
		EncryptedIdentity: encryptedIdentity,
	}, nil
}

// WithRealIdentity returns a shallow copy carrying the decrypted identity.
// The copy is meant for immediate return to the caller, never for storage.
func (p *Pirate) WithRealIdentity(identity string) Pirate {
	clone := *p
	clone.RealIdentity = identity
	return clone
}

// AliasRegistryEntry is the global alias-to-identity-digest mapping that
// keeps an identity's alias stable across expeditions. It stores a keyed
// digest of the identity, never the identity itself.
type AliasRegistryEntry struct {
	shared.BaseEntity
	Alias          string
	IdentityDigest string
}

// NewAliasRegistryEntry creates a registry entry binding an alias to an
// identity digest
func NewAliasRegistryEntry(alias, identityDigest string) (*AliasRegistryEntry, error) {
	if alias == "" {
		return nil, shared.NewValidationError("INVALID_ALIAS", "Alias cannot be empty")
	}
	if identityDigest == "" {
		return nil, shared.NewValidationError("INVALID_DIGEST", "Identity digest cannot be empty")
	}
	return &AliasRegistryEntry{
		BaseEntity:     shared.NewBaseEntity(),
		Alias:          alias,
		IdentityDigest: identityDigest,
	}, nil
}

// Note is an owner-encrypted free-text note attached to an expedition
type Note struct {
	shared.BaseEntity
	ExpeditionID  uuid.UUID
	EncryptedBody []byte

	// Body is transient decrypt output, never persisted
	Body string `gorm:"-" json:"-"`
}

// NewNote creates an encrypted note for an expedition
func NewNote(expeditionID uuid.UUID, encryptedBody []byte) (*Note, error) {
	if expeditionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_EXPEDITION", "Expedition ID cannot be empty")
	}
	if len(encryptedBody) == 0 {
		return nil, shared.NewValidationError("INVALID_NOTE", "Encrypted note body cannot be empty")
	}
	return &Note{
		BaseEntity:    shared.NewBaseEntity(),
		ExpeditionID:  expeditionID,
		EncryptedBody: encryptedBody,
	}, nil
}

// WithBody returns a shallow copy carrying the decrypted body
func (n *Note) WithBody(body string) Note {
	clone := *n
	clone.Body = body
	return clone
}
