package vault

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/domain/vault"
)

// VaultService manages alias assignment and encrypted identity records.
// Plaintext identities cross this service only transiently: inbound at
// enrollment, outbound on an explicit owner-key decrypt. Nothing here logs
// or stores them.
type VaultService struct {
	pirateRepo     vault.PirateRepository
	registryRepo   vault.AliasRegistryRepository
	noteRepo       vault.NoteRepository
	expeditionRepo expedition.Repository
	cipher         vault.Cipher
	aliasGen       *vault.AliasGenerator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewVaultService creates a new VaultService
func NewVaultService(
	pirateRepo vault.PirateRepository,
	registryRepo vault.AliasRegistryRepository,
	noteRepo vault.NoteRepository,
	expeditionRepo expedition.Repository,
	cipher vault.Cipher,
	aliasGen *vault.AliasGenerator,
	logger *zap.Logger,
) *VaultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VaultService{
		pirateRepo:     pirateRepo,
		registryRepo:   registryRepo,
		noteRepo:       noteRepo,
		expeditionRepo: expeditionRepo,
		cipher:         cipher,
		aliasGen:       aliasGen,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *VaultService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AssignAlias returns the stable alias for a real identity, creating a
// registry entry on first sight. The same identity always receives the same
// alias; collisions with aliases already issued to other identities are
// stepped past deterministically, bounded by MaxAliasAttempts.
func (s *VaultService) AssignAlias(ctx context.Context, identity string) (string, error) {
	if identity == "" {
		return "", shared.NewValidationError("INVALID_IDENTITY", "Identity cannot be empty")
	}

	digest := s.aliasGen.IdentityDigest(identity)
	if entry, err := s.registryRepo.FindByDigest(ctx, digest); err == nil {
		return entry.Alias, nil
	} else if !shared.IsKind(err, shared.KindNotFound) {
		return "", err
	}

	for attempt := 0; attempt < vault.MaxAliasAttempts; attempt++ {
		alias := s.aliasGen.Generate(identity, attempt)
		taken, err := s.registryRepo.ExistsByAlias(ctx, alias)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		entry, err := vault.NewAliasRegistryEntry(alias, digest)
		if err != nil {
			return "", err
		}
		if err := s.registryRepo.Save(ctx, entry); err != nil {
			if shared.IsKind(err, shared.KindConflict) {
				// Lost a race. Either a parallel enrollment registered this
				// identity, in which case its alias wins, or the alias was
				// taken by another identity and the next attempt steps past.
				if existing, ferr := s.registryRepo.FindByDigest(ctx, digest); ferr == nil {
					return existing.Alias, nil
				}
				continue
			}
			return "", err
		}
		return alias, nil
	}

	return "", shared.NewConflictError("ALIAS_EXHAUSTED", "Could not assign a collision-free alias")
}

// EnrollPirate assigns an alias to the identity and stores it encrypted
// under the expedition owner key. Enrolling the same identity twice in one
// expedition returns the existing record.
func (s *VaultService) EnrollPirate(ctx context.Context, expeditionID uuid.UUID, ownerKey []byte, req EnrollPirateRequest) (*PirateResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
		return nil, err
	}
	if exp.Status.IsTerminal() {
		return nil, shared.NewValidationError("INVALID_STATE", "Cannot enroll into a closed expedition")
	}

	alias, err := s.AssignAlias(ctx, req.Identity)
	if err != nil {
		return nil, err
	}

	if existing, err := s.pirateRepo.FindByAlias(ctx, expeditionID, alias); err == nil {
		response := ToPirateResponse(existing)
		return &response, nil
	} else if !shared.IsKind(err, shared.KindNotFound) {
		return nil, err
	}

	blob, err := s.cipher.Encrypt([]byte(req.Identity), ownerKey)
	if err != nil {
		return nil, err
	}
	pirate, err := vault.NewPirate(expeditionID, alias, blob)
	if err != nil {
		return nil, err
	}
	if err := s.pirateRepo.Save(ctx, pirate); err != nil {
		return nil, err
	}

	s.publish(ctx, vault.NewPirateEnrolledEvent(pirate))
	s.logger.Info("pirate enrolled",
		zap.String("expedition_id", expeditionID.String()),
		zap.String("alias", alias))

	response := ToPirateResponse(pirate)
	return &response, nil
}

// ListAliases lists the alias records of an expedition. Without an owner key
// the responses carry no identity material at all; with a valid key every
// record is decrypted, and a single decrypt failure fails the whole call.
func (s *VaultService) ListAliases(ctx context.Context, expeditionID uuid.UUID, ownerKey []byte) ([]PirateResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if ownerKey != nil {
		if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
			return nil, err
		}
	}

	pirates, err := s.pirateRepo.FindByExpedition(ctx, expeditionID)
	if err != nil {
		return nil, err
	}

	responses := make([]PirateResponse, 0, len(pirates))
	for i := range pirates {
		response := ToPirateResponse(&pirates[i])
		if ownerKey != nil {
			plaintext, err := s.cipher.Decrypt(pirates[i].EncryptedIdentity, ownerKey)
			if err != nil {
				return nil, err
			}
			identity := string(plaintext)
			response.RealIdentity = &identity
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// Decrypt resolves a single alias to its real identity using the owner key
func (s *VaultService) Decrypt(ctx context.Context, expeditionID uuid.UUID, alias string, ownerKey []byte) (string, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return "", err
	}
	if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
		return "", err
	}

	pirate, err := s.pirateRepo.FindByAlias(ctx, expeditionID, alias)
	if err != nil {
		return "", err
	}
	plaintext, err := s.cipher.Decrypt(pirate.EncryptedIdentity, ownerKey)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// AttachNote stores a free-text note encrypted under the owner key
func (s *VaultService) AttachNote(ctx context.Context, expeditionID uuid.UUID, ownerKey []byte, req AttachNoteRequest) (*NoteResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
		return nil, err
	}

	blob, err := s.cipher.Encrypt([]byte(req.Body), ownerKey)
	if err != nil {
		return nil, err
	}
	note, err := vault.NewNote(expeditionID, blob)
	if err != nil {
		return nil, err
	}
	if err := s.noteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	s.publish(ctx, vault.NewNoteAttachedEvent(note))

	response := ToNoteResponse(note)
	return &response, nil
}

// ListNotes lists the notes of an expedition. Bodies are decrypted only when
// a valid owner key is supplied.
func (s *VaultService) ListNotes(ctx context.Context, expeditionID uuid.UUID, ownerKey []byte) ([]NoteResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if ownerKey != nil {
		if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
			return nil, err
		}
	}

	notes, err := s.noteRepo.FindByExpedition(ctx, expeditionID)
	if err != nil {
		return nil, err
	}

	responses := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		response := ToNoteResponse(&notes[i])
		if ownerKey != nil {
			plaintext, err := s.cipher.Decrypt(notes[i].EncryptedBody, ownerKey)
			if err != nil {
				return nil, err
			}
			body := string(plaintext)
			response.Body = &body
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *VaultService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
