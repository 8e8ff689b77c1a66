package expedition

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/domain/vault"
	"github.com/corsair/backend/internal/infrastructure/crypto"
)

// ExpeditionService handles expedition lifecycle operations
type ExpeditionService struct {
	expeditionRepo  expedition.Repository
	itemRepo        expedition.ItemRepository
	consumptionRepo expedition.ConsumptionRepository
	cipher          vault.Cipher
	notifier        expedition.Notifier
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewExpeditionService creates a new ExpeditionService
func NewExpeditionService(
	expeditionRepo expedition.Repository,
	itemRepo expedition.ItemRepository,
	consumptionRepo expedition.ConsumptionRepository,
	cipher vault.Cipher,
	notifier expedition.Notifier,
	logger *zap.Logger,
) *ExpeditionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpeditionService{
		expeditionRepo:  expeditionRepo,
		itemRepo:        itemRepo,
		consumptionRepo: consumptionRepo,
		cipher:          cipher,
		notifier:        notifier,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ExpeditionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new expedition and mints its owner key. The key is
// returned to the caller exactly once; only its fingerprint is stored.
func (s *ExpeditionService) Create(ctx context.Context, ownerRef uuid.UUID, req CreateExpeditionRequest) (*CreateExpeditionResponse, error) {
	ownerKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	exp, err := expedition.NewExpedition(req.Name, ownerRef, req.Deadline, s.cipher.Fingerprint(ownerKey))
	if err != nil {
		return nil, err
	}
	if err := s.expeditionRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, exp)

	s.logger.Info("expedition created",
		zap.String("expedition_id", exp.ID.String()),
		zap.String("name", exp.Name))

	return &CreateExpeditionResponse{
		Expedition: ToExpeditionResponse(exp),
		OwnerKey:   crypto.EncodeKeyHex(ownerKey),
	}, nil
}

// GetByID retrieves an expedition with its items. Item labels are decrypted
// only when the owner key is supplied.
func (s *ExpeditionService) GetByID(ctx context.Context, id uuid.UUID, ownerKey []byte) (*ExpeditionResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerKey != nil {
		if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
			return nil, err
		}
	}

	items, err := s.itemRepo.FindByExpedition(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToExpeditionResponse(exp)
	response.Items = make([]ItemResponse, 0, len(items))
	for i := range items {
		item := ToItemResponse(&items[i])
		if ownerKey != nil && len(items[i].EncryptedLabel) > 0 {
			plaintext, err := s.cipher.Decrypt(items[i].EncryptedLabel, ownerKey)
			if err != nil {
				return nil, err
			}
			label := string(plaintext)
			item.Label = &label
		}
		response.Items = append(response.Items, item)
	}
	return &response, nil
}

// List retrieves expeditions with filtering and pagination
func (s *ExpeditionService) List(ctx context.Context, filter ExpeditionListFilter) ([]ExpeditionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	expeditions, err := s.expeditionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expeditionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpeditionResponse, 0, len(expeditions))
	for i := range expeditions {
		responses = append(responses, ToExpeditionResponse(&expeditions[i]))
	}
	return responses, total, nil
}

// UpdateDeadline changes the deadline of a non-terminal expedition
func (s *ExpeditionService) UpdateDeadline(ctx context.Context, id, callerRef uuid.UUID, req UpdateDeadlineRequest) (*ExpeditionResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.IsOwnedBy(callerRef) {
		return nil, shared.ErrUnauthorized
	}
	if req.Deadline != nil && req.Deadline.Before(time.Now()) {
		return nil, shared.NewValidationError("INVALID_DEADLINE", "Deadline cannot be in the past")
	}
	if err := exp.UpdateDeadline(req.Deadline); err != nil {
		return nil, err
	}
	if err := s.expeditionRepo.SaveWithLock(ctx, exp); err != nil {
		return nil, err
	}

	response := ToExpeditionResponse(exp)
	return &response, nil
}

// UpdateStatus applies an explicit status transition
func (s *ExpeditionService) UpdateStatus(ctx context.Context, id, callerRef uuid.UUID, req UpdateStatusRequest) (*ExpeditionResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.IsOwnedBy(callerRef) {
		return nil, shared.ErrUnauthorized
	}
	if err := exp.TransitionTo(expedition.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.expeditionRepo.SaveWithLock(ctx, exp); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, exp)
	s.notifyIfClosed(ctx, exp)

	response := ToExpeditionResponse(exp)
	return &response, nil
}

// CheckCompletion evaluates the expedition against its deadline and fill
// level and moves it forward when warranted. The check is idempotent and
// only ever moves the state machine forward; calling it on a terminal
// expedition reports the current status unchanged.
func (s *ExpeditionService) CheckCompletion(ctx context.Context, id uuid.UUID) (*ExpeditionResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.Status.IsTerminal() {
		response := ToExpeditionResponse(exp)
		return &response, nil
	}

	items, err := s.itemRepo.FindByExpedition(ctx, id)
	if err != nil {
		return nil, err
	}

	// A fully consumed expedition completes even when the check runs after
	// the deadline; the deadline only fails expeditions that never filled.
	if exp.Status == expedition.StatusActive && allFullyConsumed(items) {
		if err := exp.Complete(); err != nil {
			return nil, err
		}
		if err := s.expeditionRepo.SaveWithLock(ctx, exp); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, exp)
		s.notifyIfClosed(ctx, exp)
		response := ToExpeditionResponse(exp)
		return &response, nil
	}

	if exp.DeadlinePassed(time.Now()) {
		if err := exp.Fail(); err != nil {
			return nil, err
		}
		if err := s.expeditionRepo.SaveWithLock(ctx, exp); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, exp)
		s.notifyIfClosed(ctx, exp)
	}

	response := ToExpeditionResponse(exp)
	return &response, nil
}

// Delete removes an expedition. Refused while unsettled consumption records
// exist; alias records and notes are removed with it by the storage layer.
func (s *ExpeditionService) Delete(ctx context.Context, id, callerRef uuid.UUID) error {
	exp, err := s.expeditionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !exp.IsOwnedBy(callerRef) {
		return shared.ErrUnauthorized
	}

	unsettled, err := s.consumptionRepo.CountUnsettledByExpedition(ctx, id)
	if err != nil {
		return err
	}
	if unsettled > 0 {
		return shared.NewConflictError("UNSETTLED_CONSUMPTION", "Cannot delete an expedition with unsettled consumption records")
	}
	return s.expeditionRepo.Delete(ctx, id)
}

func allFullyConsumed(items []expedition.Item) bool {
	if len(items) == 0 {
		return false
	}
	for i := range items {
		if !items[i].IsFullyConsumed() {
			return false
		}
	}
	return true
}

func (s *ExpeditionService) notifyIfClosed(ctx context.Context, exp *expedition.Expedition) {
	if s.notifier == nil || exp.Status != expedition.StatusCompleted {
		return
	}
	s.notifier.OnCompleted(ctx, exp.ID, map[string]any{
		"name":   exp.Name,
		"status": exp.Status.String(),
	})
}

func (s *ExpeditionService) publishEvents(ctx context.Context, exp *expedition.Expedition) {
	events := exp.GetDomainEvents()
	exp.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
