package expedition

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/reconciliation"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/domain/vault"
)

// LedgerService tracks pooled items and per-alias consumption. It sees
// aliases only; identity material never reaches this service.
type LedgerService struct {
	expeditionRepo  expedition.Repository
	itemRepo        expedition.ItemRepository
	consumptionRepo expedition.ConsumptionRepository
	pirateRepo      vault.PirateRepository
	paymentRepo     reconciliation.PaymentRepository
	catalog         expedition.ProductCatalog
	cipher          vault.Cipher
	notifier        expedition.Notifier
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	expeditionRepo expedition.Repository,
	itemRepo expedition.ItemRepository,
	consumptionRepo expedition.ConsumptionRepository,
	pirateRepo vault.PirateRepository,
	paymentRepo reconciliation.PaymentRepository,
	catalog expedition.ProductCatalog,
	cipher vault.Cipher,
	notifier expedition.Notifier,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		expeditionRepo:  expeditionRepo,
		itemRepo:        itemRepo,
		consumptionRepo: consumptionRepo,
		pirateRepo:      pirateRepo,
		paymentRepo:     paymentRepo,
		catalog:         catalog,
		cipher:          cipher,
		notifier:        notifier,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AddItem pools a catalog product in an expedition. Each product may appear
// at most once per expedition. When the owner key is supplied the product
// display name is sealed onto the item for anonymized listings.
func (s *LedgerService) AddItem(ctx context.Context, expeditionID uuid.UUID, ownerKey []byte, req AddItemRequest) (*ItemResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if exp.Status.IsTerminal() {
		return nil, shared.NewValidationError("INVALID_STATE", "Cannot add items to a closed expedition")
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductRef)
	if err != nil {
		return nil, err
	}

	exists, err := s.itemRepo.ExistsByProduct(ctx, expeditionID, req.ProductRef)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("DUPLICATE_PRODUCT", "Product is already pooled in this expedition")
	}

	item, err := expedition.NewItem(expeditionID, req.ProductRef, req.QuantityRequired, req.TargetUnitPrice)
	if err != nil {
		return nil, err
	}
	if ownerKey != nil {
		if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
			return nil, err
		}
		label, err := s.cipher.Encrypt([]byte(product.Name), ownerKey)
		if err != nil {
			return nil, err
		}
		item.SetEncryptedLabel(label)
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// RemoveItem removes a pooled product; refused once consumption exists
func (s *LedgerService) RemoveItem(ctx context.Context, expeditionID, productRef uuid.UUID) error {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return err
	}
	if exp.Status.IsTerminal() {
		return shared.NewValidationError("INVALID_STATE", "Cannot remove items from a closed expedition")
	}

	item, err := s.itemRepo.FindByProduct(ctx, expeditionID, productRef)
	if err != nil {
		return err
	}
	if item.HasConsumption() {
		return shared.NewValidationError("HAS_CONSUMPTION", "Cannot remove an item that has been consumed from")
	}
	return s.itemRepo.Delete(ctx, item.ID)
}

// RecordConsumption logs an alias taking quantity of a pooled item. The
// storage layer enforces the remaining-quantity guard atomically, so racing
// consumers can never overdraw the pool. The first consumption of a planning
// expedition activates it.
func (s *LedgerService) RecordConsumption(ctx context.Context, expeditionID uuid.UUID, req RecordConsumptionRequest) (*ConsumptionResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if !exp.AcceptsConsumption() {
		return nil, shared.NewValidationError("INVALID_STATE", "Expedition no longer accepts consumption")
	}
	if exp.DeadlinePassed(time.Now()) {
		return nil, shared.NewValidationError("DEADLINE_PASSED", "Expedition deadline has passed")
	}

	enrolled, err := s.pirateRepo.ExistsByAlias(ctx, expeditionID, req.Alias)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, shared.NewNotFoundError("UNKNOWN_ALIAS", "Alias is not enrolled in this expedition")
	}

	item, err := s.itemRepo.FindByProduct(ctx, expeditionID, req.ProductRef)
	if err != nil {
		return nil, err
	}

	unitPrice, err := s.resolveUnitPrice(ctx, item, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if err := item.ValidateConsumption(req.Quantity, unitPrice); err != nil {
		return nil, err
	}

	record, err := expedition.NewConsumption(item.ID, req.Alias, req.Quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	if err := s.consumptionRepo.Record(ctx, record); err != nil {
		return nil, err
	}

	if exp.Status == expedition.StatusPlanning {
		if err := exp.Activate(); err == nil {
			if err := s.expeditionRepo.SaveWithLock(ctx, exp); err != nil {
				return nil, err
			}
			s.publishEvents(ctx, exp)
		}
	}

	s.publish(ctx, expedition.NewConsumptionRecordedEvent(expeditionID, record))
	if s.notifier != nil {
		s.notifier.OnProgressChanged(ctx, expeditionID, map[string]any{
			"item_id":   item.ID.String(),
			"alias":     record.Alias,
			"quantity":  record.Quantity.String(),
			"remaining": item.Remaining().Sub(record.Quantity).String(),
		})
	}
	s.logger.Info("consumption recorded",
		zap.String("expedition_id", expeditionID.String()),
		zap.String("alias", record.Alias),
		zap.String("quantity", record.Quantity.String()))

	response := ToConsumptionResponse(record)
	return &response, nil
}

// DebtForAlias reports an alias's consumption records and totals without
// touching identity material
func (s *LedgerService) DebtForAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (*DebtResponse, error) {
	if _, err := s.expeditionRepo.FindByID(ctx, expeditionID); err != nil {
		return nil, err
	}
	enrolled, err := s.pirateRepo.ExistsByAlias(ctx, expeditionID, alias)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, shared.NewNotFoundError("UNKNOWN_ALIAS", "Alias is not enrolled in this expedition")
	}

	records, err := s.consumptionRepo.FindByAlias(ctx, expeditionID, alias)
	if err != nil {
		return nil, err
	}
	totalPaid, err := s.paymentRepo.SumByAlias(ctx, expeditionID, alias)
	if err != nil {
		return nil, err
	}

	response := DebtResponse{
		ExpeditionID: expeditionID,
		Alias:        alias,
		Records:      make([]ConsumptionResponse, 0, len(records)),
		TotalOwed:    decimal.Zero,
		TotalPaid:    totalPaid,
		TotalPending: decimal.Zero,
	}
	for i := range records {
		response.Records = append(response.Records, ToConsumptionResponse(&records[i]))
		response.TotalOwed = response.TotalOwed.Add(records[i].Amount())
		if records[i].IsPending() {
			response.TotalPending = response.TotalPending.Add(records[i].Amount())
		}
	}
	return &response, nil
}

// Progress reports per-item and overall fill levels
func (s *LedgerService) Progress(ctx context.Context, expeditionID uuid.UUID) (*ProgressResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.FindByExpedition(ctx, expeditionID)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	response := ProgressResponse{
		ExpeditionID:   expeditionID,
		Status:         exp.Status.String(),
		Items:          make([]ItemProgress, 0, len(items)),
		OverallPercent: decimal.Zero,
	}

	totalRequired := decimal.Zero
	totalConsumed := decimal.Zero
	for i := range items {
		item := &items[i]
		percent := decimal.Zero
		if item.QuantityRequired.GreaterThan(decimal.Zero) {
			percent = item.QuantityConsumed.Div(item.QuantityRequired).Mul(hundred).Round(2)
		}
		response.Items = append(response.Items, ItemProgress{
			ItemID:           item.ID,
			ProductRef:       item.ProductRef,
			QuantityRequired: item.QuantityRequired,
			QuantityConsumed: item.QuantityConsumed,
			Percent:          percent,
		})
		totalRequired = totalRequired.Add(item.QuantityRequired)
		totalConsumed = totalConsumed.Add(item.QuantityConsumed)
	}
	if totalRequired.GreaterThan(decimal.Zero) {
		response.OverallPercent = totalConsumed.Div(totalRequired).Mul(hundred).Round(2)
	}
	return &response, nil
}

// resolveUnitPrice picks the effective price: explicit request price, then
// the item's target price, then the catalog list price.
func (s *LedgerService) resolveUnitPrice(ctx context.Context, item *expedition.Item, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		return *override, nil
	}
	if item.TargetUnitPrice != nil {
		return *item.TargetUnitPrice, nil
	}
	product, err := s.catalog.GetProduct(ctx, item.ProductRef)
	if err != nil {
		return decimal.Zero, err
	}
	return product.ListPrice, nil
}

func (s *LedgerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

func (s *LedgerService) publishEvents(ctx context.Context, exp *expedition.Expedition) {
	events := exp.GetDomainEvents()
	exp.ClearDomainEvents()
	s.publish(ctx, events...)
}
