package reconciliation

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/reconciliation"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/domain/vault"
)

// BridgeService converts anonymized alias debt into real-identity ledger
// entries. Decrypted identities live only on the stack during a call; the
// report and all persisted rows reference aliases and external refs only.
type BridgeService struct {
	expeditionRepo  expedition.Repository
	itemRepo        expedition.ItemRepository
	consumptionRepo expedition.ConsumptionRepository
	pirateRepo      vault.PirateRepository
	paymentRepo     reconciliation.PaymentRepository
	salesLedger     reconciliation.SalesLedger
	cashBalance     reconciliation.CashBalance
	cipher          vault.Cipher
	logger          *zap.Logger
}

// NewBridgeService creates a new BridgeService
func NewBridgeService(
	expeditionRepo expedition.Repository,
	itemRepo expedition.ItemRepository,
	consumptionRepo expedition.ConsumptionRepository,
	pirateRepo vault.PirateRepository,
	paymentRepo reconciliation.PaymentRepository,
	salesLedger reconciliation.SalesLedger,
	cashBalance reconciliation.CashBalance,
	cipher vault.Cipher,
	logger *zap.Logger,
) *BridgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BridgeService{
		expeditionRepo:  expeditionRepo,
		itemRepo:        itemRepo,
		consumptionRepo: consumptionRepo,
		pirateRepo:      pirateRepo,
		paymentRepo:     paymentRepo,
		salesLedger:     salesLedger,
		cashBalance:     cashBalance,
		cipher:          cipher,
		logger:          logger,
	}
}

// SyncExpeditionDebt pushes every unreconciled consumption record into the
// real-identity sales ledger. All aliases are decrypted up front; a single
// decrypt failure aborts the run before any external call. Records that
// already carry an external ref are reported and never re-sent, so the
// operation is idempotent. Upstream failures on individual records are
// skipped and reported, leaving them unreconciled for the next run.
func (s *BridgeService) SyncExpeditionDebt(ctx context.Context, expeditionID uuid.UUID, ownerKey []byte) (*SyncReport, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
		return nil, err
	}

	records, err := s.consumptionRepo.FindByExpedition(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	productByItem, err := s.productRefsByItem(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	identities, err := s.decryptAliases(ctx, expeditionID, records, ownerKey)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{ExpeditionID: expeditionID, Lines: make([]SyncLine, 0, len(records))}
	for i := range records {
		record := &records[i]
		line := SyncLine{
			ConsumptionID: record.ID,
			Alias:         record.Alias,
			Amount:        record.Amount(),
		}

		if record.IsReconciled() {
			line.Status = SyncStatusAlreadyReconciled
			line.ExternalRef = record.ExternalReconciliationRef
			report.AlreadyReconciled++
			report.Lines = append(report.Lines, line)
			continue
		}

		externalRef, err := s.salesLedger.CreateSaleLine(ctx,
			identities[record.Alias], productByItem[record.ExpeditionItemID],
			record.Quantity, record.UnitPrice)
		if err != nil {
			line.Status = SyncStatusSkipped
			line.Reason = err.Error()
			report.Skipped++
			report.Lines = append(report.Lines, line)
			s.logger.Warn("sale line creation failed, record left unreconciled",
				zap.String("consumption_id", record.ID.String()),
				zap.String("alias", record.Alias),
				zap.Error(err))
			continue
		}

		if err := record.MarkReconciled(externalRef); err != nil {
			return nil, err
		}
		if err := s.consumptionRepo.Save(ctx, record); err != nil {
			return nil, err
		}
		line.Status = SyncStatusReconciled
		line.ExternalRef = record.ExternalReconciliationRef
		report.Reconciled++
		report.Lines = append(report.Lines, line)
	}

	s.logger.Info("expedition debt synced",
		zap.String("expedition_id", expeditionID.String()),
		zap.Int("reconciled", report.Reconciled),
		zap.Int("already_reconciled", report.AlreadyReconciled),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// RecordPayment books money received from an alias into the real-identity
// ledger and cash book, persists the alias-scoped payment row, and settles
// pending consumption records oldest-first. A record is marked paid only
// once the alias's cumulative payments cover it entirely.
func (s *BridgeService) RecordPayment(ctx context.Context, expeditionID uuid.UUID, ownerKey []byte, req RecordPaymentRequest) (*PaymentResponse, error) {
	exp, err := s.expeditionRepo.FindByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	if err := exp.VerifyKeyFingerprint(s.cipher.Fingerprint(ownerKey)); err != nil {
		return nil, err
	}

	pirate, err := s.pirateRepo.FindByAlias(ctx, expeditionID, req.Alias)
	if err != nil {
		return nil, err
	}
	plaintext, err := s.cipher.Decrypt(pirate.EncryptedIdentity, ownerKey)
	if err != nil {
		return nil, err
	}
	identity := string(plaintext)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	externalRef, err := s.salesLedger.RecordPayment(ctx, identity, req.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.cashBalance.AddRevenue(ctx, externalRef, req.Amount); err != nil {
		return nil, err
	}

	payment, err := reconciliation.NewPayment(expeditionID, req.Alias, req.Amount, req.Method, req.Notes, externalRef)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	totalPaid, err := s.paymentRepo.SumByAlias(ctx, expeditionID, req.Alias)
	if err != nil {
		return nil, err
	}
	records, err := s.consumptionRepo.FindByAlias(ctx, expeditionID, req.Alias)
	if err != nil {
		return nil, err
	}

	settled := reconciliation.SettleFIFO(records, totalPaid)
	for _, record := range settled {
		if err := record.MarkPaid(); err != nil {
			return nil, err
		}
		if err := s.consumptionRepo.Save(ctx, record); err != nil {
			return nil, err
		}
	}

	s.logger.Info("payment recorded",
		zap.String("expedition_id", expeditionID.String()),
		zap.String("alias", req.Alias),
		zap.String("amount", req.Amount.String()),
		zap.Int("settled_records", len(settled)))

	return &PaymentResponse{
		ID:                 payment.ID,
		ExpeditionID:       expeditionID,
		Alias:              payment.Alias,
		Amount:             payment.Amount,
		Method:             payment.Method,
		ExternalPaymentRef: payment.ExternalPaymentRef,
		SettledRecords:     len(settled),
		RecordedAt:         payment.RecordedAt,
	}, nil
}

// FinancialSummary aggregates the anonymized financial position of an
// expedition. No owner key is needed and nothing is decrypted.
func (s *BridgeService) FinancialSummary(ctx context.Context, expeditionID uuid.UUID) (*FinancialSummaryResponse, error) {
	if _, err := s.expeditionRepo.FindByID(ctx, expeditionID); err != nil {
		return nil, err
	}

	records, err := s.consumptionRepo.FindByExpedition(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByExpedition(ctx, expeditionID)
	if err != nil {
		return nil, err
	}

	owedByAlias := make(map[string]decimal.Decimal)
	paidByAlias := make(map[string]decimal.Decimal)
	response := &FinancialSummaryResponse{
		ExpeditionID:     expeditionID,
		TotalConsumed:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	for i := range records {
		amount := records[i].Amount()
		response.TotalConsumed = response.TotalConsumed.Add(amount)
		owedByAlias[records[i].Alias] = owedByAlias[records[i].Alias].Add(amount)
		if records[i].IsPending() {
			response.PendingRecords++
		}
		if records[i].IsReconciled() {
			response.ReconciledRecords++
		}
	}
	for i := range payments {
		response.TotalPaid = response.TotalPaid.Add(payments[i].Amount)
		paidByAlias[payments[i].Alias] = paidByAlias[payments[i].Alias].Add(payments[i].Amount)
	}

	aliases := make([]string, 0, len(owedByAlias))
	for alias := range owedByAlias {
		aliases = append(aliases, alias)
	}
	for alias := range paidByAlias {
		if _, owed := owedByAlias[alias]; !owed {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)

	response.Aliases = make([]AliasSummary, 0, len(aliases))
	for _, alias := range aliases {
		owed := owedByAlias[alias]
		paid := paidByAlias[alias]
		response.Aliases = append(response.Aliases, AliasSummary{
			Alias:       alias,
			TotalOwed:   owed,
			TotalPaid:   paid,
			Outstanding: owed.Sub(paid),
		})
	}
	response.TotalOutstanding = response.TotalConsumed.Sub(response.TotalPaid)
	return response, nil
}

// decryptAliases resolves every alias appearing in records to its real
// identity. Any failure aborts the whole map so callers never proceed with
// a partial identity set.
func (s *BridgeService) decryptAliases(ctx context.Context, expeditionID uuid.UUID, records []expedition.Consumption, ownerKey []byte) (map[string]string, error) {
	identities := make(map[string]string)
	for i := range records {
		alias := records[i].Alias
		if _, done := identities[alias]; done {
			continue
		}
		pirate, err := s.pirateRepo.FindByAlias(ctx, expeditionID, alias)
		if err != nil {
			return nil, err
		}
		plaintext, err := s.cipher.Decrypt(pirate.EncryptedIdentity, ownerKey)
		if err != nil {
			return nil, err
		}
		identities[alias] = string(plaintext)
	}
	return identities, nil
}

func (s *BridgeService) productRefsByItem(ctx context.Context, expeditionID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	items, err := s.itemRepo.FindByExpedition(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	refs := make(map[uuid.UUID]uuid.UUID, len(items))
	for i := range items {
		refs[items[i].ID] = items[i].ProductRef
	}
	return refs, nil
}
