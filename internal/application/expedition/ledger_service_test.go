package expedition

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/reconciliation"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/infrastructure/crypto"
)

// MockPaymentRepository is a mock implementation of reconciliation.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByExpedition(ctx context.Context, expeditionID uuid.UUID) ([]reconciliation.Payment, error) {
	args := m.Called(ctx, expeditionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconciliation.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) ([]reconciliation.Payment, error) {
	args := m.Called(ctx, expeditionID, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconciliation.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumByAlias(ctx context.Context, expeditionID uuid.UUID, alias string) (decimal.Decimal, error) {
	args := m.Called(ctx, expeditionID, alias)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumByExpedition(ctx context.Context, expeditionID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, expeditionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *reconciliation.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type ledgerServiceFixture struct {
	service         *LedgerService
	expeditionRepo  *MockExpeditionRepository
	itemRepo        *MockItemRepository
	consumptionRepo *MockConsumptionRepository
	pirateRepo      *MockPirateRepository
	paymentRepo     *MockPaymentRepository
	catalog         *MockProductCatalog
	notifier        *MockNotifier
	cipher          *crypto.EnvelopeCipher
	ownerKey        []byte
	expedition      *expedition.Expedition
}

func newLedgerServiceFixture(t *testing.T) *ledgerServiceFixture {
	cipher := crypto.NewEnvelopeCipher()
	ownerKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	f := &ledgerServiceFixture{
		expeditionRepo:  new(MockExpeditionRepository),
		itemRepo:        new(MockItemRepository),
		consumptionRepo: new(MockConsumptionRepository),
		pirateRepo:      new(MockPirateRepository),
		paymentRepo:     new(MockPaymentRepository),
		catalog:         new(MockProductCatalog),
		notifier:        new(MockNotifier),
		cipher:          cipher,
		ownerKey:        ownerKey,
		expedition:      newTestExpedition(t, cipher, ownerKey),
	}
	f.service = NewLedgerService(f.expeditionRepo, f.itemRepo, f.consumptionRepo, f.pirateRepo, f.paymentRepo, f.catalog, cipher, f.notifier, nil)
	return f
}

func (f *ledgerServiceFixture) product(ref uuid.UUID) *expedition.Product {
	return &expedition.Product{
		Ref:       ref,
		Code:      "RUM-001",
		Name:      "Rum, dark, 0.7l",
		ListPrice: decimal.NewFromFloat(2.00),
	}
}

func TestLedgerService_AddItem(t *testing.T) {
	ctx := context.Background()
	productRef := uuid.New()

	t.Run("pools a catalog product", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.catalog.On("GetProduct", ctx, productRef).Return(f.product(productRef), nil)
		f.itemRepo.On("ExistsByProduct", ctx, f.expedition.ID, productRef).Return(false, nil)

		var saved *expedition.Item
		f.itemRepo.On("Save", ctx, mock.AnythingOfType("*expedition.Item")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*expedition.Item) }).
			Return(nil)

		response, err := f.service.AddItem(ctx, f.expedition.ID, f.ownerKey, AddItemRequest{
			ProductRef:       productRef,
			QuantityRequired: decimal.NewFromInt(24),
		})
		require.NoError(t, err)
		assert.True(t, response.Remaining.Equal(decimal.NewFromInt(24)))

		// The owner key was supplied, so the display name is sealed on.
		require.NotNil(t, saved)
		require.NotEmpty(t, saved.EncryptedLabel)
		plaintext, err := f.cipher.Decrypt(saved.EncryptedLabel, f.ownerKey)
		require.NoError(t, err)
		assert.Equal(t, "Rum, dark, 0.7l", string(plaintext))
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.catalog.On("GetProduct", ctx, productRef).Return(nil, shared.NewNotFoundError("UNKNOWN_PRODUCT", "Product not found"))

		_, err := f.service.AddItem(ctx, f.expedition.ID, nil, AddItemRequest{
			ProductRef:       productRef,
			QuantityRequired: decimal.NewFromInt(24),
		})
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
		f.itemRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate product rejected", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.catalog.On("GetProduct", ctx, productRef).Return(f.product(productRef), nil)
		f.itemRepo.On("ExistsByProduct", ctx, f.expedition.ID, productRef).Return(true, nil)

		_, err := f.service.AddItem(ctx, f.expedition.ID, nil, AddItemRequest{
			ProductRef:       productRef,
			QuantityRequired: decimal.NewFromInt(24),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("closed expedition rejected", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		require.NoError(t, f.expedition.Activate())
		require.NoError(t, f.expedition.Cancel())
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)

		_, err := f.service.AddItem(ctx, f.expedition.ID, nil, AddItemRequest{
			ProductRef:       productRef,
			QuantityRequired: decimal.NewFromInt(24),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}

func TestLedgerService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	productRef := uuid.New()

	t.Run("removes an untouched item", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		item, err := expedition.NewItem(f.expedition.ID, productRef, decimal.NewFromInt(10), nil)
		require.NoError(t, err)

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.itemRepo.On("FindByProduct", ctx, f.expedition.ID, productRef).Return(item, nil)
		f.itemRepo.On("Delete", ctx, item.ID).Return(nil)

		require.NoError(t, f.service.RemoveItem(ctx, f.expedition.ID, productRef))
		f.itemRepo.AssertExpectations(t)
	})

	t.Run("refused once consumption exists", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		item, err := expedition.NewItem(f.expedition.ID, productRef, decimal.NewFromInt(10), nil)
		require.NoError(t, err)
		item.QuantityConsumed = decimal.NewFromInt(3)

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.itemRepo.On("FindByProduct", ctx, f.expedition.ID, productRef).Return(item, nil)

		err = f.service.RemoveItem(ctx, f.expedition.ID, productRef)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
		f.itemRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestLedgerService_RecordConsumption(t *testing.T) {
	ctx := context.Background()
	productRef := uuid.New()
	alias := "Salty Jack"

	targetPrice := decimal.NewFromFloat(2.00)
	newItem := func(t *testing.T, f *ledgerServiceFixture) *expedition.Item {
		item, err := expedition.NewItem(f.expedition.ID, productRef, decimal.NewFromInt(10), &targetPrice)
		require.NoError(t, err)
		return item
	}

	t.Run("records and activates a planning expedition", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		item := newItem(t, f)

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, alias).Return(true, nil)
		f.itemRepo.On("FindByProduct", ctx, f.expedition.ID, productRef).Return(item, nil)
		f.consumptionRepo.On("Record", ctx, mock.AnythingOfType("*expedition.Consumption")).Return(nil)
		f.expeditionRepo.On("SaveWithLock", ctx, f.expedition).Return(nil)
		f.notifier.On("OnProgressChanged", ctx, f.expedition.ID, mock.Anything).Return()

		response, err := f.service.RecordConsumption(ctx, f.expedition.ID, RecordConsumptionRequest{
			Alias:      alias,
			ProductRef: productRef,
			Quantity:   decimal.NewFromInt(6),
		})
		require.NoError(t, err)
		assert.Equal(t, alias, response.Alias)
		assert.True(t, response.Amount.Equal(decimal.NewFromFloat(12.00)))
		assert.Equal(t, "PENDING", response.PaymentStatus)
		assert.Equal(t, expedition.StatusActive, f.expedition.Status)
		f.notifier.AssertExpectations(t)
	})

	t.Run("unknown alias rejected", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, "Ghost Pew").Return(false, nil)

		_, err := f.service.RecordConsumption(ctx, f.expedition.ID, RecordConsumptionRequest{
			Alias:      "Ghost Pew",
			ProductRef: productRef,
			Quantity:   decimal.NewFromInt(1),
		})
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})

	t.Run("over-consumption rejected up front", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		item := newItem(t, f)
		item.QuantityConsumed = decimal.NewFromInt(8)

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, alias).Return(true, nil)
		f.itemRepo.On("FindByProduct", ctx, f.expedition.ID, productRef).Return(item, nil)

		_, err := f.service.RecordConsumption(ctx, f.expedition.ID, RecordConsumptionRequest{
			Alias:      alias,
			ProductRef: productRef,
			Quantity:   decimal.NewFromInt(3),
		})
		assert.True(t, shared.IsKind(err, shared.KindConflict))
		f.consumptionRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("storage guard conflict propagates", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		item := newItem(t, f)

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, alias).Return(true, nil)
		f.itemRepo.On("FindByProduct", ctx, f.expedition.ID, productRef).Return(item, nil)
		f.consumptionRepo.On("Record", ctx, mock.AnythingOfType("*expedition.Consumption")).
			Return(shared.NewConflictError("OVER_CONSUMPTION", "Requested quantity exceeds the remaining quantity"))

		_, err := f.service.RecordConsumption(ctx, f.expedition.ID, RecordConsumptionRequest{
			Alias:      alias,
			ProductRef: productRef,
			Quantity:   decimal.NewFromInt(6),
		})
		assert.True(t, shared.IsKind(err, shared.KindConflict))
	})

	t.Run("terminal expedition rejected", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		require.NoError(t, f.expedition.Activate())
		require.NoError(t, f.expedition.Fail())
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)

		_, err := f.service.RecordConsumption(ctx, f.expedition.ID, RecordConsumptionRequest{
			Alias:      alias,
			ProductRef: productRef,
			Quantity:   decimal.NewFromInt(1),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("passed deadline rejected", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		past := time.Now().Add(-time.Minute)
		f.expedition.Deadline = &past
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)

		_, err := f.service.RecordConsumption(ctx, f.expedition.ID, RecordConsumptionRequest{
			Alias:      alias,
			ProductRef: productRef,
			Quantity:   decimal.NewFromInt(1),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("falls back to catalog price", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		item, err := expedition.NewItem(f.expedition.ID, productRef, decimal.NewFromInt(10), nil)
		require.NoError(t, err)
		require.NoError(t, f.expedition.Activate())
		f.expedition.ClearDomainEvents()

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, alias).Return(true, nil)
		f.itemRepo.On("FindByProduct", ctx, f.expedition.ID, productRef).Return(item, nil)
		f.catalog.On("GetProduct", ctx, productRef).Return(f.product(productRef), nil)
		f.consumptionRepo.On("Record", ctx, mock.AnythingOfType("*expedition.Consumption")).Return(nil)
		f.notifier.On("OnProgressChanged", ctx, f.expedition.ID, mock.Anything).Return()

		response, err := f.service.RecordConsumption(ctx, f.expedition.ID, RecordConsumptionRequest{
			Alias:      alias,
			ProductRef: productRef,
			Quantity:   decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		assert.True(t, response.UnitPrice.Equal(decimal.NewFromFloat(2.00)))
	})
}

func TestLedgerService_DebtForAlias(t *testing.T) {
	ctx := context.Background()
	alias := "Salty Jack"

	t.Run("sums owed, paid and pending", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		itemID := uuid.New()
		paid, err := expedition.NewConsumption(itemID, alias, decimal.NewFromInt(2), decimal.NewFromFloat(3.00))
		require.NoError(t, err)
		require.NoError(t, paid.MarkPaid())
		pending, err := expedition.NewConsumption(itemID, alias, decimal.NewFromInt(6), decimal.NewFromFloat(2.00))
		require.NoError(t, err)

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, alias).Return(true, nil)
		f.consumptionRepo.On("FindByAlias", ctx, f.expedition.ID, alias).
			Return([]expedition.Consumption{*paid, *pending}, nil)
		f.paymentRepo.On("SumByAlias", ctx, f.expedition.ID, alias).Return(decimal.NewFromFloat(6.00), nil)

		response, err := f.service.DebtForAlias(ctx, f.expedition.ID, alias)
		require.NoError(t, err)
		assert.True(t, response.TotalOwed.Equal(decimal.NewFromFloat(18.00)))
		assert.True(t, response.TotalPaid.Equal(decimal.NewFromFloat(6.00)))
		assert.True(t, response.TotalPending.Equal(decimal.NewFromFloat(12.00)))
		assert.Len(t, response.Records, 2)
	})

	t.Run("partial payment shows as paid while the record stays pending", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		pending, err := expedition.NewConsumption(uuid.New(), alias, decimal.NewFromInt(6), decimal.NewFromFloat(2.00))
		require.NoError(t, err)

		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, alias).Return(true, nil)
		f.consumptionRepo.On("FindByAlias", ctx, f.expedition.ID, alias).
			Return([]expedition.Consumption{*pending}, nil)
		f.paymentRepo.On("SumByAlias", ctx, f.expedition.ID, alias).Return(decimal.NewFromFloat(5.00), nil)

		response, err := f.service.DebtForAlias(ctx, f.expedition.ID, alias)
		require.NoError(t, err)
		assert.True(t, response.TotalOwed.Equal(decimal.NewFromFloat(12.00)))
		assert.True(t, response.TotalPaid.Equal(decimal.NewFromFloat(5.00)))
		assert.True(t, response.TotalPending.Equal(decimal.NewFromFloat(12.00)))
		require.Len(t, response.Records, 1)
		assert.Equal(t, "PENDING", response.Records[0].PaymentStatus)
	})

	t.Run("unknown alias", func(t *testing.T) {
		f := newLedgerServiceFixture(t)
		f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
		f.pirateRepo.On("ExistsByAlias", ctx, f.expedition.ID, "Ghost Pew").Return(false, nil)

		_, err := f.service.DebtForAlias(ctx, f.expedition.ID, "Ghost Pew")
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})
}

func TestLedgerService_Progress(t *testing.T) {
	ctx := context.Background()
	f := newLedgerServiceFixture(t)

	itemA, err := expedition.NewItem(f.expedition.ID, uuid.New(), decimal.NewFromInt(10), nil)
	require.NoError(t, err)
	itemA.QuantityConsumed = decimal.NewFromInt(5)
	itemB, err := expedition.NewItem(f.expedition.ID, uuid.New(), decimal.NewFromInt(10), nil)
	require.NoError(t, err)
	itemB.QuantityConsumed = decimal.NewFromInt(10)

	f.expeditionRepo.On("FindByID", ctx, f.expedition.ID).Return(f.expedition, nil)
	f.itemRepo.On("FindByExpedition", ctx, f.expedition.ID).Return([]expedition.Item{*itemA, *itemB}, nil)

	response, err := f.service.Progress(ctx, f.expedition.ID)
	require.NoError(t, err)
	require.Len(t, response.Items, 2)
	assert.True(t, response.Items[0].Percent.Equal(decimal.NewFromInt(50)))
	assert.True(t, response.Items[1].Percent.Equal(decimal.NewFromInt(100)))
	assert.True(t, response.OverallPercent.Equal(decimal.NewFromInt(75)))
}
