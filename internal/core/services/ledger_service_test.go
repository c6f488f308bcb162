package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/processors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo   *MockLedgerRepository
	mockEventRepo    *MockEventRepository
	mockCurrencyRepo *MockCurrencyRepository
	mockNotifier     *MockNotifier
	service          portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockEventRepo = new(MockEventRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockNotifier = new(MockNotifier)
	repos := portsrepo.RepositoryProvider{
		LedgerRepo:   suite.mockLedgerRepo,
		EventRepo:    suite.mockEventRepo,
		CurrencyRepo: suite.mockCurrencyRepo,
	}
	suite.service = services.NewLedgerService(repos, "IRR", 3, suite.mockNotifier)
}

func (suite *LedgerServiceTestSuite) validOrder() domain.Order {
	return domain.Order{
		ID:           42,
		CustomerID:   7,
		FromCurrency: "IRR",
		FromAmount:   dec("1000000"),
		ToCurrency:   "USD",
		ToAmount:     dec("10"),
		Rate:         dec("100000"),
		CreatedAt:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		CreatedBy:    "op1",
	}
}

func (suite *LedgerServiceTestSuite) expectCustomer(id int64) {
	suite.mockEventRepo.On("FindCustomerByID", mock.Anything, id).
		Return(&domain.CustomerRef{ID: id, DisplayName: "c"}, nil)
}

// appliedEntries fabricates the persisted entries the repository would
// return for an order apply.
func appliedEntries(order domain.Order) []domain.JournalEntry {
	refID := order.ID
	return []domain.JournalEntry{
		{ID: 101, OwnerKind: domain.OwnerCustomer, OwnerID: order.CustomerID, CurrencyCode: "IRR",
			Delta: dec("-1000000"), BalanceBefore: dec("5000000"), BalanceAfter: dec("4000000"),
			EventKind: domain.EventOrder, EventRefID: &refID},
		{ID: 102, OwnerKind: domain.OwnerCustomer, OwnerID: order.CustomerID, CurrencyCode: "USD",
			Delta: dec("10"), BalanceBefore: dec("0"), BalanceAfter: dec("10"),
			EventKind: domain.EventOrder, EventRefID: &refID},
		{ID: 103, OwnerKind: domain.OwnerCurrencyPool, OwnerID: 0, CurrencyCode: "IRR",
			Delta: dec("1000000"), BalanceBefore: dec("100"), BalanceAfter: dec("1000100"),
			EventKind: domain.EventOrder, EventRefID: &refID},
		{ID: 104, OwnerKind: domain.OwnerCurrencyPool, OwnerID: 0, CurrencyCode: "USD",
			Delta: dec("-10"), BalanceBefore: dec("500"), BalanceAfter: dec("490"),
			EventKind: domain.EventOrder, EventRefID: &refID},
	}
}

// --- reads ---

func (suite *LedgerServiceTestSuite) TestGetBalance_UntouchedAccountReadsZero() {
	ctx := context.Background()
	key := domain.AccountKey{OwnerKind: domain.OwnerCustomer, OwnerID: 1, CurrencyCode: "USD"}

	suite.mockLedgerRepo.On("FindAccount", ctx, key).
		Return(nil, apperrors.NewNotFoundError("no such account")).Once()

	balance, err := suite.service.GetBalance(ctx, key)

	suite.Require().NoError(err)
	suite.True(balance.IsZero())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetBalance_Found() {
	ctx := context.Background()
	key := domain.PoolKey("USD")

	suite.mockLedgerRepo.On("FindAccount", ctx, key).
		Return(&domain.LedgerAccount{AccountKey: key, Balance: dec("123.45")}, nil).Once()

	balance, err := suite.service.GetBalance(ctx, key)

	suite.Require().NoError(err)
	suite.True(balance.Equal(dec("123.45")))
}

func (suite *LedgerServiceTestSuite) TestListEntries_ClampsLimit() {
	ctx := context.Background()
	key := domain.AccountKey{OwnerKind: domain.OwnerCustomer, OwnerID: 1, CurrencyCode: "USD"}

	suite.mockLedgerRepo.On("ListActiveEntries", ctx, key, 50, (*string)(nil)).
		Return([]domain.JournalEntry{}, nil, nil).Once()
	suite.mockLedgerRepo.On("ListActiveEntries", ctx, key, 200, (*string)(nil)).
		Return([]domain.JournalEntry{}, nil, nil).Once()

	_, err := suite.service.ListEntries(ctx, key, dto.ListEntriesParams{Limit: 0})
	suite.Require().NoError(err)
	_, err = suite.service.ListEntries(ctx, key, dto.ListEntriesParams{Limit: 9999})
	suite.Require().NoError(err)

	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- preview ---

func (suite *LedgerServiceTestSuite) TestPreviewOrderEffects_Success() {
	ctx := context.Background()
	order := suite.validOrder()
	suite.expectCustomer(order.CustomerID)

	suite.mockLedgerRepo.On("FindAccount", ctx, mock.AnythingOfType("domain.AccountKey")).
		Return(nil, apperrors.NewNotFoundError("no such account"))
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, mock.AnythingOfType("string")).
		Return(nil, apperrors.NewNotFoundError("no such currency"))

	report, err := suite.service.PreviewOrderEffects(ctx, order)

	suite.Require().NoError(err)
	suite.Empty(report.Warnings)
	suite.Require().Len(report.Effects, 4)
	// Nothing was written.
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ApplyDrafts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	customerFrom := report.Effects[0]
	suite.Equal(domain.OwnerCustomer, customerFrom.OwnerKind)
	suite.True(customerFrom.Delta.Equal(dec("-1000000")))
	suite.True(customerFrom.NewBalance.Equal(dec("-1000000")), "zero starting balance plus delta")
}

func (suite *LedgerServiceTestSuite) TestPreviewOrderEffects_SuspiciousRateWarnsButShowsEffects() {
	ctx := context.Background()
	order := suite.validOrder()
	order.Rate = dec("0.00001")
	suite.expectCustomer(order.CustomerID)

	suite.mockLedgerRepo.On("FindAccount", ctx, mock.AnythingOfType("domain.AccountKey")).
		Return(nil, apperrors.NewNotFoundError("no such account"))
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, mock.AnythingOfType("string")).
		Return(nil, apperrors.NewNotFoundError("no such currency"))

	report, err := suite.service.PreviewOrderEffects(ctx, order)

	suite.Require().NoError(err)
	suite.Require().Len(report.Warnings, 1)
	suite.Contains(report.Warnings[0], "rate")
	suite.Len(report.Effects, 4, "the preview still shows what would happen")
}

func (suite *LedgerServiceTestSuite) TestPreviewOrderEffects_HardValidationErrorStops() {
	ctx := context.Background()
	order := suite.validOrder()
	order.ToCurrency = "IRR"
	suite.expectCustomer(order.CustomerID)

	_, err := suite.service.PreviewOrderEffects(ctx, order)

	suite.Require().Error(err)
	suite.ErrorIs(err, processors.ErrSameCurrency)
}

// --- order application ---

func (suite *LedgerServiceTestSuite) TestProcessOrderCreation_Success() {
	ctx := context.Background()
	order := suite.validOrder()
	entries := appliedEntries(order)
	suite.expectCustomer(order.CustomerID)

	suite.mockLedgerRepo.On("ApplyDrafts", ctx, mock.AnythingOfType("[]domain.EntryDraft"), "op1", mock.AnythingOfType("time.Time")).
		Return(entries, nil).Once()
	suite.mockNotifier.On("NotifyApplied", ctx, domain.EventOrder, mock.AnythingOfType("*int64"), entries).Once()

	resp, err := suite.service.ProcessOrderCreation(ctx, order, "op1")

	suite.Require().NoError(err)
	suite.Equal([]int64{101, 102, 103, 104}, resp.EntryIDs)
	suite.Require().Len(resp.Effects, 4)
	suite.True(resp.Effects[0].OldBalance.Equal(dec("5000000")))
	suite.True(resp.Effects[0].NewBalance.Equal(dec("4000000")))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessOrderCreation_SuspiciousRateRejected() {
	ctx := context.Background()
	order := suite.validOrder()
	order.Rate = dec("0.00001")
	suite.expectCustomer(order.CustomerID)

	_, err := suite.service.ProcessOrderCreation(ctx, order, "op1")

	suite.Require().Error(err)
	suite.True(processors.IsSuspiciousRate(err))
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ApplyDrafts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestProcessOrderCreation_DeletedCustomerRejected() {
	ctx := context.Background()
	order := suite.validOrder()

	suite.mockEventRepo.On("FindCustomerByID", ctx, order.CustomerID).
		Return(&domain.CustomerRef{ID: order.CustomerID, IsDeleted: true}, nil).Once()

	_, err := suite.service.ProcessOrderCreation(ctx, order, "op1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCustomerDeleted)
}

func (suite *LedgerServiceTestSuite) TestProcessOrderCreation_RetriesTransientConflict() {
	ctx := context.Background()
	order := suite.validOrder()
	entries := appliedEntries(order)
	suite.expectCustomer(order.CustomerID)

	transient := errors.Join(apperrors.ErrTransient, errors.New("deadlock detected"))
	suite.mockLedgerRepo.On("ApplyDrafts", ctx, mock.AnythingOfType("[]domain.EntryDraft"), "op1", mock.AnythingOfType("time.Time")).
		Return(nil, transient).Twice()
	suite.mockLedgerRepo.On("ApplyDrafts", ctx, mock.AnythingOfType("[]domain.EntryDraft"), "op1", mock.AnythingOfType("time.Time")).
		Return(entries, nil).Once()
	suite.mockNotifier.On("NotifyApplied", ctx, domain.EventOrder, mock.AnythingOfType("*int64"), entries).Once()

	resp, err := suite.service.ProcessOrderCreation(ctx, order, "op1")

	suite.Require().NoError(err)
	suite.Len(resp.EntryIDs, 4)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessOrderCreation_NonTransientErrorNotRetried() {
	ctx := context.Background()
	order := suite.validOrder()
	suite.expectCustomer(order.CustomerID)

	busy := apperrors.NewAppError(409, "ledger is busy, recalculation cannot start", apperrors.ErrRecalcInProgress)
	suite.mockLedgerRepo.On("ApplyDrafts", ctx, mock.AnythingOfType("[]domain.EntryDraft"), "op1", mock.AnythingOfType("time.Time")).
		Return(nil, busy).Once()

	_, err := suite.service.ProcessOrderCreation(ctx, order, "op1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRecalcInProgress)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- document application ---

func (suite *LedgerServiceTestSuite) validDocument() domain.AccountingDocument {
	return domain.AccountingDocument{
		ID:                 9,
		PayerCustomerID:    1,
		ReceiverCustomerID: 2,
		CurrencyCode:       "USD",
		Amount:             dec("250"),
		DocumentDate:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		IsVerified:         true,
	}
}

func (suite *LedgerServiceTestSuite) TestProcessAccountingDocument_UnverifiedIsNoOp() {
	ctx := context.Background()
	doc := suite.validDocument()
	doc.IsVerified = false
	suite.expectCustomer(doc.PayerCustomerID)
	suite.expectCustomer(doc.ReceiverCustomerID)

	resp, err := suite.service.ProcessAccountingDocument(ctx, doc, "op1")

	suite.Require().NoError(err)
	suite.Empty(resp.EntryIDs)
	suite.Empty(resp.Effects)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ApplyDrafts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestProcessAccountingDocument_BankCurrencyMismatch() {
	ctx := context.Background()
	bankID := int64(11)
	doc := suite.validDocument()
	doc.PayerBankAccountID = &bankID
	suite.expectCustomer(doc.PayerCustomerID)
	suite.expectCustomer(doc.ReceiverCustomerID)

	suite.mockEventRepo.On("FindBankAccountByID", ctx, bankID).
		Return(&domain.BankAccountRef{ID: bankID, CurrencyCode: "EUR"}, nil).Once()

	_, err := suite.service.ProcessAccountingDocument(ctx, doc, "op1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrBankCurrency)
}

func (suite *LedgerServiceTestSuite) TestProcessAccountingDocument_Success() {
	ctx := context.Background()
	doc := suite.validDocument()
	refID := doc.ID
	entries := []domain.JournalEntry{
		{ID: 201, OwnerKind: domain.OwnerCustomer, OwnerID: 1, CurrencyCode: "USD",
			Delta: dec("250"), BalanceBefore: dec("0"), BalanceAfter: dec("250"),
			EventKind: domain.EventDocument, EventRefID: &refID},
		{ID: 202, OwnerKind: domain.OwnerCustomer, OwnerID: 2, CurrencyCode: "USD",
			Delta: dec("-250"), BalanceBefore: dec("100"), BalanceAfter: dec("-150"),
			EventKind: domain.EventDocument, EventRefID: &refID},
	}
	suite.expectCustomer(doc.PayerCustomerID)
	suite.expectCustomer(doc.ReceiverCustomerID)

	suite.mockLedgerRepo.On("ApplyDrafts", ctx, mock.AnythingOfType("[]domain.EntryDraft"), "op1", mock.AnythingOfType("time.Time")).
		Return(entries, nil).Once()
	suite.mockNotifier.On("NotifyApplied", ctx, domain.EventDocument, mock.AnythingOfType("*int64"), entries).Once()

	resp, err := suite.service.ProcessAccountingDocument(ctx, doc, "op1")

	suite.Require().NoError(err)
	suite.Equal([]int64{201, 202}, resp.EntryIDs)
	suite.Require().Len(resp.Effects, 2)
}

// --- manual entries ---

func (suite *LedgerServiceTestSuite) TestCreateManualEntry_Success() {
	ctx := context.Background()
	adj := domain.ManualAdjustment{
		OwnerKind:    domain.OwnerCustomer,
		OwnerID:      5,
		CurrencyCode: "USD",
		Amount:       dec("-120"),
		Reason:       "cash count correction",
		EventDate:    time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		PerformedBy:  "op2",
	}
	entries := []domain.JournalEntry{
		{ID: 301, OwnerKind: domain.OwnerCustomer, OwnerID: 5, CurrencyCode: "USD",
			Delta: dec("-120"), BalanceBefore: dec("500"), BalanceAfter: dec("380"),
			EventKind: domain.EventManual},
	}

	suite.mockLedgerRepo.On("ApplyDrafts", ctx, mock.AnythingOfType("[]domain.EntryDraft"), "op2", mock.AnythingOfType("time.Time")).
		Return(entries, nil).Once()
	suite.mockNotifier.On("NotifyApplied", ctx, domain.EventManual, (*int64)(nil), entries).Once()

	resp, err := suite.service.CreateManualEntry(ctx, adj)

	suite.Require().NoError(err)
	suite.Equal([]int64{301}, resp.EntryIDs)
}

func (suite *LedgerServiceTestSuite) TestCreateManualEntry_MissingReasonRejected() {
	ctx := context.Background()
	adj := domain.ManualAdjustment{
		OwnerKind:    domain.OwnerCustomer,
		OwnerID:      5,
		CurrencyCode: "USD",
		Amount:       dec("-120"),
		PerformedBy:  "op2",
	}

	_, err := suite.service.CreateManualEntry(ctx, adj)

	suite.Require().Error(err)
	suite.ErrorIs(err, processors.ErrReasonMissing)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ApplyDrafts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteManualEntry_RejectsNonManual() {
	ctx := context.Background()
	entry := &domain.JournalEntry{ID: 77, OwnerKind: domain.OwnerCustomer, EventKind: domain.EventOrder}

	suite.mockLedgerRepo.On("FindEntryByID", ctx, domain.OwnerCustomer, int64(77)).
		Return(entry, nil).Once()

	_, err := suite.service.DeleteManualEntry(ctx, domain.OwnerCustomer, 77, "op1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotManualEntry)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReverseEntryByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteManualEntry_Success() {
	ctx := context.Background()
	entry := &domain.JournalEntry{ID: 77, OwnerKind: domain.OwnerCustomer, EventKind: domain.EventManual}

	suite.mockLedgerRepo.On("FindEntryByID", ctx, domain.OwnerCustomer, int64(77)).
		Return(entry, nil).Once()
	suite.mockLedgerRepo.On("ReverseEntryByID", ctx, domain.OwnerCustomer, int64(77), "op1", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockNotifier.On("NotifyReversed", ctx, domain.EventManual, (*int64)(nil), 1).Once()

	resp, err := suite.service.DeleteManualEntry(ctx, domain.OwnerCustomer, 77, "op1")

	suite.Require().NoError(err)
	suite.Equal([]int64{77}, resp.ReversedEntryIDs)
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeleteManualEntry_AlreadyReversedIsIdempotent() {
	ctx := context.Background()
	entry := &domain.JournalEntry{ID: 77, OwnerKind: domain.OwnerCustomer, EventKind: domain.EventManual, Status: domain.EntryReversed}

	suite.mockLedgerRepo.On("FindEntryByID", ctx, domain.OwnerCustomer, int64(77)).
		Return(entry, nil).Once()
	suite.mockLedgerRepo.On("ReverseEntryByID", ctx, domain.OwnerCustomer, int64(77), "op1", mock.AnythingOfType("time.Time")).
		Return(false, nil).Once()

	resp, err := suite.service.DeleteManualEntry(ctx, domain.OwnerCustomer, 77, "op1")

	suite.Require().NoError(err)
	suite.Empty(resp.ReversedEntryIDs)
	suite.mockNotifier.AssertNotCalled(suite.T(), "NotifyReversed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- reversals ---

func (suite *LedgerServiceTestSuite) TestDeleteOrder_ReversesAllEntries() {
	ctx := context.Background()
	reversed := []domain.JournalEntry{{ID: 101}, {ID: 102}, {ID: 103}, {ID: 104}}

	suite.mockLedgerRepo.On("ReverseByEventRef", ctx, domain.EventOrder, int64(42), "op1", mock.AnythingOfType("time.Time")).
		Return(reversed, nil).Once()
	suite.mockNotifier.On("NotifyReversed", ctx, domain.EventOrder, mock.AnythingOfType("*int64"), 4).Once()

	resp, err := suite.service.DeleteOrder(ctx, 42, "op1")

	suite.Require().NoError(err)
	suite.Equal([]int64{101, 102, 103, 104}, resp.ReversedEntryIDs)
}

func (suite *LedgerServiceTestSuite) TestReverseDocumentVerification_NothingActiveIsIdempotent() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("ReverseByEventRef", ctx, domain.EventDocument, int64(9), "op1", mock.AnythingOfType("time.Time")).
		Return([]domain.JournalEntry{}, nil).Once()
	suite.mockNotifier.On("NotifyReversed", ctx, domain.EventDocument, mock.AnythingOfType("*int64"), 0).Once()

	resp, err := suite.service.ReverseDocumentVerification(ctx, 9, "op1")

	suite.Require().NoError(err)
	suite.Empty(resp.ReversedEntryIDs)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
