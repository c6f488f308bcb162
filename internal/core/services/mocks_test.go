package services_test

import (
	"context"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerRepositoryFacade ---

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindAccount(ctx context.Context, key domain.AccountKey) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) ListPoolAccounts(ctx context.Context) ([]domain.LedgerAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) ListAccounts(ctx context.Context, kind domain.OwnerKind, limit int) ([]domain.LedgerAccount, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, kind domain.OwnerKind, entryID int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, kind, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindActiveEntriesByEventRef(ctx context.Context, eventKind domain.EventKind, refID int64) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, eventKind, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListActiveEntries(ctx context.Context, key domain.AccountKey, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, key, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockLedgerRepository) ApplyDrafts(ctx context.Context, drafts []domain.EntryDraft, createdBy string, now time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, drafts, createdBy, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) ReverseByEventRef(ctx context.Context, eventKind domain.EventKind, refID int64, by string, now time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, eventKind, refID, by, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) ReverseEntryByID(ctx context.Context, kind domain.OwnerKind, entryID int64, by string, now time.Time) (bool, error) {
	args := m.Called(ctx, kind, entryID, by, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) BeginRecalc(ctx context.Context) (portsrepo.RecalcSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portsrepo.RecalcSession), args.Error(1)
}

// --- Mock RecalcSession ---

type MockRecalcSession struct {
	mock.Mock
}

func (m *MockRecalcSession) ListManualEntries(ctx context.Context) ([]domain.JournalEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockRecalcSession) ListPoolManualEntries(ctx context.Context, currencyCode string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockRecalcSession) ResetLedgers(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRecalcSession) ResetPoolLedger(ctx context.Context, currencyCode string) error {
	args := m.Called(ctx, currencyCode)
	return args.Error(0)
}

func (m *MockRecalcSession) ApplyDrafts(ctx context.Context, drafts []domain.EntryDraft, createdBy string, now time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, drafts, createdBy, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockRecalcSession) RestoreManualEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRecalcSession) Close() {
	m.Called()
}

// --- Mock EventReader ---

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) ListActiveOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockEventRepository) ListActiveOrdersByCurrency(ctx context.Context, currencyCode string) ([]domain.Order, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockEventRepository) ListAppliedDocuments(ctx context.Context) ([]domain.AccountingDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingDocument), args.Error(1)
}

func (m *MockEventRepository) CountSkippedEvents(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockEventRepository) FindCustomerByID(ctx context.Context, customerID int64) (*domain.CustomerRef, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerRef), args.Error(1)
}

func (m *MockEventRepository) FindBankAccountByID(ctx context.Context, bankAccountID int64) (*domain.BankAccountRef, error) {
	args := m.Called(ctx, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountRef), args.Error(1)
}

// --- Mock RecalcRunRepositoryFacade ---

type MockRecalcRunRepository struct {
	mock.Mock
}

func (m *MockRecalcRunRepository) CreateRun(ctx context.Context, run domain.RecalculationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRecalcRunRepository) FinishRun(ctx context.Context, run domain.RecalculationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRecalcRunRepository) ListRuns(ctx context.Context, limit int) ([]domain.RecalculationRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecalculationRun), args.Error(1)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock Notifier ---

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyApplied(ctx context.Context, kind domain.EventKind, refID *int64, entries []domain.JournalEntry) {
	m.Called(ctx, kind, refID, entries)
}

func (m *MockNotifier) NotifyReversed(ctx context.Context, kind domain.EventKind, refID *int64, count int) {
	m.Called(ctx, kind, refID, count)
}
