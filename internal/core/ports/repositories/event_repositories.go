package repositories

import (
	"context"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// EventReader is the read-only view over the order and document rows
// owned by the surrounding CRUD controllers. The ledger core never
// writes these tables; it reads them to validate references and to
// replay history.
type EventReader interface {
	// ListActiveOrders retrieves every non-deleted order.
	ListActiveOrders(ctx context.Context) ([]domain.Order, error)

	// ListActiveOrdersByCurrency retrieves non-deleted orders with the
	// currency on either leg, for targeted pool repair.
	ListActiveOrdersByCurrency(ctx context.Context, currencyCode string) ([]domain.Order, error)

	// ListAppliedDocuments retrieves every non-deleted, verified
	// accounting document.
	ListAppliedDocuments(ctx context.Context) ([]domain.AccountingDocument, error)

	// CountSkippedEvents returns how many orders and documents are
	// excluded from replay (deleted orders; deleted or unverified
	// documents).
	CountSkippedEvents(ctx context.Context) (orders int, documents int, err error)

	// FindCustomerByID resolves a customer reference.
	FindCustomerByID(ctx context.Context, customerID int64) (*domain.CustomerRef, error)

	// FindBankAccountByID resolves a bank account reference.
	FindBankAccountByID(ctx context.Context, bankAccountID int64) (*domain.BankAccountRef, error)
}

// RecalcRunWriter persists recalculation run markers.
type RecalcRunWriter interface {
	// CreateRun inserts a RUNNING run row before the replay starts.
	CreateRun(ctx context.Context, run domain.RecalculationRun) error

	// FinishRun finalizes the run row with its terminal status.
	FinishRun(ctx context.Context, run domain.RecalculationRun) error
}

// RecalcRunReader lists past runs (including incomplete markers).
type RecalcRunReader interface {
	ListRuns(ctx context.Context, limit int) ([]domain.RecalculationRun, error)
}

// RecalcRunRepositoryFacade combines recalculation run operations.
type RecalcRunRepositoryFacade interface {
	RecalcRunWriter
	RecalcRunReader
}
