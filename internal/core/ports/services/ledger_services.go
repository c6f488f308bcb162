package services

import (
	"context"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations over the three ledgers.
type LedgerReaderSvc interface {
	// GetBalance returns the balance for one account key. An account with
	// no history reads as zero, not as an error.
	GetBalance(ctx context.Context, key domain.AccountKey) (decimal.Decimal, error)

	// GetAllPoolBalances returns every currency pool with its counters.
	GetAllPoolBalances(ctx context.Context) ([]domain.LedgerAccount, error)

	// ListEntries retrieves a page of active journal entries for an
	// account, oldest event first.
	ListEntries(ctx context.Context, key domain.AccountKey, params dto.ListEntriesParams) (dto.ListEntriesResponse, error)
}

// LedgerWriterSvc defines the event application and reversal operations.
// Each operation commits atomically: every leg of an event lands or none
// does.
type LedgerWriterSvc interface {
	// PreviewOrderEffects computes the balance movements an order would
	// cause without writing anything. A suspicious rate becomes a warning
	// in the report; hard validation failures are returned as errors.
	PreviewOrderEffects(ctx context.Context, order domain.Order) (dto.EffectsReport, error)

	// ProcessOrderCreation writes the four ledger legs of an order.
	ProcessOrderCreation(ctx context.Context, order domain.Order, createdBy string) (dto.AppliedResponse, error)

	// ProcessAccountingDocument writes the legs of a verified document.
	// An unverified document is a no-op success.
	ProcessAccountingDocument(ctx context.Context, doc domain.AccountingDocument, createdBy string) (dto.AppliedResponse, error)

	// DeleteOrder reverses every active entry that references the order.
	// Reversing an already-reversed order is an idempotent no-op.
	DeleteOrder(ctx context.Context, orderID int64, reversedBy string) (dto.ReversedResponse, error)

	// ReverseDocumentVerification reverses the entries of a document whose
	// verification flag was withdrawn or that was deleted.
	ReverseDocumentVerification(ctx context.Context, documentID int64, reversedBy string) (dto.ReversedResponse, error)

	// CreateManualEntry writes a single operator correction entry.
	CreateManualEntry(ctx context.Context, adj domain.ManualAdjustment) (dto.AppliedResponse, error)

	// DeleteManualEntry reverses one manual entry by its id within the
	// owner kind's journal. Returns ErrNotFound for unknown ids and an
	// idempotent no-op for already-reversed ones.
	DeleteManualEntry(ctx context.Context, kind domain.OwnerKind, entryID int64, reversedBy string) (dto.ReversedResponse, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
