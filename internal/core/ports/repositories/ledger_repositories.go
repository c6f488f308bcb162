package repositories

import (
	"context"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// LedgerReader defines read operations over ledger accounts and journals.
type LedgerReader interface {
	// FindAccount retrieves a ledger account by key. Returns
	// apperrors.ErrNotFound if no entry ever touched the account.
	FindAccount(ctx context.Context, key domain.AccountKey) (*domain.LedgerAccount, error)

	// ListPoolAccounts retrieves every currency pool account.
	ListPoolAccounts(ctx context.Context) ([]domain.LedgerAccount, error)

	// ListAccounts retrieves up to limit accounts of one owner kind,
	// ordered by (owner id, currency). Used for report sampling.
	ListAccounts(ctx context.Context, kind domain.OwnerKind, limit int) ([]domain.LedgerAccount, error)

	// FindEntryByID retrieves a single journal entry from the journal of
	// the given owner kind.
	FindEntryByID(ctx context.Context, kind domain.OwnerKind, entryID int64) (*domain.JournalEntry, error)

	// FindActiveEntriesByEventRef retrieves the active entries produced
	// by one event, across all three journals.
	FindActiveEntriesByEventRef(ctx context.Context, eventKind domain.EventKind, refID int64) ([]domain.JournalEntry, error)

	// ListActiveEntries retrieves a paginated slice of the active entries
	// for one account, ascending by (event date, entry id). It returns
	// the entries, a token for the next page, and an error.
	ListActiveEntries(ctx context.Context, key domain.AccountKey, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// LedgerWriter defines the transactional write operations. Every method
// runs as one database transaction holding a shared ledger lock and
// FOR UPDATE row locks on the touched accounts; while a recalculation
// holds the exclusive lock the methods fail with ErrRecalcInProgress.
type LedgerWriter interface {
	// ApplyDrafts materializes processor drafts: locks the affected
	// accounts, fills in before/after balances, appends the journal
	// entries and updates the balances atomically. Returns the persisted
	// entries with ids and balance snapshots.
	ApplyDrafts(ctx context.Context, drafts []domain.EntryDraft, createdBy string, now time.Time) ([]domain.JournalEntry, error)

	// ReverseByEventRef soft-deletes every active entry tied to the
	// event reference across all three journals, appending born-reversed
	// compensating entries and restoring balances. Already-reversed
	// entries are skipped, so the call is idempotent; it returns the
	// entries it reversed (possibly none).
	ReverseByEventRef(ctx context.Context, eventKind domain.EventKind, refID int64, by string, now time.Time) ([]domain.JournalEntry, error)

	// ReverseEntryByID soft-deletes one entry the same way. Reversing an
	// already-reversed entry is a no-op returning false.
	ReverseEntryByID(ctx context.Context, kind domain.OwnerKind, entryID int64, by string, now time.Time) (bool, error)
}

// RecalcSession is an exclusive whole-ledger write session. While open,
// ordinary LedgerWriter calls are rejected. Obtained from BeginRecalc,
// it pins one database connection holding the exclusive ledger lock;
// Close releases both.
type RecalcSession interface {
	// ListManualEntries retrieves every active Manual entry across all
	// journals (the set preserved verbatim by a replay).
	ListManualEntries(ctx context.Context) ([]domain.JournalEntry, error)

	// ListPoolManualEntries retrieves active Manual entries of one
	// currency pool.
	ListPoolManualEntries(ctx context.Context, currencyCode string) ([]domain.JournalEntry, error)

	// ResetLedgers physically clears every non-Manual journal entry and
	// zeroes every balance and pool counter. Manual entries are kept.
	ResetLedgers(ctx context.Context) error

	// ResetPoolLedger does the same restricted to one currency pool.
	ResetPoolLedger(ctx context.Context, currencyCode string) error

	// ApplyDrafts is LedgerWriter.ApplyDrafts running inside the
	// exclusive session (no shared lock is taken).
	ApplyDrafts(ctx context.Context, drafts []domain.EntryDraft, createdBy string, now time.Time) ([]domain.JournalEntry, error)

	// RestoreManualEntry re-applies a preserved Manual entry at its merge
	// position: adds its delta to the account balance and rewrites the
	// entry's before/after snapshots to match the rebuilt history.
	RestoreManualEntry(ctx context.Context, entry domain.JournalEntry) error

	// Close releases the exclusive lock and the pinned connection.
	Close()
}

// LedgerRepositoryFacade combines read and write ledger operations.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter

	// BeginRecalc acquires the exclusive ledger lock. It fails with
	// ErrRecalcInProgress if another recalculation holds it.
	BeginRecalc(ctx context.Context) (RecalcSession, error)
}
