package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OwnerKind identifies which of the three parallel ledgers an account
// belongs to.
type OwnerKind string

const (
	OwnerCustomer     OwnerKind = "CUSTOMER"
	OwnerBankAccount  OwnerKind = "BANK_ACCOUNT"
	OwnerCurrencyPool OwnerKind = "CURRENCY_POOL"
)

// ValidOwnerKind reports whether k is one of the three ledger kinds.
func ValidOwnerKind(k OwnerKind) bool {
	switch k {
	case OwnerCustomer, OwnerBankAccount, OwnerCurrencyPool:
		return true
	}
	return false
}

// AccountKey is the identity of a ledger account: one balance bucket per
// (owner kind, owner id, currency). Currency pool accounts use OwnerID 0,
// the currency alone identifies the pool.
type AccountKey struct {
	OwnerKind    OwnerKind `json:"ownerKind"`
	OwnerID      int64     `json:"ownerID"`
	CurrencyCode string    `json:"currencyCode"`
}

// PoolKey returns the account key for the house pool of a currency.
func PoolKey(currencyCode string) AccountKey {
	return AccountKey{OwnerKind: OwnerCurrencyPool, OwnerID: 0, CurrencyCode: NormalizeCurrencyCode(currencyCode)}
}

// LedgerAccount is the materialized balance for one account key. The
// balance is a cache over the journal: it always equals the sum of
// active entry deltas for the key and is rebuilt from scratch by the
// recalculation engine. Only the ledger repository mutates it.
type LedgerAccount struct {
	AccountKey
	Balance decimal.Decimal `json:"balance"`
	// Aggregate counters maintained for currency pool accounts only:
	// what the house has acquired from and disbursed to customers.
	TotalBought   decimal.Decimal `json:"totalBought"`
	TotalSold     decimal.Decimal `json:"totalSold"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// EntryStatus is the lifecycle state of a journal entry. Entries are
// immutable once written except for this state transition.
type EntryStatus string

const (
	EntryActive   EntryStatus = "ACTIVE"
	EntryReversed EntryStatus = "REVERSED"
)

// EventKind classifies what produced a journal entry.
type EventKind string

const (
	EventOrder    EventKind = "ORDER"
	EventDocument EventKind = "DOCUMENT"
	EventManual   EventKind = "MANUAL"
	// EventReversal marks the synthetic compensating entries written when
	// an event is reversed. They exist for audit only and are born in
	// state REVERSED, so they never contribute to a balance.
	EventReversal EventKind = "REVERSAL"
)

// JournalEntry is one immutable, append-only record of a balance change,
// with the balance snapshots taken under the account row lock at commit
// time. EventDate is the business date the event is attributed to and
// may differ from CreatedAt, the wall-clock insertion time; replay and
// listing order use EventDate with the entry id as tie-break.
type JournalEntry struct {
	ID            int64           `json:"id"`
	OwnerKind     OwnerKind       `json:"ownerKind"`
	OwnerID       int64           `json:"ownerID"`
	CurrencyCode  string          `json:"currencyCode"`
	Delta         decimal.Decimal `json:"delta"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	EventKind     EventKind       `json:"eventKind"`
	EventRefID    *int64          `json:"eventRefID,omitempty"` // order/document id; nil for manual entries
	EventDate     time.Time       `json:"eventDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	Status        EntryStatus     `json:"status"`
	ReversedAt    *time.Time      `json:"reversedAt,omitempty"`
	ReversedBy    string          `json:"reversedBy,omitempty"`
	Notes         string          `json:"notes"`
}

// Key returns the account key this entry belongs to.
func (e JournalEntry) Key() AccountKey {
	return AccountKey{OwnerKind: e.OwnerKind, OwnerID: e.OwnerID, CurrencyCode: e.CurrencyCode}
}

// EntryDraft is a journal entry computed by an event processor before it
// is committed. Drafts carry only the signed delta; BalanceBefore and
// BalanceAfter are filled in under the account row lock when the draft
// is applied.
type EntryDraft struct {
	OwnerKind    OwnerKind
	OwnerID      int64
	CurrencyCode string
	Delta        decimal.Decimal
	EventKind    EventKind
	EventRefID   *int64
	EventDate    time.Time
	Notes        string
	// Pool counter contributions, zero for non-pool drafts.
	BoughtDelta decimal.Decimal
	SoldDelta   decimal.Decimal
}

// Key returns the account key the draft targets.
func (d EntryDraft) Key() AccountKey {
	return AccountKey{OwnerKind: d.OwnerKind, OwnerID: d.OwnerID, CurrencyCode: d.CurrencyCode}
}
