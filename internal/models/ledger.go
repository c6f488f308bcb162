package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerAccount is the materialized balance row for one account key.
// Pool accounts use owner_id 0 and carry the bought/sold counters.
type LedgerAccount struct {
	OwnerKind     string          `db:"owner_kind"`
	OwnerID       int64           `db:"owner_id"`
	CurrencyCode  string          `db:"currency_code"`
	Balance       decimal.Decimal `db:"balance"`
	TotalBought   decimal.Decimal `db:"total_bought"`
	TotalSold     decimal.Decimal `db:"total_sold"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
	LastUpdatedBy string          `db:"last_updated_by"`
}

// JournalEntry is one row of a per-kind journal table. The id is a
// bigserial scoped to its table.
type JournalEntry struct {
	ID            int64           `db:"id"`
	OwnerID       int64           `db:"owner_id"`
	CurrencyCode  string          `db:"currency_code"`
	Delta         decimal.Decimal `db:"delta"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	EventKind     string          `db:"event_kind"`
	EventRefID    *int64          `db:"event_ref_id"`
	EventDate     time.Time       `db:"event_date"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
	Status        string          `db:"status"`
	ReversedAt    *time.Time      `db:"reversed_at"`
	ReversedBy    *string         `db:"reversed_by"`
	Notes         string          `db:"notes"`
	// Pool counter contributions, columns of the pool journal only.
	BoughtDelta decimal.Decimal `db:"bought_delta"`
	SoldDelta   decimal.Decimal `db:"sold_delta"`
}

// RecalculationRun is one row of recalculation_runs.
type RecalculationRun struct {
	RunID       string     `db:"run_id"`
	Scope       string     `db:"scope"`
	Status      string     `db:"status"`
	StartedAt   time.Time  `db:"started_at"`
	FinishedAt  *time.Time `db:"finished_at"`
	PerformedBy string     `db:"performed_by"`
	Processed   int        `db:"processed"`
	Skipped     int        `db:"skipped"`
	Note        string     `db:"note"`
}
