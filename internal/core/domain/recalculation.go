package domain

import "time"

// RecalcStatus is the lifecycle of a recalculation run.
type RecalcStatus string

const (
	RecalcRunning   RecalcStatus = "RUNNING"
	RecalcCompleted RecalcStatus = "COMPLETED"
	RecalcCancelled RecalcStatus = "CANCELLED"
	RecalcFailed    RecalcStatus = "FAILED"
)

// RecalcScopeAll marks a run that rebuilt every ledger; otherwise the
// scope is the currency code of the single pool that was rebuilt.
const RecalcScopeAll = "ALL"

// RecalculationRun is the persisted record of one replay. A RUNNING row
// whose process is gone is the explicit "recalculation incomplete"
// marker: balances are in the last fully-applied state and the run must
// be repeated from scratch.
type RecalculationRun struct {
	RunID       string       `json:"runID"` // UUID
	Scope       string       `json:"scope"`
	Status      RecalcStatus `json:"status"`
	StartedAt   time.Time    `json:"startedAt"`
	FinishedAt  *time.Time   `json:"finishedAt,omitempty"`
	PerformedBy string       `json:"performedBy"`
	Processed   int          `json:"processed"`
	Skipped     int          `json:"skipped"`
	Note        string       `json:"note"`
}

// RecalculationReport summarizes a finished (or interrupted) replay.
type RecalculationReport struct {
	Run            RecalculationRun `json:"run"`
	Orders         int              `json:"orders"`
	Documents      int              `json:"documents"`
	ManualEntries  int              `json:"manualEntries"`
	SkippedDeleted int              `json:"skippedDeleted"`
	// Sample of rebuilt balances for operator eyeballing.
	SampleBalances []LedgerAccount `json:"sampleBalances"`
}
