package dto

import (
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// RecalcRequest starts a recalculation run. Scope is "ALL" or a single
// currency code.
type RecalcRequest struct {
	Scope string `json:"scope" binding:"required"`
}

// RecalcRunResponse is one recalculation run record.
type RecalcRunResponse struct {
	RunID       string     `json:"runID"`
	Scope       string     `json:"scope"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	PerformedBy string     `json:"performedBy"`
	Processed   int        `json:"processed"`
	Skipped     int        `json:"skipped"`
	Note        string     `json:"note,omitempty"`
}

// RecalcReportResponse is the full outcome of a completed run.
type RecalcReportResponse struct {
	Run            RecalcRunResponse `json:"run"`
	Orders         int               `json:"orders"`
	Documents      int               `json:"documents"`
	ManualEntries  int               `json:"manualEntries"`
	SkippedDeleted int               `json:"skippedDeleted"`
	SampleBalances []BalanceResponse `json:"sampleBalances,omitempty"`
}

// ToRecalcRunResponse converts a domain run record.
func ToRecalcRunResponse(r domain.RecalculationRun) RecalcRunResponse {
	return RecalcRunResponse{
		RunID:       r.RunID,
		Scope:       r.Scope,
		Status:      string(r.Status),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		PerformedBy: r.PerformedBy,
		Processed:   r.Processed,
		Skipped:     r.Skipped,
		Note:        r.Note,
	}
}

// ToRecalcReportResponse converts a domain report.
func ToRecalcReportResponse(rep domain.RecalculationReport) RecalcReportResponse {
	out := RecalcReportResponse{
		Run:            ToRecalcRunResponse(rep.Run),
		Orders:         rep.Orders,
		Documents:      rep.Documents,
		ManualEntries:  rep.ManualEntries,
		SkippedDeleted: rep.SkippedDeleted,
	}
	for _, b := range rep.SampleBalances {
		out.SampleBalances = append(out.SampleBalances, BalanceResponse{
			OwnerKind:    b.OwnerKind,
			OwnerID:      b.OwnerID,
			CurrencyCode: b.CurrencyCode,
			Balance:      b.Balance,
		})
	}
	return out
}
