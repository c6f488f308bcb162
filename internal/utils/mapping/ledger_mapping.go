package mapping

import (
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/models"
)

// ToDomainLedgerAccount converts a model LedgerAccount to a domain LedgerAccount.
func ToDomainLedgerAccount(m models.LedgerAccount) domain.LedgerAccount {
	return domain.LedgerAccount{
		AccountKey: domain.AccountKey{
			OwnerKind:    domain.OwnerKind(m.OwnerKind),
			OwnerID:      m.OwnerID,
			CurrencyCode: m.CurrencyCode,
		},
		Balance:       m.Balance,
		TotalBought:   m.TotalBought,
		TotalSold:     m.TotalSold,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}

// ToDomainLedgerAccountSlice converts a slice of model accounts.
func ToDomainLedgerAccountSlice(ms []models.LedgerAccount) []domain.LedgerAccount {
	ds := make([]domain.LedgerAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerAccount(m)
	}
	return ds
}

// ToDomainJournalEntry converts a model JournalEntry to a domain
// JournalEntry. The owner kind lives in the table, not the row, so the
// caller supplies it.
func ToDomainJournalEntry(kind domain.OwnerKind, m models.JournalEntry) domain.JournalEntry {
	e := domain.JournalEntry{
		ID:            m.ID,
		OwnerKind:     kind,
		OwnerID:       m.OwnerID,
		CurrencyCode:  m.CurrencyCode,
		Delta:         m.Delta,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		EventKind:     domain.EventKind(m.EventKind),
		EventRefID:    m.EventRefID,
		EventDate:     m.EventDate,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		Status:        domain.EntryStatus(m.Status),
		ReversedAt:    m.ReversedAt,
		Notes:         m.Notes,
	}
	if m.ReversedBy != nil {
		e.ReversedBy = *m.ReversedBy
	}
	return e
}

// ToDomainJournalEntrySlice converts a slice of model journal entries.
func ToDomainJournalEntrySlice(kind domain.OwnerKind, ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(kind, m)
	}
	return ds
}

// ToDomainRecalculationRun converts a model RecalculationRun.
func ToDomainRecalculationRun(m models.RecalculationRun) domain.RecalculationRun {
	return domain.RecalculationRun{
		RunID:       m.RunID,
		Scope:       m.Scope,
		Status:      domain.RecalcStatus(m.Status),
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
		PerformedBy: m.PerformedBy,
		Processed:   m.Processed,
		Skipped:     m.Skipped,
		Note:        m.Note,
	}
}

// ToModelRecalculationRun converts a domain RecalculationRun.
func ToModelRecalculationRun(d domain.RecalculationRun) models.RecalculationRun {
	return models.RecalculationRun{
		RunID:       d.RunID,
		Scope:       d.Scope,
		Status:      string(d.Status),
		StartedAt:   d.StartedAt,
		FinishedAt:  d.FinishedAt,
		PerformedBy: d.PerformedBy,
		Processed:   d.Processed,
		Skipped:     d.Skipped,
		Note:        d.Note,
	}
}
