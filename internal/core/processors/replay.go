package processors

import (
	"sort"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// ReplayEvent is one element of the canonical replay sequence: exactly
// one of Order, Document or Manual is set.
type ReplayEvent struct {
	Kind     domain.EventKind
	Order    *domain.Order
	Document *domain.AccountingDocument
	// Manual is a preserved Manual journal entry re-applied at its
	// original event-date position.
	Manual *domain.JournalEntry
}

// Date returns the business date the event is replayed at.
func (e ReplayEvent) Date() time.Time {
	switch e.Kind {
	case domain.EventOrder:
		return e.Order.CreatedAt
	case domain.EventDocument:
		return e.Document.DocumentDate
	default:
		return e.Manual.EventDate
	}
}

// id returns the numeric tie-break id of the event.
func (e ReplayEvent) id() int64 {
	switch e.Kind {
	case domain.EventOrder:
		return e.Order.ID
	case domain.EventDocument:
		return e.Document.ID
	default:
		return e.Manual.ID
	}
}

// kindRank orders event kinds within one business date.
func kindRank(k domain.EventKind) int {
	switch k {
	case domain.EventOrder:
		return 0
	case domain.EventDocument:
		return 1
	default:
		return 2
	}
}

// Less is the canonical replay order: event date ascending, then event
// kind (orders before documents before manual corrections), then numeric
// id. It is deliberately a standalone function so the tie-break rule is
// testable instead of emergent behavior of sequential loops.
func Less(a, b ReplayEvent) bool {
	ad, bd := a.Date(), b.Date()
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
		return ra < rb
	}
	return a.id() < b.id()
}

// MergeReplayEvents builds the replay sequence from the typed event
// streams. Inputs need not be sorted; soft-deleted and unverified
// records must already be filtered out by the caller.
func MergeReplayEvents(orders []domain.Order, documents []domain.AccountingDocument, manual []domain.JournalEntry) []ReplayEvent {
	events := make([]ReplayEvent, 0, len(orders)+len(documents)+len(manual))
	for i := range orders {
		events = append(events, ReplayEvent{Kind: domain.EventOrder, Order: &orders[i]})
	}
	for i := range documents {
		events = append(events, ReplayEvent{Kind: domain.EventDocument, Document: &documents[i]})
	}
	for i := range manual {
		events = append(events, ReplayEvent{Kind: domain.EventManual, Manual: &manual[i]})
	}
	sort.SliceStable(events, func(i, j int) bool { return Less(events[i], events[j]) })
	return events
}
