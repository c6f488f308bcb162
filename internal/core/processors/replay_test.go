package processors_test

import (
	"testing"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/processors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func orderEvent(id int64, at time.Time) processors.ReplayEvent {
	return processors.ReplayEvent{
		Kind:  domain.EventOrder,
		Order: &domain.Order{ID: id, CreatedAt: at},
	}
}

func documentEvent(id int64, at time.Time) processors.ReplayEvent {
	return processors.ReplayEvent{
		Kind:     domain.EventDocument,
		Document: &domain.AccountingDocument{ID: id, DocumentDate: at},
	}
}

func manualEvent(id int64, at time.Time) processors.ReplayEvent {
	return processors.ReplayEvent{
		Kind:   domain.EventManual,
		Manual: &domain.JournalEntry{ID: id, EventDate: at},
	}
}

func TestLess_DateWinsOverKind(t *testing.T) {
	earlierManual := manualEvent(1, day)
	laterOrder := orderEvent(2, day.Add(time.Hour))

	assert.True(t, processors.Less(earlierManual, laterOrder))
	assert.False(t, processors.Less(laterOrder, earlierManual))
}

func TestLess_KindRankWithinSameDate(t *testing.T) {
	o := orderEvent(100, day)
	d := documentEvent(1, day)
	m := manualEvent(1, day)

	assert.True(t, processors.Less(o, d), "orders replay before documents")
	assert.True(t, processors.Less(d, m), "documents replay before manual entries")
	assert.True(t, processors.Less(o, m))
	assert.False(t, processors.Less(m, o))
}

func TestLess_IDBreaksFullTies(t *testing.T) {
	a := orderEvent(3, day)
	b := orderEvent(8, day)

	assert.True(t, processors.Less(a, b))
	assert.False(t, processors.Less(b, a))
	assert.False(t, processors.Less(a, a))
}

func TestMergeReplayEvents_ProducesCanonicalOrder(t *testing.T) {
	orders := []domain.Order{
		{ID: 2, CreatedAt: day.Add(2 * time.Hour)},
		{ID: 1, CreatedAt: day},
	}
	documents := []domain.AccountingDocument{
		{ID: 5, DocumentDate: day},
		{ID: 6, DocumentDate: day.Add(-time.Hour)},
	}
	manual := []domain.JournalEntry{
		{ID: 30, EventDate: day},
	}

	events := processors.MergeReplayEvents(orders, documents, manual)
	require.Len(t, events, 5)

	type step struct {
		kind domain.EventKind
		id   int64
	}
	got := make([]step, 0, len(events))
	for _, e := range events {
		switch e.Kind {
		case domain.EventOrder:
			got = append(got, step{e.Kind, e.Order.ID})
		case domain.EventDocument:
			got = append(got, step{e.Kind, e.Document.ID})
		default:
			got = append(got, step{e.Kind, e.Manual.ID})
		}
	}

	want := []step{
		{domain.EventDocument, 6}, // earliest date
		{domain.EventOrder, 1},    // same day: order first
		{domain.EventDocument, 5},
		{domain.EventManual, 30},
		{domain.EventOrder, 2}, // latest date
	}
	assert.Equal(t, want, got)
}

func TestMergeReplayEvents_Deterministic(t *testing.T) {
	orders := []domain.Order{
		{ID: 4, CreatedAt: day},
		{ID: 2, CreatedAt: day},
		{ID: 9, CreatedAt: day},
	}

	first := processors.MergeReplayEvents(orders, nil, nil)
	second := processors.MergeReplayEvents(orders, nil, nil)

	require.Len(t, first, 3)
	for i := range first {
		assert.Equal(t, first[i].Order.ID, second[i].Order.ID)
	}
	assert.Equal(t, int64(2), first[0].Order.ID)
	assert.Equal(t, int64(4), first[1].Order.ID)
	assert.Equal(t, int64(9), first[2].Order.ID)
}

func TestMergeReplayEvents_Empty(t *testing.T) {
	events := processors.MergeReplayEvents(nil, nil, nil)
	assert.Empty(t, events)
}

func TestReplayEvent_Date(t *testing.T) {
	at := day.Add(3 * time.Hour)
	assert.True(t, orderEvent(1, at).Date().Equal(at))
	assert.True(t, documentEvent(1, at).Date().Equal(at))
	assert.True(t, manualEvent(1, at).Date().Equal(at))
}
