package processors_test

import (
	"testing"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/processors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAdjustment() domain.ManualAdjustment {
	return domain.ManualAdjustment{
		OwnerKind:    domain.OwnerCustomer,
		OwnerID:      5,
		CurrencyCode: "usd",
		Amount:       dec("-120.75"),
		Reason:       "cash count correction",
		EventDate:    time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC),
		PerformedBy:  "op2",
	}
}

func TestManualProcessor_Process_SingleDraftKeepsSign(t *testing.T) {
	p := processors.NewManualProcessor()

	drafts, err := p.Process(sampleAdjustment())
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	d := drafts[0]
	assert.Equal(t, domain.OwnerCustomer, d.OwnerKind)
	assert.Equal(t, int64(5), d.OwnerID)
	assert.Equal(t, "USD", d.CurrencyCode)
	assert.True(t, d.Delta.Equal(dec("-120.75")), "operator sign is preserved")
	assert.Equal(t, domain.EventManual, d.EventKind)
	assert.Nil(t, d.EventRefID)
	assert.Contains(t, d.Notes, "cash count correction")
	assert.Contains(t, d.Notes, "op2")
}

func TestManualProcessor_Validate(t *testing.T) {
	p := processors.NewManualProcessor()

	tests := []struct {
		name    string
		mutate  func(*domain.ManualAdjustment)
		wantErr error
	}{
		{
			name:   "valid adjustment",
			mutate: func(a *domain.ManualAdjustment) {},
		},
		{
			name:    "unknown owner kind",
			mutate:  func(a *domain.ManualAdjustment) { a.OwnerKind = "WAREHOUSE" },
			wantErr: processors.ErrBadOwnerKind,
		},
		{
			name:    "zero amount",
			mutate:  func(a *domain.ManualAdjustment) { a.Amount = decimal.Zero },
			wantErr: processors.ErrNonPositiveAmount,
		},
		{
			name:    "missing reason",
			mutate:  func(a *domain.ManualAdjustment) { a.Reason = "" },
			wantErr: processors.ErrReasonMissing,
		},
		{
			name:    "missing performer",
			mutate:  func(a *domain.ManualAdjustment) { a.PerformedBy = "" },
			wantErr: processors.ErrPerformerMissing,
		},
		{
			name:    "bad currency",
			mutate:  func(a *domain.ManualAdjustment) { a.CurrencyCode = "1X" },
			wantErr: processors.ErrBadCurrencyCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := sampleAdjustment()
			tt.mutate(&adj)
			err := p.Validate(adj)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManualProcessor_PositiveAdjustment(t *testing.T) {
	p := processors.NewManualProcessor()

	adj := sampleAdjustment()
	adj.OwnerKind = domain.OwnerCurrencyPool
	adj.OwnerID = 0
	adj.Amount = dec("5000")

	drafts, err := p.Process(adj)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].Delta.Equal(dec("5000")))
	assert.True(t, drafts[0].BoughtDelta.IsZero(), "manual pool entries never touch trade counters")
	assert.True(t, drafts[0].SoldDelta.IsZero())
}
