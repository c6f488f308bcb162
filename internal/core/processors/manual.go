package processors

import (
	"fmt"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// ManualProcessor turns an operator correction into a single Manual
// journal entry draft. Manual entries are only ever produced through the
// explicit manual-entry operation; replay never regenerates them.
type ManualProcessor struct{}

// NewManualProcessor creates a manual adjustment processor.
func NewManualProcessor() *ManualProcessor {
	return &ManualProcessor{}
}

// Validate checks a manual adjustment.
func (p *ManualProcessor) Validate(adj domain.ManualAdjustment) error {
	if !domain.ValidOwnerKind(adj.OwnerKind) {
		return fmt.Errorf("%w: %q", ErrBadOwnerKind, adj.OwnerKind)
	}
	if _, err := validateCurrency(adj.CurrencyCode); err != nil {
		return err
	}
	if adj.Amount.IsZero() {
		return fmt.Errorf("%w: manual adjustment amount is zero", ErrNonPositiveAmount)
	}
	if adj.Reason == "" {
		return ErrReasonMissing
	}
	if adj.PerformedBy == "" {
		return ErrPerformerMissing
	}
	return nil
}

// Process returns the single draft for a manual adjustment. The delta
// keeps the operator's sign: corrections may move a balance either way.
func (p *ManualProcessor) Process(adj domain.ManualAdjustment) ([]domain.EntryDraft, error) {
	if err := p.Validate(adj); err != nil {
		return nil, err
	}
	return []domain.EntryDraft{
		{
			OwnerKind:    adj.OwnerKind,
			OwnerID:      adj.OwnerID,
			CurrencyCode: domain.NormalizeCurrencyCode(adj.CurrencyCode),
			Delta:        adj.Amount,
			EventKind:    domain.EventManual,
			EventDate:    adj.EventDate,
			Notes:        fmt.Sprintf("manual: %s (by %s)", adj.Reason, adj.PerformedBy),
		},
	}, nil
}
