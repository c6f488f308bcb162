package processors

import (
	"fmt"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// OrderProcessor computes the four ledger legs of a currency trade:
// the customer gives up the sold amount and receives the bought amount,
// while the house pools move in the opposite direction (the pool for the
// sold currency grows, the pool for the bought currency shrinks).
//
// The pool legs apply to every currency, including the base (home)
// currency: the base-currency pool is an ordinary pool, not a special
// case patched around.
type OrderProcessor struct {
	baseCurrency string
}

// NewOrderProcessor creates an order processor. baseCurrency is the home
// currency of the exchange (e.g. "IRR") used for inverted-rate detection.
func NewOrderProcessor(baseCurrency string) *OrderProcessor {
	return &OrderProcessor{baseCurrency: domain.NormalizeCurrencyCode(baseCurrency)}
}

// Validate checks an order without producing drafts. It is also run by
// Process; preview callers use it directly to surface operator warnings.
func (p *OrderProcessor) Validate(order domain.Order) error {
	from, err := validateCurrency(order.FromCurrency)
	if err != nil {
		return err
	}
	to, err := validateCurrency(order.ToCurrency)
	if err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: %s", ErrSameCurrency, from)
	}
	if order.FromAmount.Sign() <= 0 {
		return fmt.Errorf("%w: from amount %s", ErrNonPositiveAmount, order.FromAmount)
	}
	if order.ToAmount.Sign() <= 0 {
		return fmt.Errorf("%w: to amount %s", ErrNonPositiveAmount, order.ToAmount)
	}
	if order.Rate.Sign() <= 0 {
		return fmt.Errorf("%w: rate %s", ErrNonPositiveRate, order.Rate)
	}
	if (from == p.baseCurrency || to == p.baseCurrency) && order.Rate.LessThan(suspiciousRateFloor) {
		return fmt.Errorf("%w: rate %s on order for customer %d", ErrSuspiciousRate, order.Rate, order.CustomerID)
	}
	return nil
}

// Process returns the entry drafts for one order.
func (p *OrderProcessor) Process(order domain.Order) ([]domain.EntryDraft, error) {
	if err := p.Validate(order); err != nil {
		return nil, err
	}
	return p.Legs(order), nil
}

// Legs computes the four drafts without validating. Preview uses it to
// show the effects of an order that only tripped the suspicious-rate
// check; callers applying for real must go through Process.
func (p *OrderProcessor) Legs(order domain.Order) []domain.EntryDraft {
	from := domain.NormalizeCurrencyCode(order.FromCurrency)
	to := domain.NormalizeCurrencyCode(order.ToCurrency)
	refID := order.ID
	note := fmt.Sprintf("order #%d: %s %s -> %s %s @ %s",
		order.ID, order.FromAmount, from, order.ToAmount, to, order.Rate)

	drafts := []domain.EntryDraft{
		{
			OwnerKind:    domain.OwnerCustomer,
			OwnerID:      order.CustomerID,
			CurrencyCode: from,
			Delta:        order.FromAmount.Neg(),
			EventKind:    domain.EventOrder,
			EventRefID:   &refID,
			EventDate:    order.CreatedAt,
			Notes:        note,
		},
		{
			OwnerKind:    domain.OwnerCustomer,
			OwnerID:      order.CustomerID,
			CurrencyCode: to,
			Delta:        order.ToAmount,
			EventKind:    domain.EventOrder,
			EventRefID:   &refID,
			EventDate:    order.CreatedAt,
			Notes:        note,
		},
		{
			// The house acquires what the customer sold.
			OwnerKind:    domain.OwnerCurrencyPool,
			CurrencyCode: from,
			Delta:        order.FromAmount,
			EventKind:    domain.EventOrder,
			EventRefID:   &refID,
			EventDate:    order.CreatedAt,
			Notes:        note,
			BoughtDelta:  order.FromAmount,
		},
		{
			// The house disburses what the customer bought.
			OwnerKind:    domain.OwnerCurrencyPool,
			CurrencyCode: to,
			Delta:        order.ToAmount.Neg(),
			EventKind:    domain.EventOrder,
			EventRefID:   &refID,
			EventDate:    order.CreatedAt,
			Notes:        note,
			SoldDelta:    order.ToAmount,
		},
	}
	return drafts
}
