// Package processors holds the pure event processors of the ledger core.
// A processor turns one financial event into the journal entry drafts it
// implies, with no I/O and no knowledge of current balances: drafts carry
// signed deltas only, and the ledger service materializes before/after
// balances under row locks when it commits them.
package processors

import (
	"errors"
	"fmt"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	ErrSameCurrency      = fmt.Errorf("%w: from and to currency must differ", apperrors.ErrValidation)
	ErrNonPositiveRate   = fmt.Errorf("%w: rate must be positive", apperrors.ErrValidation)
	ErrReasonMissing     = fmt.Errorf("%w: manual adjustment reason is required", apperrors.ErrValidation)
	ErrPerformerMissing  = fmt.Errorf("%w: manual adjustment performer is required", apperrors.ErrValidation)
	ErrBadCurrencyCode   = fmt.Errorf("%w: malformed currency code", apperrors.ErrValidation)
	ErrBadOwnerKind      = fmt.Errorf("%w: unknown ledger owner kind", apperrors.ErrValidation)

	// ErrSuspiciousRate flags a rate that implies the wrong currency
	// direction (orders of magnitude too small for a base-currency leg).
	// This is a recoverable data-entry error for the operator to fix; the
	// processor never inverts it silently.
	ErrSuspiciousRate = fmt.Errorf("%w: rate looks inverted for a base-currency leg", apperrors.ErrValidation)
)

// suspiciousRateFloor is the empirical threshold below which a rate on a
// base-currency leg is treated as entered in the wrong direction.
var suspiciousRateFloor = decimal.RequireFromString("0.001")

// IsSuspiciousRate reports whether err is the inverted-rate flag.
func IsSuspiciousRate(err error) bool {
	return errors.Is(err, ErrSuspiciousRate)
}

func validateCurrency(code string) (string, error) {
	if !domain.IsValidCurrencyCode(code) {
		return "", fmt.Errorf("%w: %q", ErrBadCurrencyCode, code)
	}
	return domain.NormalizeCurrencyCode(code), nil
}
