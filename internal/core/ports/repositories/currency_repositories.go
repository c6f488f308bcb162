package repositories

import (
	"context"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// CurrencyReader defines read operations for currency display metadata.
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a single currency by its code.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all supported currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency metadata.
type CurrencyWriter interface {
	// SaveCurrency inserts or updates a currency (setup/seeding).
	SaveCurrency(ctx context.Context, currency domain.Currency) error
}

// CurrencyRepositoryFacade combines currency repository interfaces.
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
