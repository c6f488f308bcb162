package services

import (
	"context"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// CurrencyReaderSvc defines read operations for currency metadata.
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a currency by its code.
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all registered currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency metadata.
type CurrencyWriterSvc interface {
	// CreateCurrency registers a new currency.
	CreateCurrency(ctx context.Context, currency domain.Currency, createdBy string) (*domain.Currency, error)
}

// CurrencySvcFacade combines the currency service interfaces.
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
