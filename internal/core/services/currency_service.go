package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/processors"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/middleware"
)

// currencyService manages currency display metadata.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new currency service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	if !domain.IsValidCurrencyCode(code) {
		return nil, fmt.Errorf("%w: %q", processors.ErrBadCurrencyCode, code)
	}
	return s.currencyRepo.FindCurrencyByCode(ctx, code)
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return s.currencyRepo.ListCurrencies(ctx)
}

func (s *currencyService) CreateCurrency(ctx context.Context, currency domain.Currency, createdBy string) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if !domain.IsValidCurrencyCode(currency.CurrencyCode) {
		return nil, fmt.Errorf("%w: %q", processors.ErrBadCurrencyCode, currency.CurrencyCode)
	}
	if currency.Precision < 0 {
		return nil, fmt.Errorf("%w: precision must be non-negative", apperrors.ErrValidation)
	}
	currency.CurrencyCode = domain.NormalizeCurrencyCode(currency.CurrencyCode)

	now := time.Now().UTC()
	currency.CreatedAt = now
	currency.CreatedBy = createdBy
	currency.LastUpdatedAt = now
	currency.LastUpdatedBy = createdBy

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		logger.Error("Failed to save currency", slog.String("currency_code", currency.CurrencyCode), slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("Currency saved", slog.String("currency_code", currency.CurrencyCode))
	return &currency, nil
}
