package dto

import "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"

// CreateCurrencyRequest registers a new currency.
type CreateCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,min=3,max=4"`
	Symbol       string `json:"symbol" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Precision    int    `json:"precision" binding:"min=0,max=8"`
}

// ToDomain converts the request to a domain currency.
func (r CreateCurrencyRequest) ToDomain() domain.Currency {
	return domain.Currency{
		CurrencyCode: r.CurrencyCode,
		Symbol:       r.Symbol,
		Name:         r.Name,
		Precision:    r.Precision,
	}
}
