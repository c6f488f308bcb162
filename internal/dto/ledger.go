package dto

import (
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OrderRequest carries an order record handed over by the order-entry
// CRUD for preview or application.
type OrderRequest struct {
	ID           int64           `json:"id" binding:"required"`
	CustomerID   int64           `json:"customerID" binding:"required"`
	FromCurrency string          `json:"fromCurrency" binding:"required"`
	FromAmount   decimal.Decimal `json:"fromAmount" binding:"required"`
	ToCurrency   string          `json:"toCurrency" binding:"required"`
	ToAmount     decimal.Decimal `json:"toAmount" binding:"required"`
	Rate         decimal.Decimal `json:"rate" binding:"required"`
	CreatedAt    time.Time       `json:"createdAt" binding:"required"`
}

// ToDomain converts the request to a domain order.
func (r OrderRequest) ToDomain(createdBy string) domain.Order {
	return domain.Order{
		ID:           r.ID,
		CustomerID:   r.CustomerID,
		FromCurrency: r.FromCurrency,
		FromAmount:   r.FromAmount,
		ToCurrency:   r.ToCurrency,
		ToAmount:     r.ToAmount,
		Rate:         r.Rate,
		CreatedAt:    r.CreatedAt,
		CreatedBy:    createdBy,
	}
}

// DocumentRequest carries an accounting document record for application.
type DocumentRequest struct {
	ID                    int64           `json:"id" binding:"required"`
	PayerCustomerID       int64           `json:"payerCustomerID" binding:"required"`
	ReceiverCustomerID    int64           `json:"receiverCustomerID" binding:"required"`
	PayerBankAccountID    *int64          `json:"payerBankAccountID,omitempty"`
	ReceiverBankAccountID *int64          `json:"receiverBankAccountID,omitempty"`
	CurrencyCode          string          `json:"currencyCode" binding:"required"`
	Amount                decimal.Decimal `json:"amount" binding:"required"`
	DocumentDate          time.Time       `json:"documentDate" binding:"required"`
	IsVerified            bool            `json:"isVerified"`
}

// ToDomain converts the request to a domain document.
func (r DocumentRequest) ToDomain(createdBy string) domain.AccountingDocument {
	return domain.AccountingDocument{
		ID:                    r.ID,
		PayerCustomerID:       r.PayerCustomerID,
		ReceiverCustomerID:    r.ReceiverCustomerID,
		PayerBankAccountID:    r.PayerBankAccountID,
		ReceiverBankAccountID: r.ReceiverBankAccountID,
		CurrencyCode:          r.CurrencyCode,
		Amount:                r.Amount,
		DocumentDate:          r.DocumentDate,
		IsVerified:            r.IsVerified,
		CreatedBy:             createdBy,
	}
}

// ManualEntryRequest carries an operator correction.
type ManualEntryRequest struct {
	OwnerKind    domain.OwnerKind `json:"ownerKind" binding:"required"`
	OwnerID      int64            `json:"ownerID"`
	CurrencyCode string           `json:"currencyCode" binding:"required"`
	Amount       decimal.Decimal  `json:"amount" binding:"required"`
	Reason       string           `json:"reason" binding:"required"`
	EventDate    time.Time        `json:"eventDate" binding:"required"`
}

// ToDomain converts the request to a domain manual adjustment.
func (r ManualEntryRequest) ToDomain(performedBy string) domain.ManualAdjustment {
	return domain.ManualAdjustment{
		OwnerKind:    r.OwnerKind,
		OwnerID:      r.OwnerID,
		CurrencyCode: r.CurrencyCode,
		Amount:       r.Amount,
		Reason:       r.Reason,
		EventDate:    r.EventDate,
		PerformedBy:  performedBy,
	}
}

// AccountEffect is one account's old/new balance pair in a preview or
// apply result.
type AccountEffect struct {
	OwnerKind    domain.OwnerKind  `json:"ownerKind"`
	OwnerID      int64             `json:"ownerID"`
	CurrencyCode string            `json:"currencyCode"`
	Currency     *CurrencyResponse `json:"currency,omitempty"`
	OldBalance   decimal.Decimal   `json:"oldBalance"`
	Delta        decimal.Decimal   `json:"delta"`
	NewBalance   decimal.Decimal   `json:"newBalance"`
}

// EffectsReport is the dry-run result of an event: per-account balance
// movements plus operator warnings, with no side effects.
type EffectsReport struct {
	Effects  []AccountEffect `json:"effects"`
	Warnings []string        `json:"warnings,omitempty"`
}

// AppliedResponse reports a committed event application.
type AppliedResponse struct {
	EntryIDs []int64         `json:"entryIDs"`
	Effects  []AccountEffect `json:"effects"`
}

// ReversedResponse reports a reversal. ReversedEntryIDs is empty when
// the reference was already fully reversed (idempotent no-op).
type ReversedResponse struct {
	ReversedEntryIDs []int64 `json:"reversedEntryIDs"`
}

// BalanceResponse is one account balance.
type BalanceResponse struct {
	OwnerKind    domain.OwnerKind `json:"ownerKind"`
	OwnerID      int64            `json:"ownerID"`
	CurrencyCode string           `json:"currencyCode"`
	Balance      decimal.Decimal  `json:"balance"`
}

// PoolBalanceResponse is one currency pool with its aggregate counters.
type PoolBalanceResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	TotalBought  decimal.Decimal `json:"totalBought"`
	TotalSold    decimal.Decimal `json:"totalSold"`
}

// EntryResponse is one journal entry for history screens.
type EntryResponse struct {
	ID            int64            `json:"id"`
	OwnerKind     domain.OwnerKind `json:"ownerKind"`
	OwnerID       int64            `json:"ownerID"`
	CurrencyCode  string           `json:"currencyCode"`
	Delta         decimal.Decimal  `json:"delta"`
	BalanceBefore decimal.Decimal  `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal  `json:"balanceAfter"`
	EventKind     domain.EventKind `json:"eventKind"`
	EventRefID    *int64           `json:"eventRefID,omitempty"`
	EventDate     time.Time        `json:"eventDate"`
	CreatedAt     time.Time        `json:"createdAt"`
	CreatedBy     string           `json:"createdBy"`
	Notes         string           `json:"notes,omitempty"`
}

// ToEntryResponse converts a domain entry.
func ToEntryResponse(e domain.JournalEntry) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		OwnerKind:     e.OwnerKind,
		OwnerID:       e.OwnerID,
		CurrencyCode:  e.CurrencyCode,
		Delta:         e.Delta,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		EventKind:     e.EventKind,
		EventRefID:    e.EventRefID,
		EventDate:     e.EventDate,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		Notes:         e.Notes,
	}
}

// ListEntriesParams holds paging parameters for the entry history.
type ListEntriesParams struct {
	Limit     int
	NextToken *string
}

// ListEntriesResponse is one page of entries plus the next-page token.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// CurrencyResponse is currency display metadata.
type CurrencyResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"`
}

// ToCurrencyResponse converts a domain currency.
func ToCurrencyResponse(c domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode: c.CurrencyCode,
		Symbol:       c.Symbol,
		Name:         c.Name,
		Precision:    c.Precision,
	}
}
