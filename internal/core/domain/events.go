package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one currency trade: the customer sells FromAmount of
// FromCurrency to the house and buys ToAmount of ToCurrency. The record
// itself is owned by the surrounding order-entry CRUD; the ledger core
// only reacts to it.
type Order struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customerID"`
	FromCurrency string          `json:"fromCurrency"`
	FromAmount   decimal.Decimal `json:"fromAmount"`
	ToCurrency   string          `json:"toCurrency"`
	ToAmount     decimal.Decimal `json:"toAmount"`
	Rate         decimal.Decimal `json:"rate"`
	CreatedAt    time.Time       `json:"createdAt"` // business event date
	CreatedBy    string          `json:"createdBy"`
	IsDeleted    bool            `json:"isDeleted"`
}

// EventDate returns the business date an order is attributed to.
func (o Order) EventDate() time.Time { return o.CreatedAt }

// AccountingDocument records money flowing from payer to receiver
// through the house, optionally via named bank accounts. An unverified
// document has no ledger effect.
type AccountingDocument struct {
	ID                    int64           `json:"id"`
	PayerCustomerID       int64           `json:"payerCustomerID"`
	ReceiverCustomerID    int64           `json:"receiverCustomerID"`
	PayerBankAccountID    *int64          `json:"payerBankAccountID,omitempty"`
	ReceiverBankAccountID *int64          `json:"receiverBankAccountID,omitempty"`
	CurrencyCode          string          `json:"currencyCode"`
	Amount                decimal.Decimal `json:"amount"`
	DocumentDate          time.Time       `json:"documentDate"` // business event date
	IsVerified            bool            `json:"isVerified"`
	IsDeleted             bool            `json:"isDeleted"`
	CreatedBy             string          `json:"createdBy"`
}

// EventDate returns the business date a document is attributed to.
func (d AccountingDocument) EventDate() time.Time { return d.DocumentDate }

// ManualAdjustment is an operator-entered correction on a single
// account. Manual entries bypass the event processors and survive a
// full recalculation verbatim.
type ManualAdjustment struct {
	OwnerKind    OwnerKind       `json:"ownerKind"`
	OwnerID      int64           `json:"ownerID"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
	EventDate    time.Time       `json:"eventDate"`
	PerformedBy  string          `json:"performedBy"`
}

// CustomerRef is the minimal read model of a customer row owned by the
// surrounding CRUD, used only to validate owner ids.
type CustomerRef struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	IsDeleted   bool   `json:"isDeleted"`
}

// BankAccountRef is the minimal read model of a bank account row,
// carrying the currency needed for document validation.
type BankAccountRef struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	CurrencyCode string `json:"currencyCode"`
	IsDeleted    bool   `json:"isDeleted"`
}
