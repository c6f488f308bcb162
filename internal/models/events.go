package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a row of the orders table, read-only from the ledger core's
// point of view.
type Order struct {
	ID           int64           `db:"id"`
	CustomerID   int64           `db:"customer_id"`
	FromCurrency string          `db:"from_currency"`
	FromAmount   decimal.Decimal `db:"from_amount"`
	ToCurrency   string          `db:"to_currency"`
	ToAmount     decimal.Decimal `db:"to_amount"`
	Rate         decimal.Decimal `db:"rate"`
	CreatedAt    time.Time       `db:"created_at"`
	CreatedBy    string          `db:"created_by"`
	IsDeleted    bool            `db:"is_deleted"`
}

// AccountingDocument is a row of the accounting_documents table.
type AccountingDocument struct {
	ID                    int64           `db:"id"`
	PayerCustomerID       int64           `db:"payer_customer_id"`
	ReceiverCustomerID    int64           `db:"receiver_customer_id"`
	PayerBankAccountID    *int64          `db:"payer_bank_account_id"`
	ReceiverBankAccountID *int64          `db:"receiver_bank_account_id"`
	CurrencyCode          string          `db:"currency_code"`
	Amount                decimal.Decimal `db:"amount"`
	DocumentDate          time.Time       `db:"document_date"`
	IsVerified            bool            `db:"is_verified"`
	IsDeleted             bool            `db:"is_deleted"`
	CreatedBy             string          `db:"created_by"`
}

// Customer is the minimal projection of a customer row.
type Customer struct {
	ID          int64  `db:"id"`
	DisplayName string `db:"display_name"`
	IsDeleted   bool   `db:"is_deleted"`
}

// BankAccount is the minimal projection of a bank account row.
type BankAccount struct {
	ID           int64  `db:"id"`
	Title        string `db:"title"`
	CurrencyCode string `db:"currency_code"`
	IsDeleted    bool   `db:"is_deleted"`
}
