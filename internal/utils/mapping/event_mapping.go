package mapping

import (
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/models"
)

// ToDomainOrder converts a model Order to a domain Order.
func ToDomainOrder(m models.Order) domain.Order {
	return domain.Order{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		FromCurrency: m.FromCurrency,
		FromAmount:   m.FromAmount,
		ToCurrency:   m.ToCurrency,
		ToAmount:     m.ToAmount,
		Rate:         m.Rate,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
		IsDeleted:    m.IsDeleted,
	}
}

// ToDomainOrderSlice converts a slice of model Orders.
func ToDomainOrderSlice(ms []models.Order) []domain.Order {
	ds := make([]domain.Order, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOrder(m)
	}
	return ds
}

// ToDomainAccountingDocument converts a model AccountingDocument.
func ToDomainAccountingDocument(m models.AccountingDocument) domain.AccountingDocument {
	return domain.AccountingDocument{
		ID:                    m.ID,
		PayerCustomerID:       m.PayerCustomerID,
		ReceiverCustomerID:    m.ReceiverCustomerID,
		PayerBankAccountID:    m.PayerBankAccountID,
		ReceiverBankAccountID: m.ReceiverBankAccountID,
		CurrencyCode:          m.CurrencyCode,
		Amount:                m.Amount,
		DocumentDate:          m.DocumentDate,
		IsVerified:            m.IsVerified,
		IsDeleted:             m.IsDeleted,
		CreatedBy:             m.CreatedBy,
	}
}

// ToDomainAccountingDocumentSlice converts a slice of model documents.
func ToDomainAccountingDocumentSlice(ms []models.AccountingDocument) []domain.AccountingDocument {
	ds := make([]domain.AccountingDocument, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccountingDocument(m)
	}
	return ds
}

// ToDomainCustomerRef converts a model Customer.
func ToDomainCustomerRef(m models.Customer) domain.CustomerRef {
	return domain.CustomerRef{ID: m.ID, DisplayName: m.DisplayName, IsDeleted: m.IsDeleted}
}

// ToDomainBankAccountRef converts a model BankAccount.
func ToDomainBankAccountRef(m models.BankAccount) domain.BankAccountRef {
	return domain.BankAccountRef{ID: m.ID, Title: m.Title, CurrencyCode: m.CurrencyCode, IsDeleted: m.IsDeleted}
}
