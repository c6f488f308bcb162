package processors

import (
	"fmt"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// DocumentProcessor turns a verified accounting document into ledger
// legs. Convention: a document records money flowing from payer to
// receiver through the house, so the payer's balance grows by the amount
// and the receiver's shrinks. A bank account named on either side
// receives the same delta as its side of the document.
//
// An unverified document has no ledger effect and processes to zero
// drafts; verification is the trigger, and un-verifying an applied
// document requires an explicit reversal (never a silent gap).
type DocumentProcessor struct{}

// NewDocumentProcessor creates a document processor.
func NewDocumentProcessor() *DocumentProcessor {
	return &DocumentProcessor{}
}

// Validate checks document fields. Bank-account currency matching is the
// ledger service's job (it needs the bank account read model); the
// processor checks only what the event itself carries.
func (p *DocumentProcessor) Validate(doc domain.AccountingDocument) error {
	if _, err := validateCurrency(doc.CurrencyCode); err != nil {
		return err
	}
	if doc.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: document amount %s", ErrNonPositiveAmount, doc.Amount)
	}
	return nil
}

// Process returns the entry drafts for one document. A document that is
// not verified yields no drafts and no error.
func (p *DocumentProcessor) Process(doc domain.AccountingDocument) ([]domain.EntryDraft, error) {
	if err := p.Validate(doc); err != nil {
		return nil, err
	}
	if !doc.IsVerified {
		return nil, nil
	}

	currency := domain.NormalizeCurrencyCode(doc.CurrencyCode)
	refID := doc.ID
	note := fmt.Sprintf("document #%d: %s %s from customer %d to customer %d",
		doc.ID, doc.Amount, currency, doc.PayerCustomerID, doc.ReceiverCustomerID)

	drafts := []domain.EntryDraft{
		{
			OwnerKind:    domain.OwnerCustomer,
			OwnerID:      doc.PayerCustomerID,
			CurrencyCode: currency,
			Delta:        doc.Amount,
			EventKind:    domain.EventDocument,
			EventRefID:   &refID,
			EventDate:    doc.DocumentDate,
			Notes:        note,
		},
		{
			OwnerKind:    domain.OwnerCustomer,
			OwnerID:      doc.ReceiverCustomerID,
			CurrencyCode: currency,
			Delta:        doc.Amount.Neg(),
			EventKind:    domain.EventDocument,
			EventRefID:   &refID,
			EventDate:    doc.DocumentDate,
			Notes:        note,
		},
	}

	if doc.PayerBankAccountID != nil {
		drafts = append(drafts, domain.EntryDraft{
			OwnerKind:    domain.OwnerBankAccount,
			OwnerID:      *doc.PayerBankAccountID,
			CurrencyCode: currency,
			Delta:        doc.Amount,
			EventKind:    domain.EventDocument,
			EventRefID:   &refID,
			EventDate:    doc.DocumentDate,
			Notes:        note,
		})
	}
	if doc.ReceiverBankAccountID != nil {
		drafts = append(drafts, domain.EntryDraft{
			OwnerKind:    domain.OwnerBankAccount,
			OwnerID:      *doc.ReceiverBankAccountID,
			CurrencyCode: currency,
			Delta:        doc.Amount.Neg(),
			EventKind:    domain.EventDocument,
			EventRefID:   &refID,
			EventDate:    doc.DocumentDate,
			Notes:        note,
		})
	}
	return drafts, nil
}
