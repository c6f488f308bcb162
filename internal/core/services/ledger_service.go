package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/processors"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/dto"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/middleware"
	"github.com/shopspring/decimal"
)

var (
	ErrCustomerDeleted    = fmt.Errorf("%w: customer is deleted", apperrors.ErrValidation)
	ErrBankAccountDeleted = fmt.Errorf("%w: bank account is deleted", apperrors.ErrValidation)
	ErrBankCurrency       = fmt.Errorf("%w: bank account currency does not match document currency", apperrors.ErrValidation)
	ErrNotManualEntry     = fmt.Errorf("%w: only manual entries can be deleted directly", apperrors.ErrValidation)
)

const (
	defaultEntryPageSize = 50
	maxEntryPageSize     = 200
)

// ledgerService applies financial events to the three ledgers through
// the pure processors and the transactional repository.
type ledgerService struct {
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	eventRepo    portsrepo.EventReader
	currencyRepo portsrepo.CurrencyRepositoryFacade
	orderProc    *processors.OrderProcessor
	docProc      *processors.DocumentProcessor
	manualProc   *processors.ManualProcessor
	notifier     Notifier
	maxRetries   int
}

// NewLedgerService creates the ledger service. maxRetries bounds the
// automatic retries on transient storage conflicts.
func NewLedgerService(repos portsrepo.RepositoryProvider, baseCurrency string, maxRetries int, notifier Notifier) portssvc.LedgerSvcFacade {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ledgerService{
		ledgerRepo:   repos.LedgerRepo,
		eventRepo:    repos.EventRepo,
		currencyRepo: repos.CurrencyRepo,
		orderProc:    processors.NewOrderProcessor(baseCurrency),
		docProc:      processors.NewDocumentProcessor(),
		manualProc:   processors.NewManualProcessor(),
		notifier:     notifier,
		maxRetries:   maxRetries,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// withRetry reruns fn on transient storage conflicts (deadlock,
// serialization failure) up to the configured bound. Every other error
// is returned as-is.
func (s *ledgerService) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, apperrors.ErrTransient) || attempt >= s.maxRetries {
			return err
		}
		middleware.GetLoggerFromCtx(ctx).Warn("Retrying after transient storage conflict",
			slog.String("operation", op), slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
	}
}

// --- reads ---

func (s *ledgerService) GetBalance(ctx context.Context, key domain.AccountKey) (decimal.Decimal, error) {
	acc, err := s.ledgerRepo.FindAccount(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// An untouched account reads as zero.
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

func (s *ledgerService) GetAllPoolBalances(ctx context.Context) ([]domain.LedgerAccount, error) {
	return s.ledgerRepo.ListPoolAccounts(ctx)
}

func (s *ledgerService) ListEntries(ctx context.Context, key domain.AccountKey, params dto.ListEntriesParams) (dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultEntryPageSize
	}
	if limit > maxEntryPageSize {
		limit = maxEntryPageSize
	}
	entries, token, err := s.ledgerRepo.ListActiveEntries(ctx, key, limit, params.NextToken)
	if err != nil {
		return dto.ListEntriesResponse{}, err
	}
	resp := dto.ListEntriesResponse{NextToken: token}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.ToEntryResponse(e))
	}
	return resp, nil
}

// --- event application ---

func (s *ledgerService) PreviewOrderEffects(ctx context.Context, order domain.Order) (dto.EffectsReport, error) {
	if err := s.validateOrderRefs(ctx, order); err != nil {
		return dto.EffectsReport{}, err
	}

	var warnings []string
	if err := s.orderProc.Validate(order); err != nil {
		if !processors.IsSuspiciousRate(err) {
			return dto.EffectsReport{}, err
		}
		// The preview still shows the effects so the operator can judge
		// whether the rate direction is really wrong.
		warnings = append(warnings, err.Error())
	}

	effects, err := s.previewDrafts(ctx, s.orderProc.Legs(order))
	if err != nil {
		return dto.EffectsReport{}, err
	}
	return dto.EffectsReport{Effects: effects, Warnings: warnings}, nil
}

func (s *ledgerService) ProcessOrderCreation(ctx context.Context, order domain.Order, createdBy string) (dto.AppliedResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.validateOrderRefs(ctx, order); err != nil {
		return dto.AppliedResponse{}, err
	}
	drafts, err := s.orderProc.Process(order)
	if err != nil {
		logger.Warn("Order rejected by processor", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return dto.AppliedResponse{}, err
	}

	var entries []domain.JournalEntry
	err = s.withRetry(ctx, "apply_order", func() error {
		var applyErr error
		entries, applyErr = s.ledgerRepo.ApplyDrafts(ctx, drafts, createdBy, time.Now().UTC())
		return applyErr
	})
	if err != nil {
		logger.Error("Failed to apply order to ledgers", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return dto.AppliedResponse{}, err
	}

	logger.Info("Order applied to ledgers", slog.Int64("order_id", order.ID), slog.Int("entries", len(entries)))
	refID := order.ID
	s.notifier.NotifyApplied(ctx, domain.EventOrder, &refID, entries)
	return appliedResponse(entries), nil
}

func (s *ledgerService) ProcessAccountingDocument(ctx context.Context, doc domain.AccountingDocument, createdBy string) (dto.AppliedResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.validateDocumentRefs(ctx, doc); err != nil {
		return dto.AppliedResponse{}, err
	}
	drafts, err := s.docProc.Process(doc)
	if err != nil {
		logger.Warn("Document rejected by processor", slog.Int64("document_id", doc.ID), slog.String("error", err.Error()))
		return dto.AppliedResponse{}, err
	}
	if len(drafts) == 0 {
		// Unverified documents have no ledger effect.
		logger.Info("Document is not verified, nothing applied", slog.Int64("document_id", doc.ID))
		return dto.AppliedResponse{}, nil
	}

	var entries []domain.JournalEntry
	err = s.withRetry(ctx, "apply_document", func() error {
		var applyErr error
		entries, applyErr = s.ledgerRepo.ApplyDrafts(ctx, drafts, createdBy, time.Now().UTC())
		return applyErr
	})
	if err != nil {
		logger.Error("Failed to apply document to ledgers", slog.Int64("document_id", doc.ID), slog.String("error", err.Error()))
		return dto.AppliedResponse{}, err
	}

	logger.Info("Document applied to ledgers", slog.Int64("document_id", doc.ID), slog.Int("entries", len(entries)))
	refID := doc.ID
	s.notifier.NotifyApplied(ctx, domain.EventDocument, &refID, entries)
	return appliedResponse(entries), nil
}

func (s *ledgerService) CreateManualEntry(ctx context.Context, adj domain.ManualAdjustment) (dto.AppliedResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	drafts, err := s.manualProc.Process(adj)
	if err != nil {
		return dto.AppliedResponse{}, err
	}

	var entries []domain.JournalEntry
	err = s.withRetry(ctx, "apply_manual", func() error {
		var applyErr error
		entries, applyErr = s.ledgerRepo.ApplyDrafts(ctx, drafts, adj.PerformedBy, time.Now().UTC())
		return applyErr
	})
	if err != nil {
		logger.Error("Failed to apply manual entry", slog.String("error", err.Error()))
		return dto.AppliedResponse{}, err
	}

	logger.Info("Manual entry applied",
		slog.String("owner_kind", string(adj.OwnerKind)), slog.Int64("owner_id", adj.OwnerID),
		slog.String("currency", adj.CurrencyCode), slog.String("performed_by", adj.PerformedBy))
	s.notifier.NotifyApplied(ctx, domain.EventManual, nil, entries)
	return appliedResponse(entries), nil
}

// --- reversals ---

func (s *ledgerService) DeleteOrder(ctx context.Context, orderID int64, reversedBy string) (dto.ReversedResponse, error) {
	return s.reverseByRef(ctx, domain.EventOrder, orderID, reversedBy)
}

func (s *ledgerService) ReverseDocumentVerification(ctx context.Context, documentID int64, reversedBy string) (dto.ReversedResponse, error) {
	return s.reverseByRef(ctx, domain.EventDocument, documentID, reversedBy)
}

func (s *ledgerService) reverseByRef(ctx context.Context, kind domain.EventKind, refID int64, reversedBy string) (dto.ReversedResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var reversed []domain.JournalEntry
	err := s.withRetry(ctx, "reverse_"+string(kind), func() error {
		var revErr error
		reversed, revErr = s.ledgerRepo.ReverseByEventRef(ctx, kind, refID, reversedBy, time.Now().UTC())
		return revErr
	})
	if err != nil {
		logger.Error("Failed to reverse ledger entries",
			slog.String("event_kind", string(kind)), slog.Int64("event_ref_id", refID), slog.String("error", err.Error()))
		return dto.ReversedResponse{}, err
	}

	resp := dto.ReversedResponse{}
	for _, e := range reversed {
		resp.ReversedEntryIDs = append(resp.ReversedEntryIDs, e.ID)
	}
	logger.Info("Ledger entries reversed",
		slog.String("event_kind", string(kind)), slog.Int64("event_ref_id", refID), slog.Int("count", len(reversed)))
	s.notifier.NotifyReversed(ctx, kind, &refID, len(reversed))
	return resp, nil
}

func (s *ledgerService) DeleteManualEntry(ctx context.Context, kind domain.OwnerKind, entryID int64, reversedBy string) (dto.ReversedResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.ledgerRepo.FindEntryByID(ctx, kind, entryID)
	if err != nil {
		return dto.ReversedResponse{}, err
	}
	if entry.EventKind != domain.EventManual {
		return dto.ReversedResponse{}, fmt.Errorf("%w: entry %d is %s", ErrNotManualEntry, entryID, entry.EventKind)
	}

	var done bool
	err = s.withRetry(ctx, "reverse_manual_entry", func() error {
		var revErr error
		done, revErr = s.ledgerRepo.ReverseEntryByID(ctx, kind, entryID, reversedBy, time.Now().UTC())
		return revErr
	})
	if err != nil {
		logger.Error("Failed to reverse manual entry", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		return dto.ReversedResponse{}, err
	}

	resp := dto.ReversedResponse{}
	if done {
		resp.ReversedEntryIDs = []int64{entryID}
		s.notifier.NotifyReversed(ctx, domain.EventManual, nil, 1)
	}
	logger.Info("Manual entry reversal finished", slog.Int64("entry_id", entryID), slog.Bool("reversed", done))
	return resp, nil
}

// --- helpers ---

func (s *ledgerService) validateOrderRefs(ctx context.Context, order domain.Order) error {
	customer, err := s.eventRepo.FindCustomerByID(ctx, order.CustomerID)
	if err != nil {
		return err
	}
	if customer.IsDeleted {
		return fmt.Errorf("%w: customer %d", ErrCustomerDeleted, order.CustomerID)
	}
	return nil
}

func (s *ledgerService) validateDocumentRefs(ctx context.Context, doc domain.AccountingDocument) error {
	for _, customerID := range []int64{doc.PayerCustomerID, doc.ReceiverCustomerID} {
		customer, err := s.eventRepo.FindCustomerByID(ctx, customerID)
		if err != nil {
			return err
		}
		if customer.IsDeleted {
			return fmt.Errorf("%w: customer %d", ErrCustomerDeleted, customerID)
		}
	}
	currency := domain.NormalizeCurrencyCode(doc.CurrencyCode)
	for _, bankAccountID := range []*int64{doc.PayerBankAccountID, doc.ReceiverBankAccountID} {
		if bankAccountID == nil {
			continue
		}
		bank, err := s.eventRepo.FindBankAccountByID(ctx, *bankAccountID)
		if err != nil {
			return err
		}
		if bank.IsDeleted {
			return fmt.Errorf("%w: bank account %d", ErrBankAccountDeleted, *bankAccountID)
		}
		if domain.NormalizeCurrencyCode(bank.CurrencyCode) != currency {
			return fmt.Errorf("%w: bank account %d holds %s, document is %s", ErrBankCurrency, *bankAccountID, bank.CurrencyCode, currency)
		}
	}
	return nil
}

// previewDrafts computes per-account effects for drafts without writing
// anything. Balances are read without locks; the preview is a best
// effort snapshot, the apply recomputes under locks.
func (s *ledgerService) previewDrafts(ctx context.Context, drafts []domain.EntryDraft) ([]dto.AccountEffect, error) {
	type acc struct {
		old   decimal.Decimal
		delta decimal.Decimal
	}
	order := make([]domain.AccountKey, 0, len(drafts))
	byKey := make(map[domain.AccountKey]*acc, len(drafts))

	for _, d := range drafts {
		k := d.Key()
		a, ok := byKey[k]
		if !ok {
			bal, err := s.GetBalance(ctx, k)
			if err != nil {
				return nil, err
			}
			a = &acc{old: bal}
			byKey[k] = a
			order = append(order, k)
		}
		a.delta = a.delta.Add(d.Delta)
	}

	effects := make([]dto.AccountEffect, 0, len(order))
	for _, k := range order {
		a := byKey[k]
		effect := dto.AccountEffect{
			OwnerKind:    k.OwnerKind,
			OwnerID:      k.OwnerID,
			CurrencyCode: k.CurrencyCode,
			OldBalance:   a.old,
			Delta:        a.delta,
			NewBalance:   a.old.Add(a.delta),
		}
		if currency, err := s.currencyRepo.FindCurrencyByCode(ctx, k.CurrencyCode); err == nil {
			c := dto.ToCurrencyResponse(*currency)
			effect.Currency = &c
		}
		effects = append(effects, effect)
	}
	return effects, nil
}

// appliedResponse folds committed entries into the apply result:
// entry ids in write order plus per-account before/after movements.
func appliedResponse(entries []domain.JournalEntry) dto.AppliedResponse {
	resp := dto.AppliedResponse{}
	type span struct {
		first, last int
	}
	order := make([]domain.AccountKey, 0, len(entries))
	spans := make(map[domain.AccountKey]*span, len(entries))

	for i, e := range entries {
		resp.EntryIDs = append(resp.EntryIDs, e.ID)
		k := e.Key()
		if sp, ok := spans[k]; ok {
			sp.last = i
		} else {
			spans[k] = &span{first: i, last: i}
			order = append(order, k)
		}
	}
	for _, k := range order {
		sp := spans[k]
		before := entries[sp.first].BalanceBefore
		after := entries[sp.last].BalanceAfter
		resp.Effects = append(resp.Effects, dto.AccountEffect{
			OwnerKind:    k.OwnerKind,
			OwnerID:      k.OwnerID,
			CurrencyCode: k.CurrencyCode,
			OldBalance:   before,
			Delta:        after.Sub(before),
			NewBalance:   after,
		})
	}
	return resp
}
