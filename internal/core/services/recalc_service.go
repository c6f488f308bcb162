package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/processors"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/middleware"
)

const sampleBalanceLimit = 20

// recalcService is the recalculation engine: it replays the surviving
// events in canonical order against zeroed ledgers, slotting preserved
// manual entries back in at their original dates. The replay holds the
// exclusive ledger lock, so ordinary writes are paused for its duration.
type recalcService struct {
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	eventRepo    portsrepo.EventReader
	runRepo      portsrepo.RecalcRunRepositoryFacade
	orderProc    *processors.OrderProcessor
	docProc      *processors.DocumentProcessor
	baseCurrency string
}

// NewRecalcService creates the recalculation service.
func NewRecalcService(repos portsrepo.RepositoryProvider, baseCurrency string) portssvc.RecalcSvc {
	return &recalcService{
		ledgerRepo:   repos.LedgerRepo,
		eventRepo:    repos.EventRepo,
		runRepo:      repos.RecalcRunRepo,
		orderProc:    processors.NewOrderProcessor(baseCurrency),
		docProc:      processors.NewDocumentProcessor(),
		baseCurrency: domain.NormalizeCurrencyCode(baseCurrency),
	}
}

var _ portssvc.RecalcSvc = (*recalcService)(nil)

func (s *recalcService) ListRuns(ctx context.Context, limit int) ([]domain.RecalculationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.runRepo.ListRuns(ctx, limit)
}

func (s *recalcService) RecalculateAll(ctx context.Context, performedBy string) (domain.RecalculationReport, error) {
	return s.run(ctx, domain.RecalcScopeAll, performedBy, s.replayAll)
}

func (s *recalcService) RecalculatePool(ctx context.Context, currencyCode string, performedBy string) (domain.RecalculationReport, error) {
	if !domain.IsValidCurrencyCode(currencyCode) {
		return domain.RecalculationReport{}, fmt.Errorf("%w: %q", processors.ErrBadCurrencyCode, currencyCode)
	}
	code := domain.NormalizeCurrencyCode(currencyCode)
	return s.run(ctx, code, performedBy, func(ctx context.Context, session portsrepo.RecalcSession, report *domain.RecalculationReport) error {
		return s.replayPool(ctx, session, report, code, true)
	})
}

func (s *recalcService) RecalculateBasePoolFromOrders(ctx context.Context, performedBy string) (domain.RecalculationReport, error) {
	scope := s.baseCurrency + ":orders-only"
	return s.run(ctx, scope, performedBy, func(ctx context.Context, session portsrepo.RecalcSession, report *domain.RecalculationReport) error {
		return s.replayPool(ctx, session, report, s.baseCurrency, false)
	})
}

// run wraps a replay in the exclusive session and the persistent run
// record. The run row is the incomplete-marker: a RUNNING row with no
// live process means balances sit at the last fully-applied event and
// the run must be repeated.
func (s *recalcService) run(ctx context.Context, scope string, performedBy string, replay func(context.Context, portsrepo.RecalcSession, *domain.RecalculationReport) error) (domain.RecalculationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if performedBy == "" {
		performedBy = middleware.DefaultOperator
	}

	session, err := s.ledgerRepo.BeginRecalc(ctx)
	if err != nil {
		return domain.RecalculationReport{}, err
	}
	defer session.Close()

	report := domain.RecalculationReport{
		Run: domain.RecalculationRun{
			RunID:       uuid.NewString(),
			Scope:       scope,
			Status:      domain.RecalcRunning,
			StartedAt:   time.Now().UTC(),
			PerformedBy: performedBy,
		},
	}
	if err := s.runRepo.CreateRun(ctx, report.Run); err != nil {
		return domain.RecalculationReport{}, err
	}
	logger.Info("Recalculation started", slog.String("run_id", report.Run.RunID), slog.String("scope", scope))

	replayErr := replay(ctx, session, &report)

	// Finalize the run row even when the caller's context is gone.
	finishCtx := context.WithoutCancel(ctx)
	finished := time.Now().UTC()
	report.Run.FinishedAt = &finished
	switch {
	case replayErr == nil:
		report.Run.Status = domain.RecalcCompleted
	case ctx.Err() != nil:
		report.Run.Status = domain.RecalcCancelled
		report.Run.Note = fmt.Sprintf("cancelled after %d events: %v", report.Run.Processed, ctx.Err())
	default:
		report.Run.Status = domain.RecalcFailed
		report.Run.Note = replayErr.Error()
	}
	if err := s.runRepo.FinishRun(finishCtx, report.Run); err != nil {
		logger.Error("Failed to finalize recalculation run", slog.String("run_id", report.Run.RunID), slog.String("error", err.Error()))
	}

	if replayErr != nil {
		logger.Error("Recalculation did not complete",
			slog.String("run_id", report.Run.RunID), slog.String("status", string(report.Run.Status)), slog.String("error", replayErr.Error()))
		return report, replayErr
	}

	if samples, err := s.ledgerRepo.ListPoolAccounts(finishCtx); err == nil {
		if len(samples) > sampleBalanceLimit {
			samples = samples[:sampleBalanceLimit]
		}
		report.SampleBalances = samples
	}
	logger.Info("Recalculation completed",
		slog.String("run_id", report.Run.RunID),
		slog.Int("processed", report.Run.Processed), slog.Int("skipped", report.Run.Skipped))
	return report, nil
}

// replayAll rebuilds every ledger from scratch.
func (s *recalcService) replayAll(ctx context.Context, session portsrepo.RecalcSession, report *domain.RecalculationReport) error {
	orders, err := s.eventRepo.ListActiveOrders(ctx)
	if err != nil {
		return err
	}
	documents, err := s.eventRepo.ListAppliedDocuments(ctx)
	if err != nil {
		return err
	}
	manual, err := session.ListManualEntries(ctx)
	if err != nil {
		return err
	}
	skippedOrders, skippedDocs, err := s.eventRepo.CountSkippedEvents(ctx)
	if err != nil {
		return err
	}
	report.SkippedDeleted = skippedOrders + skippedDocs
	report.Run.Skipped = report.SkippedDeleted

	if err := session.ResetLedgers(ctx); err != nil {
		return err
	}

	events := processors.MergeReplayEvents(orders, documents, manual)
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.applyReplayEvent(ctx, session, event, nil); err != nil {
			return err
		}
		report.Run.Processed++
		switch event.Kind {
		case domain.EventOrder:
			report.Orders++
		case domain.EventDocument:
			report.Documents++
		default:
			report.ManualEntries++
		}
	}
	return nil
}

// replayPool rebuilds a single currency pool. Documents never touch
// pools, so the event stream is orders plus (optionally) the preserved
// manual pool entries; the orders-only variant skips the manual entries
// and reports them for operator review.
func (s *recalcService) replayPool(ctx context.Context, session portsrepo.RecalcSession, report *domain.RecalculationReport, currencyCode string, includeManual bool) error {
	orders, err := s.eventRepo.ListActiveOrdersByCurrency(ctx, currencyCode)
	if err != nil {
		return err
	}
	var manual []domain.JournalEntry
	if includeManual {
		manual, err = session.ListPoolManualEntries(ctx, currencyCode)
		if err != nil {
			return err
		}
	} else {
		skipped, err := session.ListPoolManualEntries(ctx, currencyCode)
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			report.Run.Skipped += len(skipped)
			report.Run.Note = fmt.Sprintf("%d active manual pool entries excluded from orders-only rebuild", len(skipped))
		}
	}

	if err := session.ResetPoolLedger(ctx, currencyCode); err != nil {
		return err
	}

	poolOnly := &draftFilter{ownerKind: domain.OwnerCurrencyPool, currencyCode: currencyCode}
	events := processors.MergeReplayEvents(orders, nil, manual)
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.applyReplayEvent(ctx, session, event, poolOnly); err != nil {
			return err
		}
		report.Run.Processed++
		if event.Kind == domain.EventOrder {
			report.Orders++
		} else {
			report.ManualEntries++
		}
	}
	return nil
}

// draftFilter restricts a replay to drafts of one account population.
type draftFilter struct {
	ownerKind    domain.OwnerKind
	currencyCode string
}

func (f *draftFilter) keep(d domain.EntryDraft) bool {
	return d.OwnerKind == f.ownerKind && domain.NormalizeCurrencyCode(d.CurrencyCode) == f.currencyCode
}

// applyReplayEvent re-applies one event. Historical orders whose rate
// trips the suspicious-rate check are applied anyway with a warning:
// replay reproduces recorded history, it does not re-litigate it.
func (s *recalcService) applyReplayEvent(ctx context.Context, session portsrepo.RecalcSession, event processors.ReplayEvent, filter *draftFilter) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	switch event.Kind {
	case domain.EventOrder:
		order := *event.Order
		drafts, err := s.orderProc.Process(order)
		if err != nil {
			if !processors.IsSuspiciousRate(err) {
				return fmt.Errorf("order %d failed replay validation: %w", order.ID, err)
			}
			logger.Warn("Replaying order with suspicious rate",
				slog.Int64("order_id", order.ID), slog.String("rate", order.Rate.String()))
			drafts = s.orderProc.Legs(order)
		}
		drafts = filterDrafts(drafts, filter)
		_, err = session.ApplyDrafts(ctx, drafts, order.CreatedBy, now)
		return err

	case domain.EventDocument:
		drafts, err := s.docProc.Process(*event.Document)
		if err != nil {
			return fmt.Errorf("document %d failed replay validation: %w", event.Document.ID, err)
		}
		drafts = filterDrafts(drafts, filter)
		_, err = session.ApplyDrafts(ctx, drafts, event.Document.CreatedBy, now)
		return err

	case domain.EventManual:
		return session.RestoreManualEntry(ctx, *event.Manual)
	}
	return fmt.Errorf("%w: replay event kind %s", apperrors.ErrInternal, event.Kind)
}

func filterDrafts(drafts []domain.EntryDraft, filter *draftFilter) []domain.EntryDraft {
	if filter == nil {
		return drafts
	}
	kept := drafts[:0]
	for _, d := range drafts {
		if filter.keep(d) {
			kept = append(kept, d)
		}
	}
	return kept
}
