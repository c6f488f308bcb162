package services

import (
	"context"
	"log/slog"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/middleware"
)

// Notifier receives after-commit signals about ledger mutations. The
// back office uses it to refresh dashboards; failures to notify never
// affect the committed transaction.
type Notifier interface {
	NotifyApplied(ctx context.Context, kind domain.EventKind, refID *int64, entries []domain.JournalEntry)
	NotifyReversed(ctx context.Context, kind domain.EventKind, refID *int64, count int)
}

// slogNotifier is the default Notifier: it writes structured log lines
// that downstream tooling tails.
type slogNotifier struct{}

// NewSlogNotifier returns the log-based notifier.
func NewSlogNotifier() Notifier {
	return &slogNotifier{}
}

func (n *slogNotifier) NotifyApplied(ctx context.Context, kind domain.EventKind, refID *int64, entries []domain.JournalEntry) {
	logger := middleware.GetLoggerFromCtx(ctx)
	args := []any{slog.String("event_kind", string(kind)), slog.Int("entries", len(entries))}
	if refID != nil {
		args = append(args, slog.Int64("event_ref_id", *refID))
	}
	logger.Info("Ledger entries applied", args...)
}

func (n *slogNotifier) NotifyReversed(ctx context.Context, kind domain.EventKind, refID *int64, count int) {
	logger := middleware.GetLoggerFromCtx(ctx)
	args := []any{slog.String("event_kind", string(kind)), slog.Int("reversed", count)}
	if refID != nil {
		args = append(args, slog.Int64("event_ref_id", *refID))
	}
	logger.Info("Ledger entries reversed", args...)
}
