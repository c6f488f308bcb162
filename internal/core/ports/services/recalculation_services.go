package services

import (
	"context"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
)

// RecalcSvc defines the recalculation engine operations. Runs are
// exclusive: while one is in flight, ordinary ledger writes are rejected
// and a second run cannot start.
type RecalcSvc interface {
	// RecalculateAll rebuilds every ledger from the surviving events,
	// preserving manual entries in their chronological slots.
	RecalculateAll(ctx context.Context, performedBy string) (domain.RecalculationReport, error)

	// RecalculatePool rebuilds a single currency pool from the orders and
	// manual pool entries that touch that currency.
	RecalculatePool(ctx context.Context, currencyCode string, performedBy string) (domain.RecalculationReport, error)

	// RecalculateBasePoolFromOrders rebuilds the base-currency pool from
	// order flow alone, the narrow repair for drifted home-currency
	// counters.
	RecalculateBasePoolFromOrders(ctx context.Context, performedBy string) (domain.RecalculationReport, error)

	// ListRuns returns the most recent run records, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.RecalculationRun, error)
}
