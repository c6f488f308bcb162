package pgsql

import (
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	ledgerRepo := newPgxLedgerRepository(dbPool)
	eventRepo := newPgxEventRepository(dbPool)
	recalcRunRepo := newPgxRecalcRunRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		LedgerRepo:    ledgerRepo,
		EventRepo:     eventRepo,
		RecalcRunRepo: recalcRunRepo,
		CurrencyRepo:  currencyRepo,
	}
}
