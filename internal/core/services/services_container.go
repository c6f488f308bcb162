package services

import (
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	notifier := NewSlogNotifier()
	container.Ledger = NewLedgerService(repos, cfg.BaseCurrency, cfg.MaxTxRetries, notifier)
	container.Recalc = NewRecalcService(repos, cfg.BaseCurrency)
	container.Currency = NewCurrencyService(repos.CurrencyRepo)

	return container
}
