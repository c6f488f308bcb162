package repositories

// RepositoryProvider bundles the concrete repositories handed to the
// service container.
type RepositoryProvider struct {
	LedgerRepo    LedgerRepositoryFacade
	EventRepo     EventReader
	RecalcRunRepo RecalcRunRepositoryFacade
	CurrencyRepo  CurrencyRepositoryFacade
}
