package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo          AccountRepositoryWithTx
	EntryRepo            EntryRepositoryWithTx
	OrderRepo            OrderRepositoryWithTx
	HoldRepo             HoldRepositoryWithTx
	PayoutRepo           PayoutRepositoryFacade
	WebhookEventRepo     WebhookEventRepository
	ConnectedAccountRepo ConnectedAccountRepository
}
