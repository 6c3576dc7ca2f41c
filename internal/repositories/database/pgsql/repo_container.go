package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql-backed repository onto the shared
// pool so wiring in main stays short.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := NewAccountRepository(pool)
	return &portsrepo.RepositoryProvider{
		AccountRepo:          accountRepo,
		EntryRepo:            NewEntryRepository(pool, accountRepo),
		OrderRepo:            NewOrderRepository(pool),
		HoldRepo:             NewHoldRepository(pool),
		PayoutRepo:           NewPayoutRepository(pool),
		WebhookEventRepo:     NewWebhookEventRepository(pool),
		ConnectedAccountRepo: NewConnectedAccountRepository(pool),
	}
}
