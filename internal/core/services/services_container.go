package services

import (
	portsprov "github.com/mentorhub/payments-backend/internal/core/ports/providers"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos *portsrepo.RepositoryProvider,
	processor portsprov.PaymentProcessor,
	locker portsprov.ReleaseLocker,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(repos.AccountRepo, repos.EntryRepo)

	direct := NewDirectStrategy(
		repos.OrderRepo,
		repos.EntryRepo,
		repos.AccountRepo,
		processor,
		cfg.PlatformFeePercent,
	)

	escrow := NewEscrowStrategy(
		repos.OrderRepo,
		repos.EntryRepo,
		repos.HoldRepo,
		repos.PayoutRepo,
		repos.ConnectedAccountRepo,
		repos.AccountRepo,
		processor,
		locker,
		cfg.PlatformFeePercent,
		cfg.EscrowHoldDuration,
	)

	container.Payment = NewPaymentService(repos.OrderRepo, direct, escrow, escrow)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.LedgerSvcFacade  = (*LedgerService)(nil)
	_ portssvc.PaymentSvcFacade = (*PaymentService)(nil)
)
