package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mentorhub/payments-backend/internal/core/domain"
)

// HoldRepositoryFacade defines persistence for fund holds.
type HoldRepositoryFacade interface {
	// SaveHoldInTx persists a new hold inside the caller's transaction.
	SaveHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.FundHold) error

	// FindHoldByOrderID retrieves the unreleased hold for a payment order.
	FindHoldByOrderID(ctx context.Context, orderID string) (*domain.FundHold, error)

	// FindHoldByOrderIDForUpdate retrieves the unreleased hold with a row lock.
	FindHoldByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.FundHold, error)

	// MarkHoldReleasedInTx persists the released flags with an optimistic
	// version check, mirroring UpdateOrder semantics.
	MarkHoldReleasedInTx(ctx context.Context, tx pgx.Tx, hold *domain.FundHold, userID string, now time.Time) error

	// ListExpiredHolds returns unreleased holds whose deadline passed, oldest first.
	ListExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]domain.FundHold, error)
}

// HoldRepositoryWithTx extends HoldRepositoryFacade with transaction capabilities
type HoldRepositoryWithTx interface {
	HoldRepositoryFacade
	TransactionManager
}
