package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mentorhub/payments-backend/internal/core/domain"
)

// PayoutRepositoryFacade defines persistence for payouts.
type PayoutRepositoryFacade interface {
	// SavePayoutInTx persists a new payout inside the caller's transaction.
	SavePayoutInTx(ctx context.Context, tx pgx.Tx, payout domain.PayoutRecord) error

	// FindPayoutByID retrieves a payout by its identifier.
	FindPayoutByID(ctx context.Context, payoutID string) (*domain.PayoutRecord, error)

	// FindPayoutByOrderID retrieves the payout created for a payment order.
	FindPayoutByOrderID(ctx context.Context, orderID string) (*domain.PayoutRecord, error)

	// UpdatePayoutState transitions the processor-side payout state.
	UpdatePayoutState(ctx context.Context, payoutID string, state domain.PayoutState, userID string, now time.Time) error
}
