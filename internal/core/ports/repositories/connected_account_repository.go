package repositories

import (
	"context"

	"github.com/mentorhub/payments-backend/internal/core/domain"
)

// ConnectedAccountRepository stores the processor onboarding state per user.
type ConnectedAccountRepository interface {
	// FindConnectedAccountByUserID retrieves the processor account for a user.
	FindConnectedAccountByUserID(ctx context.Context, userID string) (*domain.ConnectedAccount, error)

	// SaveConnectedAccount inserts or updates the onboarding state for a user.
	SaveConnectedAccount(ctx context.Context, account domain.ConnectedAccount) error
}
