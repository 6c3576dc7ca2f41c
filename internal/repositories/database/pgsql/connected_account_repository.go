package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	"github.com/mentorhub/payments-backend/internal/models"
	"github.com/mentorhub/payments-backend/internal/utils/mapping"
)

type PgxConnectedAccountRepository struct {
	BaseRepository
}

// NewConnectedAccountRepository creates a new repository for connected account data.
func NewConnectedAccountRepository(pool *pgxpool.Pool) portsrepo.ConnectedAccountRepository {
	return &PgxConnectedAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ConnectedAccountRepository = (*PgxConnectedAccountRepository)(nil)

// FindConnectedAccountByUserID retrieves the processor account for a user.
func (r *PgxConnectedAccountRepository) FindConnectedAccountByUserID(ctx context.Context, userID string) (*domain.ConnectedAccount, error) {
	query := `
		SELECT user_id, processor_account_id, payouts_enabled,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM connected_accounts
		WHERE user_id = $1;
	`
	var m models.ConnectedAccount
	err := r.Pool.QueryRow(ctx, query, userID).Scan(
		&m.UserID,
		&m.ProcessorAccountID,
		&m.PayoutsEnabled,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find connected account for user "+userID, err)
	}
	d := mapping.ToDomainConnectedAccount(m)
	return &d, nil
}

// SaveConnectedAccount inserts or updates the onboarding state for a user.
func (r *PgxConnectedAccountRepository) SaveConnectedAccount(ctx context.Context, account domain.ConnectedAccount) error {
	query := `
		INSERT INTO connected_accounts (user_id, processor_account_id, payouts_enabled,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET processor_account_id = EXCLUDED.processor_account_id,
		    payouts_enabled = EXCLUDED.payouts_enabled,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		account.UserID,
		account.ProcessorAccountID,
		account.PayoutsEnabled,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save connected account for user "+account.UserID, err)
	}
	return nil
}
