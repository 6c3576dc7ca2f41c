package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	"github.com/mentorhub/payments-backend/internal/models"
	"github.com/mentorhub/payments-backend/internal/utils/mapping"
)

const payoutColumns = `payout_id, payment_order_id, connected_account_id, amount_cents, currency_code,
	state, metadata, created_at, created_by, last_updated_at, last_updated_by`

type PgxPayoutRepository struct {
	BaseRepository
}

// NewPayoutRepository creates a new repository for payout data.
func NewPayoutRepository(pool *pgxpool.Pool) portsrepo.PayoutRepositoryFacade {
	return &PgxPayoutRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PayoutRepositoryFacade = (*PgxPayoutRepository)(nil)

func scanPayout(row pgx.Row) (*models.Payout, error) {
	var m models.Payout
	err := row.Scan(
		&m.PayoutID,
		&m.PaymentOrderID,
		&m.ConnectedAccountID,
		&m.AmountCents,
		&m.CurrencyCode,
		&m.State,
		&m.Metadata,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SavePayoutInTx persists a new payout inside the caller's transaction.
func (r *PgxPayoutRepository) SavePayoutInTx(ctx context.Context, tx pgx.Tx, payout domain.PayoutRecord) error {
	m := mapping.ToModelPayout(payout)
	query := `
		INSERT INTO payouts (` + payoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.PayoutID,
		m.PaymentOrderID,
		m.ConnectedAccountID,
		m.AmountCents,
		m.CurrencyCode,
		m.State,
		m.Metadata,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert payout "+m.PayoutID, err)
	}
	return nil
}

// FindPayoutByID retrieves a payout by its identifier.
func (r *PgxPayoutRepository) FindPayoutByID(ctx context.Context, payoutID string) (*domain.PayoutRecord, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE payout_id = $1;`
	m, err := scanPayout(r.Pool.QueryRow(ctx, query, payoutID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payout "+payoutID, err)
	}
	d := mapping.ToDomainPayout(*m)
	return &d, nil
}

// FindPayoutByOrderID retrieves the payout created for a payment order.
func (r *PgxPayoutRepository) FindPayoutByOrderID(ctx context.Context, orderID string) (*domain.PayoutRecord, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE payment_order_id = $1;`
	m, err := scanPayout(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payout for order "+orderID, err)
	}
	d := mapping.ToDomainPayout(*m)
	return &d, nil
}

// UpdatePayoutState transitions the processor-side payout state.
func (r *PgxPayoutRepository) UpdatePayoutState(ctx context.Context, payoutID string, state domain.PayoutState, userID string, now time.Time) error {
	query := `
		UPDATE payouts
		SET state = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE payout_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, payoutID, string(state), now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update payout "+payoutID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("payout " + payoutID + " not found for update")
	}
	return nil
}
