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

const holdColumns = `hold_id, payment_order_id, amount_cents, currency_code, expires_at,
	released, released_at, released_to_payout_id, metadata, version,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxHoldRepository struct {
	BaseRepository
}

// NewHoldRepository creates a new repository for fund hold data.
func NewHoldRepository(pool *pgxpool.Pool) portsrepo.HoldRepositoryWithTx {
	return &PgxHoldRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.HoldRepositoryWithTx = (*PgxHoldRepository)(nil)

func scanHold(row pgx.Row) (*models.FundHold, error) {
	var m models.FundHold
	err := row.Scan(
		&m.HoldID,
		&m.PaymentOrderID,
		&m.AmountCents,
		&m.CurrencyCode,
		&m.ExpiresAt,
		&m.Released,
		&m.ReleasedAt,
		&m.ReleasedToPayoutID,
		&m.Metadata,
		&m.Version,
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

// SaveHoldInTx persists a new hold inside the caller's transaction.
func (r *PgxHoldRepository) SaveHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.FundHold) error {
	m := mapping.ToModelFundHold(hold)
	query := `
		INSERT INTO fund_holds (` + holdColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.HoldID,
		m.PaymentOrderID,
		m.AmountCents,
		m.CurrencyCode,
		m.ExpiresAt,
		m.Released,
		m.ReleasedAt,
		m.ReleasedToPayoutID,
		m.Metadata,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert fund hold "+m.HoldID, err)
	}
	return nil
}

// FindHoldByOrderID retrieves the unreleased hold for a payment order.
func (r *PgxHoldRepository) FindHoldByOrderID(ctx context.Context, orderID string) (*domain.FundHold, error) {
	query := `SELECT ` + holdColumns + ` FROM fund_holds WHERE payment_order_id = $1 AND released = false;`
	m, err := scanHold(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find fund hold for order "+orderID, err)
	}
	d := mapping.ToDomainFundHold(*m)
	return &d, nil
}

// FindHoldByOrderIDForUpdate retrieves the unreleased hold with a row lock.
func (r *PgxHoldRepository) FindHoldByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.FundHold, error) {
	query := `SELECT ` + holdColumns + ` FROM fund_holds WHERE payment_order_id = $1 AND released = false FOR UPDATE;`
	m, err := scanHold(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock fund hold for order "+orderID, err)
	}
	d := mapping.ToDomainFundHold(*m)
	return &d, nil
}

// MarkHoldReleasedInTx persists the released flags with an optimistic version
// check. The hold's Version field advances on success.
func (r *PgxHoldRepository) MarkHoldReleasedInTx(ctx context.Context, tx pgx.Tx, hold *domain.FundHold, userID string, now time.Time) error {
	query := `
		UPDATE fund_holds
		SET released = $2,
		    released_at = $3,
		    released_to_payout_id = $4,
		    last_updated_at = $5,
		    last_updated_by = $6,
		    version = version + 1
		WHERE hold_id = $1 AND version = $7
		RETURNING version;
	`
	var newVersion int64
	err := tx.QueryRow(ctx, query,
		hold.HoldID,
		hold.Released,
		hold.ReleasedAt,
		hold.ReleasedToPayoutID,
		now,
		userID,
		hold.Version,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperrors.StaleVersionError{Entity: "fund hold", ID: hold.HoldID, ExpectedVersion: hold.Version}
		}
		return apperrors.NewAppError(500, "failed to mark fund hold "+hold.HoldID+" released", err)
	}

	hold.Version = newVersion
	return nil
}

// ListExpiredHolds returns unreleased holds past their deadline, oldest first.
func (r *PgxHoldRepository) ListExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]domain.FundHold, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + holdColumns + `
		FROM fund_holds
		WHERE released = false AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, asOf, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expired fund holds", err)
	}
	defer rows.Close()

	holds := []domain.FundHold{}
	for rows.Next() {
		m, err := scanHold(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan fund hold row", err)
		}
		holds = append(holds, mapping.ToDomainFundHold(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating fund hold rows", err)
	}
	return holds, nil
}
