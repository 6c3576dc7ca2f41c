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

const orderColumns = `payment_order_id, payer_id, amount_cents, currency_code, strategy_type,
	processor_intent_id, state, failure_reason, metadata, version, captured_at,
	held_at, released_at, settled_at, failed_at, cancelled_at, refunded_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxOrderRepository struct {
	BaseRepository
}

// NewOrderRepository creates a new repository for payment order data.
func NewOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepositoryWithTx {
	return &PgxOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OrderRepositoryWithTx = (*PgxOrderRepository)(nil)

func scanOrder(row pgx.Row) (*models.PaymentOrder, error) {
	var m models.PaymentOrder
	err := row.Scan(
		&m.PaymentOrderID,
		&m.PayerID,
		&m.AmountCents,
		&m.CurrencyCode,
		&m.StrategyType,
		&m.ProcessorIntentID,
		&m.State,
		&m.FailureReason,
		&m.Metadata,
		&m.Version,
		&m.CapturedAt,
		&m.HeldAt,
		&m.ReleasedAt,
		&m.SettledAt,
		&m.FailedAt,
		&m.CancelledAt,
		&m.RefundedAt,
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

// SaveOrder persists a new payment order.
func (r *PgxOrderRepository) SaveOrder(ctx context.Context, order *domain.PaymentOrder) error {
	m := mapping.ToModelPaymentOrder(order)
	query := `
		INSERT INTO payment_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentOrderID,
		m.PayerID,
		m.AmountCents,
		m.CurrencyCode,
		m.StrategyType,
		m.ProcessorIntentID,
		m.State,
		m.FailureReason,
		m.Metadata,
		m.Version,
		m.CapturedAt,
		m.HeldAt,
		m.ReleasedAt,
		m.SettledAt,
		m.FailedAt,
		m.CancelledAt,
		m.RefundedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert payment order "+m.PaymentOrderID, err)
	}
	return nil
}

// FindOrderByID retrieves a payment order by its identifier.
func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE payment_order_id = $1;`
	m, err := scanOrder(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment order "+orderID, err)
	}
	return mapping.ToDomainPaymentOrder(*m), nil
}

// FindOrderByProcessorIntentID resolves the order owning a processor intent.
func (r *PgxOrderRepository) FindOrderByProcessorIntentID(ctx context.Context, intentID string) (*domain.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE processor_intent_id = $1;`
	m, err := scanOrder(r.Pool.QueryRow(ctx, query, intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment order by intent "+intentID, err)
	}
	return mapping.ToDomainPaymentOrder(*m), nil
}

// FindOrderByIDForUpdate retrieves the order with a row lock held for the
// remainder of the transaction.
func (r *PgxOrderRepository) FindOrderByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE payment_order_id = $1 FOR UPDATE;`
	m, err := scanOrder(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock payment order "+orderID, err)
	}
	return mapping.ToDomainPaymentOrder(*m), nil
}

type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// updateOrder runs the optimistic-lock update against the pool or a tx.
// The version column is incremented server-side; the WHERE clause pins the
// version this process last read.
func (r *PgxOrderRepository) updateOrder(ctx context.Context, q pgxQuerier, order *domain.PaymentOrder) error {
	m := mapping.ToModelPaymentOrder(order)
	query := `
		UPDATE payment_orders
		SET state = $2,
		    processor_intent_id = $3,
		    failure_reason = $4,
		    metadata = $5,
		    captured_at = $6,
		    held_at = $7,
		    released_at = $8,
		    settled_at = $9,
		    failed_at = $10,
		    cancelled_at = $11,
		    refunded_at = $12,
		    last_updated_at = $13,
		    last_updated_by = $14,
		    version = version + 1
		WHERE payment_order_id = $1 AND version = $15
		RETURNING version;
	`
	var newVersion int64
	err := q.QueryRow(ctx, query,
		m.PaymentOrderID,
		m.State,
		m.ProcessorIntentID,
		m.FailureReason,
		m.Metadata,
		m.CapturedAt,
		m.HeldAt,
		m.ReleasedAt,
		m.SettledAt,
		m.FailedAt,
		m.CancelledAt,
		m.RefundedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows means either the order is gone or the version moved on.
			var exists bool
			checkErr := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payment_orders WHERE payment_order_id = $1);`, m.PaymentOrderID).Scan(&exists)
			if checkErr != nil {
				return apperrors.NewAppError(500, "failed to check payment order "+m.PaymentOrderID, checkErr)
			}
			if !exists {
				return apperrors.NewNotFoundError("payment order " + m.PaymentOrderID + " not found for update")
			}
			return &apperrors.StaleVersionError{Entity: "payment order", ID: m.PaymentOrderID, ExpectedVersion: m.Version}
		}
		return apperrors.NewAppError(500, "failed to update payment order "+m.PaymentOrderID, err)
	}

	order.Version = newVersion
	return nil
}

// UpdateOrder persists order changes with an optimistic version check.
func (r *PgxOrderRepository) UpdateOrder(ctx context.Context, order *domain.PaymentOrder) error {
	return r.updateOrder(ctx, r.Pool, order)
}

// UpdateOrderInTx is UpdateOrder inside the caller's transaction.
func (r *PgxOrderRepository) UpdateOrderInTx(ctx context.Context, tx pgx.Tx, order *domain.PaymentOrder) error {
	return r.updateOrder(ctx, tx, order)
}
