package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mentorhub/payments-backend/internal/core/domain"
)

// OrderReader defines read operations for payment orders
type OrderReader interface {
	// FindOrderByID retrieves a payment order by its identifier.
	FindOrderByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)

	// FindOrderByProcessorIntentID resolves the order for a processor intent.
	// Webhook handlers use this to route processor events.
	FindOrderByProcessorIntentID(ctx context.Context, intentID string) (*domain.PaymentOrder, error)
}

// OrderWriter defines write operations for payment orders
type OrderWriter interface {
	// SaveOrder persists a new payment order.
	SaveOrder(ctx context.Context, order *domain.PaymentOrder) error

	// UpdateOrder persists order changes with an optimistic version check.
	// The stored version must equal order.Version; on success the order's
	// Version field is advanced to the post-increment value. A stale version
	// yields *apperrors.StaleVersionError.
	UpdateOrder(ctx context.Context, order *domain.PaymentOrder) error
}

// OrderTransactionSupport defines order operations used inside a transaction
type OrderTransactionSupport interface {
	// FindOrderByIDForUpdate retrieves the order with a row lock held for the
	// remainder of the transaction.
	FindOrderByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.PaymentOrder, error)

	// UpdateOrderInTx is UpdateOrder inside the caller's transaction.
	UpdateOrderInTx(ctx context.Context, tx pgx.Tx, order *domain.PaymentOrder) error
}

// OrderRepositoryFacade combines all order-related repository interfaces
type OrderRepositoryFacade interface {
	OrderReader
	OrderWriter
	OrderTransactionSupport
}

// OrderRepositoryWithTx extends OrderRepositoryFacade with transaction capabilities
type OrderRepositoryWithTx interface {
	OrderRepositoryFacade
	TransactionManager
}
