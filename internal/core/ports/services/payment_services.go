package services

import (
	"context"

	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/dto"
)

// PaymentSvcFacade drives payment orders through their lifecycle.
type PaymentSvcFacade interface {
	// CreatePayment creates an order, registers the charge with the processor
	// and submits the order for confirmation.
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, payerID string) (*domain.PaymentOrder, error)

	// GetPayment retrieves a payment order.
	GetPayment(ctx context.Context, orderID string) (*domain.PaymentOrder, error)

	// CancelPayment aborts an order that has not been captured yet.
	CancelPayment(ctx context.Context, orderID string, userID string) (*domain.PaymentOrder, error)

	// RetryPayment re-queues a failed order.
	RetryPayment(ctx context.Context, orderID string, userID string) (*domain.PaymentOrder, error)

	// HandlePaymentSucceeded applies a processor success event to the order
	// owning the intent. Safe to call more than once per order.
	HandlePaymentSucceeded(ctx context.Context, intentID string) error

	// HandlePaymentFailed applies a processor failure event.
	HandlePaymentFailed(ctx context.Context, intentID string, reason string) error

	// ReleaseHold releases held escrow funds to the recipient under the
	// distributed release lock.
	ReleaseHold(ctx context.Context, orderID string, reason string) (*domain.PayoutRecord, error)

	// RefundPayment refunds the order, fully when amountCents is nil.
	RefundPayment(ctx context.Context, orderID string, amountCents *int64, reason string, userID string) (*domain.PaymentOrder, error)
}

// PaymentStrategy is the settlement flow behind a payment order. The payment
// service picks the strategy from the order's strategy type.
type PaymentStrategy interface {
	// InitiatePayment registers the draft order with the processor and
	// submits it.
	InitiatePayment(ctx context.Context, order *domain.PaymentOrder) error

	// OnPaymentSucceeded reacts to the processor confirming the charge.
	OnPaymentSucceeded(ctx context.Context, orderID string) error

	// OnPaymentFailed reacts to the processor rejecting the charge.
	OnPaymentFailed(ctx context.Context, orderID string, reason string) error

	// RefundPayment refunds the order, fully when amountCents is nil.
	RefundPayment(ctx context.Context, orderID string, amountCents *int64, reason string, userID string) (*domain.PaymentOrder, error)
}

// EscrowReleaser is implemented by strategies that park funds in escrow.
type EscrowReleaser interface {
	// ReleaseHold pays the held funds out to the recipient.
	ReleaseHold(ctx context.Context, orderID string, reason string) (*domain.PayoutRecord, error)
}
