package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/dto"
)

// PaymentService fronts the payment order lifecycle and dispatches to the
// settlement strategy the order was created with.
type PaymentService struct {
	BaseService
	orderRepo portsrepo.OrderRepositoryWithTx
	direct    portssvc.PaymentStrategy
	escrow    portssvc.PaymentStrategy
	releaser  portssvc.EscrowReleaser
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(
	orderRepo portsrepo.OrderRepositoryWithTx,
	direct portssvc.PaymentStrategy,
	escrow portssvc.PaymentStrategy,
	releaser portssvc.EscrowReleaser,
) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		direct:    direct,
		escrow:    escrow,
		releaser:  releaser,
	}
}

var _ portssvc.PaymentSvcFacade = (*PaymentService)(nil)

func (s *PaymentService) strategyFor(strategyType domain.StrategyType) (portssvc.PaymentStrategy, error) {
	switch strategyType {
	case domain.StrategyDirect:
		return s.direct, nil
	case domain.StrategyEscrow:
		return s.escrow, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy type %q", apperrors.ErrValidation, strategyType)
	}
}

// CreatePayment creates an order, registers the charge with the processor and
// submits the order for confirmation.
func (s *PaymentService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, payerID string) (*domain.PaymentOrder, error) {
	strategyType := domain.StrategyType(req.Strategy)
	strategy, err := s.strategyFor(strategyType)
	if err != nil {
		return nil, err
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	now := time.Now()
	order := domain.NewPaymentOrder(
		uuid.NewString(),
		payerID,
		req.AmountCents,
		strings.ToUpper(req.CurrencyCode),
		strategyType,
		metadata,
	)
	order.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     payerID,
		LastUpdatedAt: now,
		LastUpdatedBy: payerID,
	}

	if err := strategy.InitiatePayment(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetPayment retrieves a payment order.
func (s *PaymentService) GetPayment(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	return s.orderRepo.FindOrderByID(ctx, orderID)
}

// CancelPayment aborts an order that has not been captured yet. Idempotent
// when the order is already cancelled.
func (s *PaymentService) CancelPayment(ctx context.Context, orderID string, userID string) (*domain.PaymentOrder, error) {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.orderRepo.Rollback(ctx, tx)
	}()

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if order.State() == domain.OrderCancelled {
		return order, nil
	}
	now := time.Now()
	if err := order.Cancel(now); err != nil {
		return nil, err
	}

	order.LastUpdatedAt = now
	order.LastUpdatedBy = userID
	if err := s.orderRepo.UpdateOrderInTx(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.LogInfo(ctx, "Payment cancelled", slog.String("payment_order_id", orderID))
	return order, nil
}

// RetryPayment re-queues a failed order for another confirmation attempt.
func (s *PaymentService) RetryPayment(ctx context.Context, orderID string, userID string) (*domain.PaymentOrder, error) {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.orderRepo.Rollback(ctx, tx)
	}()

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Retry(); err != nil {
		return nil, err
	}

	order.LastUpdatedAt = time.Now()
	order.LastUpdatedBy = userID
	if err := s.orderRepo.UpdateOrderInTx(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit retry: %w", err)
	}

	s.LogInfo(ctx, "Payment re-queued", slog.String("payment_order_id", orderID))
	return order, nil
}

// HandlePaymentSucceeded applies a processor success event to the order
// owning the intent. Safe to call more than once per order.
func (s *PaymentService) HandlePaymentSucceeded(ctx context.Context, intentID string) error {
	order, err := s.orderRepo.FindOrderByProcessorIntentID(ctx, intentID)
	if err != nil {
		return err
	}
	strategy, err := s.strategyFor(order.StrategyType)
	if err != nil {
		return err
	}
	return strategy.OnPaymentSucceeded(ctx, order.PaymentOrderID)
}

// HandlePaymentFailed applies a processor failure event.
func (s *PaymentService) HandlePaymentFailed(ctx context.Context, intentID string, reason string) error {
	order, err := s.orderRepo.FindOrderByProcessorIntentID(ctx, intentID)
	if err != nil {
		return err
	}
	strategy, err := s.strategyFor(order.StrategyType)
	if err != nil {
		return err
	}
	return strategy.OnPaymentFailed(ctx, order.PaymentOrderID, reason)
}

// ReleaseHold releases held escrow funds to the recipient.
func (s *PaymentService) ReleaseHold(ctx context.Context, orderID string, reason string) (*domain.PayoutRecord, error) {
	if reason == "" {
		reason = "service_completed"
	}
	return s.releaser.ReleaseHold(ctx, orderID, reason)
}

// RefundPayment refunds the order, fully when amountCents is nil.
func (s *PaymentService) RefundPayment(ctx context.Context, orderID string, amountCents *int64, reason string, userID string) (*domain.PaymentOrder, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	strategy, err := s.strategyFor(order.StrategyType)
	if err != nil {
		return nil, err
	}
	return strategy.RefundPayment(ctx, orderID, amountCents, reason, userID)
}
