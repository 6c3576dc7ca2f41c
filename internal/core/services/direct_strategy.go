package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsprov "github.com/mentorhub/payments-backend/internal/core/ports/providers"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/utils/accounting"
)

// directStrategyActor is the audit identity for direct-strategy ledger writes.
const directStrategyActor = "direct_payment_strategy"

// DirectStrategy settles payments immediately after capture: the full amount
// lands in platform escrow and the platform fee moves to revenue in the same
// batch. No fund hold is created.
type DirectStrategy struct {
	BaseService
	orderRepo  portsrepo.OrderRepositoryWithTx
	entryRepo  portsrepo.EntryRecorder
	accounts   accountProvisioner
	processor  portsprov.PaymentProcessor
	feePercent int64
}

// NewDirectStrategy creates the direct settlement strategy.
func NewDirectStrategy(
	orderRepo portsrepo.OrderRepositoryWithTx,
	entryRepo portsrepo.EntryRecorder,
	accountRepo portsrepo.AccountRepositoryFacade,
	processor portsprov.PaymentProcessor,
	feePercent int64,
) *DirectStrategy {
	return &DirectStrategy{
		orderRepo:  orderRepo,
		entryRepo:  entryRepo,
		accounts:   accountProvisioner{accountRepo: accountRepo},
		processor:  processor,
		feePercent: feePercent,
	}
}

var _ portssvc.PaymentStrategy = (*DirectStrategy)(nil)

// InitiatePayment persists the draft order, opens a charge intent with the
// processor and submits the order. The processor call sits outside the local
// commit on purpose: a crash after the call leaves an orphaned intent at the
// processor, which expires on its own, never a local inconsistency.
func (s *DirectStrategy) InitiatePayment(ctx context.Context, order *domain.PaymentOrder) error {
	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to save payment order: %w", err)
	}

	intent, err := s.processor.CreateChargeIntent(ctx, portsprov.ChargeIntentParams{
		OrderID:        order.PaymentOrderID,
		AmountCents:    order.AmountCents,
		CurrencyCode:   order.CurrencyCode,
		IdempotencyKey: intentIdempotencyKey(order.PaymentOrderID),
		Metadata:       order.Metadata,
	})
	if err != nil {
		s.LogError(ctx, err, "Processor rejected charge intent",
			slog.String("payment_order_id", order.PaymentOrderID))
		return err
	}

	order.ProcessorIntentID = &intent.IntentID
	if order.Metadata == nil {
		order.Metadata = map[string]string{}
	}
	order.Metadata[clientSecretMetadataKey] = intent.ClientSecret

	if err := order.Submit(); err != nil {
		return err
	}
	order.LastUpdatedAt = time.Now()

	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to update submitted order: %w", err)
	}

	s.LogInfo(ctx, "Direct payment created",
		slog.String("payment_order_id", order.PaymentOrderID),
		slog.String("payment_intent_id", intent.IntentID))
	return nil
}

// OnPaymentSucceeded drives the order PENDING through SETTLED and posts the
// payment and fee entries as one atomic batch. Repeated webhook delivery is a
// no-op thanks to the state guard and the deterministic idempotency keys.
func (s *DirectStrategy) OnPaymentSucceeded(ctx context.Context, orderID string) error {
	current, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	// Account provisioning happens before the posting transaction so the
	// row-locking order inside it stays account-only.
	external, err := s.accounts.ensurePlatform(ctx, domain.ExternalProcessor, current.CurrencyCode, directStrategyActor)
	if err != nil {
		return err
	}
	escrow, err := s.accounts.ensurePlatform(ctx, domain.PlatformEscrow, current.CurrencyCode, directStrategyActor)
	if err != nil {
		return err
	}
	revenue, err := s.accounts.ensurePlatform(ctx, domain.PlatformRevenue, current.CurrencyCode, directStrategyActor)
	if err != nil {
		return err
	}

	now := time.Now()

	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.orderRepo.Rollback(ctx, tx)
	}()

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}

	switch order.State() {
	case domain.OrderPending:
		// proceed
	case domain.OrderCaptured, domain.OrderSettled:
		s.LogInfo(ctx, "Direct payment already processed",
			slog.String("payment_order_id", orderID),
			slog.String("state", string(order.State())))
		return nil
	default:
		return fmt.Errorf("%w: cannot process payment from %s", domain.ErrInvalidTransition, order.State())
	}

	if err := order.Process(); err != nil {
		return err
	}
	if err := order.Capture(now); err != nil {
		return err
	}
	if err := order.SettleFromCaptured(now); err != nil {
		return err
	}

	fee := accounting.CalculateFeeCents(order.AmountCents, s.feePercent)

	params := []domain.RecordEntryParams{{
		DebitAccountID:  external.AccountID,
		CreditAccountID: escrow.AccountID,
		AmountCents:     order.AmountCents,
		CurrencyCode:    order.CurrencyCode,
		EntryType:       domain.PaymentReceived,
		ReferenceType:   paymentOrderReference,
		ReferenceID:     order.PaymentOrderID,
		Description:     fmt.Sprintf("Payment received for order %s", order.PaymentOrderID),
		IdempotencyKey:  fmt.Sprintf("payment:%s:received", order.PaymentOrderID),
	}}
	if fee > 0 {
		params = append(params, domain.RecordEntryParams{
			DebitAccountID:  escrow.AccountID,
			CreditAccountID: revenue.AccountID,
			AmountCents:     fee,
			CurrencyCode:    order.CurrencyCode,
			EntryType:       domain.FeeCollected,
			ReferenceType:   paymentOrderReference,
			ReferenceID:     order.PaymentOrderID,
			Description:     fmt.Sprintf("Platform fee for order %s", order.PaymentOrderID),
			IdempotencyKey:  fmt.Sprintf("payment:%s:fee", order.PaymentOrderID),
		})
	}

	if _, err := s.entryRepo.RecordEntriesInTx(ctx, tx, params, directStrategyActor, now); err != nil {
		return err
	}

	order.LastUpdatedAt = now
	order.LastUpdatedBy = systemActor
	if err := s.orderRepo.UpdateOrderInTx(ctx, tx, order); err != nil {
		return err
	}

	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit payment settlement: %w", err)
	}

	s.LogInfo(ctx, "Direct payment settled",
		slog.String("payment_order_id", orderID),
		slog.Int64("amount_cents", order.AmountCents),
		slog.Int64("platform_fee", fee))
	return nil
}

// OnPaymentFailed marks a pending order as failed with the given reason.
// Idempotent when the order already failed.
func (s *DirectStrategy) OnPaymentFailed(ctx context.Context, orderID string, reason string) error {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.orderRepo.Rollback(ctx, tx)
	}()

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}

	if order.State() == domain.OrderFailed {
		return nil
	}
	if order.State() != domain.OrderPending {
		return fmt.Errorf("%w: cannot fail payment from %s", domain.ErrInvalidTransition, order.State())
	}

	now := time.Now()
	if err := order.Process(); err != nil {
		return err
	}
	if err := order.Fail(reason, now); err != nil {
		return err
	}

	order.LastUpdatedAt = now
	order.LastUpdatedBy = systemActor
	if err := s.orderRepo.UpdateOrderInTx(ctx, tx, order); err != nil {
		return err
	}

	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit payment failure: %w", err)
	}

	s.LogWarn(ctx, "Direct payment failed",
		slog.String("payment_order_id", orderID),
		slog.String("reason", reason))
	return nil
}

// RefundPayment issues a processor refund for the order and marks it
// refunded. Ledger reversal happens on the refund-confirmation webhook path,
// not here.
func (s *DirectStrategy) RefundPayment(ctx context.Context, orderID string, amountCents *int64, reason string, userID string) (*domain.PaymentOrder, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ProcessorIntentID == nil {
		return nil, fmt.Errorf("%w: order %s has no processor intent", apperrors.ErrValidation, orderID)
	}

	var refundAmount int64
	if amountCents != nil {
		refundAmount = *amountCents
		if refundAmount <= 0 || refundAmount > order.AmountCents {
			return nil, fmt.Errorf("%w: refund amount %d out of range", apperrors.ErrValidation, refundAmount)
		}
	}

	now := time.Now()

	// Apply the transition first so an impossible refund never reaches the
	// processor.
	if amountCents == nil {
		err = order.RefundFull(now)
	} else {
		err = order.RefundPartial(now)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.processor.CreateRefund(ctx, portsprov.RefundParams{
		IntentID:       *order.ProcessorIntentID,
		AmountCents:    refundAmount,
		Reason:         reason,
		IdempotencyKey: refundIdempotencyKey(orderID, order.Version),
	}); err != nil {
		s.LogError(ctx, err, "Processor rejected refund", slog.String("payment_order_id", orderID))
		return nil, err
	}

	order.LastUpdatedAt = now
	order.LastUpdatedBy = userID
	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Refund initiated",
		slog.String("payment_order_id", orderID),
		slog.String("reason", reason))
	return order, nil
}
