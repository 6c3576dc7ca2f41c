package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsprov "github.com/mentorhub/payments-backend/internal/core/ports/providers"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/utils/accounting"
)

// escrowStrategyActor is the audit identity for escrow-strategy ledger writes.
const escrowStrategyActor = "escrow_payment_strategy"

// releaseLockPrefix keys the distributed lock serializing hold releases.
const releaseLockPrefix = "release:"

// EscrowStrategy parks captured funds in platform escrow under a fund hold.
// The platform fee is deliberately not collected at capture time, so a full
// refund while held never has to reverse a fee entry. Fee collection and the
// recipient payout happen together at release.
type EscrowStrategy struct {
	BaseService
	orderRepo     portsrepo.OrderRepositoryWithTx
	entryRepo     portsrepo.EntryRecorder
	holdRepo      portsrepo.HoldRepositoryFacade
	payoutRepo    portsrepo.PayoutRepositoryFacade
	connectedRepo portsrepo.ConnectedAccountRepository
	accounts      accountProvisioner
	processor     portsprov.PaymentProcessor
	locker        portsprov.ReleaseLocker
	feePercent    int64
	holdDuration  time.Duration
}

// NewEscrowStrategy creates the hold-then-release strategy.
func NewEscrowStrategy(
	orderRepo portsrepo.OrderRepositoryWithTx,
	entryRepo portsrepo.EntryRecorder,
	holdRepo portsrepo.HoldRepositoryFacade,
	payoutRepo portsrepo.PayoutRepositoryFacade,
	connectedRepo portsrepo.ConnectedAccountRepository,
	accountRepo portsrepo.AccountRepositoryFacade,
	processor portsprov.PaymentProcessor,
	locker portsprov.ReleaseLocker,
	feePercent int64,
	holdDuration time.Duration,
) *EscrowStrategy {
	return &EscrowStrategy{
		orderRepo:     orderRepo,
		entryRepo:     entryRepo,
		holdRepo:      holdRepo,
		payoutRepo:    payoutRepo,
		connectedRepo: connectedRepo,
		accounts:      accountProvisioner{accountRepo: accountRepo},
		processor:     processor,
		locker:        locker,
		feePercent:    feePercent,
		holdDuration:  holdDuration,
	}
}

var _ portssvc.PaymentStrategy = (*EscrowStrategy)(nil)
var _ portssvc.EscrowReleaser = (*EscrowStrategy)(nil)

// InitiatePayment mirrors the direct flow but requires a recipient in the
// order metadata, since held funds must eventually be released to someone.
func (s *EscrowStrategy) InitiatePayment(ctx context.Context, order *domain.PaymentOrder) error {
	if order.Metadata[recipientMetadataKey] == "" {
		return fmt.Errorf("%w: escrow payments require %q in metadata", apperrors.ErrValidation, recipientMetadataKey)
	}

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
	order.Metadata[clientSecretMetadataKey] = intent.ClientSecret

	if err := order.Submit(); err != nil {
		return err
	}
	order.LastUpdatedAt = time.Now()

	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to update submitted order: %w", err)
	}

	s.LogInfo(ctx, "Escrow payment created",
		slog.String("payment_order_id", order.PaymentOrderID),
		slog.String("payment_intent_id", intent.IntentID))
	return nil
}

// OnPaymentSucceeded drives the order PENDING through HELD, creates the fund
// hold with its auto-release deadline and posts the single capture entry.
// No fee is taken yet.
func (s *EscrowStrategy) OnPaymentSucceeded(ctx context.Context, orderID string) error {
	current, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	external, err := s.accounts.ensurePlatform(ctx, domain.ExternalProcessor, current.CurrencyCode, escrowStrategyActor)
	if err != nil {
		return err
	}
	escrow, err := s.accounts.ensurePlatform(ctx, domain.PlatformEscrow, current.CurrencyCode, escrowStrategyActor)
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
	case domain.OrderHeld, domain.OrderReleased, domain.OrderSettled:
		s.LogInfo(ctx, "Escrow payment already processed",
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
	if err := order.Hold(now); err != nil {
		return err
	}

	hold := domain.FundHold{
		HoldID:         uuid.NewString(),
		PaymentOrderID: order.PaymentOrderID,
		AmountCents:    order.AmountCents,
		CurrencyCode:   order.CurrencyCode,
		ExpiresAt:      now.Add(s.holdDuration),
		Metadata: map[string]string{
			"release_condition_type": "service_completed_or_expired",
		},
		Version: 1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     systemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: systemActor,
		},
	}
	if err := s.holdRepo.SaveHoldInTx(ctx, tx, hold); err != nil {
		return err
	}

	params := []domain.RecordEntryParams{{
		DebitAccountID:  external.AccountID,
		CreditAccountID: escrow.AccountID,
		AmountCents:     order.AmountCents,
		CurrencyCode:    order.CurrencyCode,
		EntryType:       domain.PaymentReceived,
		ReferenceType:   paymentOrderReference,
		ReferenceID:     order.PaymentOrderID,
		Description:     fmt.Sprintf("Escrow payment captured for order %s", order.PaymentOrderID),
		IdempotencyKey:  fmt.Sprintf("escrow:%s:capture", order.PaymentOrderID),
	}}
	if _, err := s.entryRepo.RecordEntriesInTx(ctx, tx, params, escrowStrategyActor, now); err != nil {
		return err
	}

	order.LastUpdatedAt = now
	order.LastUpdatedBy = systemActor
	if err := s.orderRepo.UpdateOrderInTx(ctx, tx, order); err != nil {
		return err
	}

	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit escrow capture: %w", err)
	}

	s.LogInfo(ctx, "Escrow payment captured and held",
		slog.String("payment_order_id", orderID),
		slog.String("fund_hold_id", hold.HoldID),
		slog.Time("expires_at", hold.ExpiresAt))
	return nil
}

// OnPaymentFailed marks a pending escrow order as failed. Idempotent when the
// order already failed.
func (s *EscrowStrategy) OnPaymentFailed(ctx context.Context, orderID string, reason string) error {
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

	s.LogWarn(ctx, "Escrow payment failed",
		slog.String("payment_order_id", orderID),
		slog.String("reason", reason))
	return nil
}

// ReleaseHold pays the held funds out to the recipient. The distributed lock
// serializes releases of the same hold across processes, because the payout
// side effect feeds an async executor and must not be started twice.
// Idempotent when the order is already RELEASED or SETTLED.
func (s *EscrowStrategy) ReleaseHold(ctx context.Context, orderID string, reason string) (*domain.PayoutRecord, error) {
	current, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if current.State() == domain.OrderReleased || current.State() == domain.OrderSettled {
		return s.payoutRepo.FindPayoutByOrderID(ctx, orderID)
	}
	if current.State() != domain.OrderHeld {
		return nil, fmt.Errorf("%w: cannot release escrow from %s", domain.ErrInvalidTransition, current.State())
	}

	recipientID := current.Metadata[recipientMetadataKey]
	if recipientID == "" {
		return nil, fmt.Errorf("%w: no %s in order metadata", apperrors.ErrValidation, recipientMetadataKey)
	}

	connected, err := s.connectedRepo.FindConnectedAccountByUserID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("recipient %s has no connected account: %w", recipientID, err)
	}
	if !connected.IsReadyForPayouts() {
		return nil, fmt.Errorf("%w: recipient %s is not enabled for payouts", apperrors.ErrValidation, recipientID)
	}

	escrow, err := s.accounts.ensurePlatform(ctx, domain.PlatformEscrow, current.CurrencyCode, escrowStrategyActor)
	if err != nil {
		return nil, err
	}
	recipientAccount, err := s.accounts.ensureUserBalance(ctx, recipientID, current.CurrencyCode, escrowStrategyActor)
	if err != nil {
		return nil, err
	}
	revenue, err := s.accounts.ensurePlatform(ctx, domain.PlatformRevenue, current.CurrencyCode, escrowStrategyActor)
	if err != nil {
		return nil, err
	}

	releaseLock, err := s.locker.Acquire(ctx, releaseLockPrefix+orderID)
	if err != nil {
		s.LogWarn(ctx, "Failed to acquire release lock", slog.String("payment_order_id", orderID))
		return nil, err
	}
	defer func() {
		if err := releaseLock.Release(ctx); err != nil {
			s.LogError(ctx, err, "Failed to release lock", slog.String("payment_order_id", orderID))
		}
	}()

	now := time.Now()

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

	// Re-check under the lock: another process may have released already.
	if order.State() == domain.OrderReleased || order.State() == domain.OrderSettled {
		return s.payoutRepo.FindPayoutByOrderID(ctx, orderID)
	}
	if order.State() != domain.OrderHeld {
		return nil, fmt.Errorf("%w: cannot release escrow from %s", domain.ErrInvalidTransition, order.State())
	}

	hold, err := s.holdRepo.FindHoldByOrderIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("no active fund hold for order %s: %w", orderID, err)
	}

	recipientAmount, fee := accounting.SplitAmount(order.AmountCents, s.feePercent)

	params := []domain.RecordEntryParams{{
		DebitAccountID:  escrow.AccountID,
		CreditAccountID: recipientAccount.AccountID,
		AmountCents:     recipientAmount,
		CurrencyCode:    order.CurrencyCode,
		EntryType:       domain.PaymentReleased,
		ReferenceType:   paymentOrderReference,
		ReferenceID:     order.PaymentOrderID,
		Description:     fmt.Sprintf("Escrow funds released to recipient for order %s", order.PaymentOrderID),
		IdempotencyKey:  fmt.Sprintf("escrow:%s:release:recipient", order.PaymentOrderID),
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
			Description:     fmt.Sprintf("Platform fee for escrow order %s", order.PaymentOrderID),
			IdempotencyKey:  fmt.Sprintf("escrow:%s:release:fee", order.PaymentOrderID),
		})
	}
	if _, err := s.entryRepo.RecordEntriesInTx(ctx, tx, params, escrowStrategyActor, now); err != nil {
		return nil, err
	}

	payout := domain.PayoutRecord{
		PayoutID:           uuid.NewString(),
		PaymentOrderID:     order.PaymentOrderID,
		ConnectedAccountID: connected.ProcessorAccountID,
		AmountCents:        recipientAmount,
		CurrencyCode:       order.CurrencyCode,
		State:              domain.PayoutPending,
		Metadata: map[string]string{
			"release_reason": reason,
			"platform_fee":   strconv.FormatInt(fee, 10),
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     systemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: systemActor,
		},
	}
	if err := s.payoutRepo.SavePayoutInTx(ctx, tx, payout); err != nil {
		return nil, err
	}

	hold.ReleaseTo(payout.PayoutID, now)
	if err := s.holdRepo.MarkHoldReleasedInTx(ctx, tx, hold, systemActor, now); err != nil {
		return nil, err
	}

	if err := order.Release(now); err != nil {
		return nil, err
	}
	order.LastUpdatedAt = now
	order.LastUpdatedBy = systemActor
	if err := s.orderRepo.UpdateOrderInTx(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit escrow release: %w", err)
	}

	s.LogInfo(ctx, "Escrow hold released",
		slog.String("payment_order_id", orderID),
		slog.String("payout_id", payout.PayoutID),
		slog.Int64("recipient_amount", recipientAmount),
		slog.Int64("platform_fee", fee),
		slog.String("release_reason", reason))
	return &payout, nil
}

// RefundPayment refunds an escrow order. A full refund from HELD is always
// allowed because no fee was taken at capture. After release, the refund is
// blocked while the payout is in flight or already paid; those cases need
// manual resolution. The release lock is taken so a refund never races a
// concurrent release of the same order. Ledger reversal happens on the
// refund-confirmation webhook path.
func (s *EscrowStrategy) RefundPayment(ctx context.Context, orderID string, amountCents *int64, reason string, userID string) (*domain.PaymentOrder, error) {
	refundLock, err := s.locker.Acquire(ctx, releaseLockPrefix+orderID)
	if err != nil {
		s.LogWarn(ctx, "Failed to acquire release lock for refund", slog.String("payment_order_id", orderID))
		return nil, err
	}
	defer func() {
		if err := refundLock.Release(ctx); err != nil {
			s.LogError(ctx, err, "Failed to release lock", slog.String("payment_order_id", orderID))
		}
	}()

	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ProcessorIntentID == nil {
		return nil, fmt.Errorf("%w: order %s has no processor intent", apperrors.ErrValidation, orderID)
	}

	if order.State() == domain.OrderReleased || order.State() == domain.OrderSettled {
		payout, err := s.payoutRepo.FindPayoutByOrderID(ctx, orderID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check payout for order %s: %w", orderID, err)
		}
		if payout != nil {
			switch payout.State {
			case domain.PayoutPaid:
				return nil, apperrors.ErrPayoutAlreadyPaid
			case domain.PayoutProcessing:
				return nil, apperrors.ErrPayoutInProgress
			}
		}
	}

	var refundAmount int64
	if amountCents != nil {
		refundAmount = *amountCents
		if refundAmount <= 0 || refundAmount > order.AmountCents {
			return nil, fmt.Errorf("%w: refund amount %d out of range", apperrors.ErrValidation, refundAmount)
		}
	}

	now := time.Now()

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

	s.LogInfo(ctx, "Escrow refund initiated",
		slog.String("payment_order_id", orderID),
		slog.String("reason", reason))
	return order, nil
}
