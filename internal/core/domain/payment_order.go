package domain

import (
	"errors"
	"fmt"
	"time"
)

// PaymentOrderState is the lifecycle state of a payment order.
type PaymentOrderState string

const (
	OrderDraft             PaymentOrderState = "DRAFT"
	OrderPending           PaymentOrderState = "PENDING"
	OrderProcessing        PaymentOrderState = "PROCESSING"
	OrderCaptured          PaymentOrderState = "CAPTURED"
	OrderHeld              PaymentOrderState = "HELD"
	OrderReleased          PaymentOrderState = "RELEASED"
	OrderSettled           PaymentOrderState = "SETTLED"
	OrderFailed            PaymentOrderState = "FAILED"
	OrderCancelled         PaymentOrderState = "CANCELLED"
	OrderRefunded          PaymentOrderState = "REFUNDED"
	OrderPartiallyRefunded PaymentOrderState = "PARTIALLY_REFUNDED"
)

// StrategyType selects the settlement flow for a payment order.
type StrategyType string

const (
	StrategyDirect StrategyType = "DIRECT"
	StrategyEscrow StrategyType = "ESCROW"
)

// ErrInvalidTransition is returned by any transition attempted from a state
// that does not permit it. Guard failures never mutate the order.
var ErrInvalidTransition = errors.New("invalid payment order state transition")

// refundableStates are the states from which money can flow back to the payer.
var refundableStates = []PaymentOrderState{
	OrderCaptured, OrderHeld, OrderReleased, OrderSettled, OrderPartiallyRefunded,
}

// PaymentOrder tracks a single payment through its lifecycle. The state field
// is unexported on purpose: the only way to change it is through the named
// transition methods below, which enforce the lifecycle graph.
type PaymentOrder struct {
	PaymentOrderID    string            `json:"paymentOrderID"` // Primary Key (UUID)
	PayerID           string            `json:"payerID"`
	AmountCents       int64             `json:"amountCents"` // Gross amount, minor units
	CurrencyCode      string            `json:"currencyCode"`
	StrategyType      StrategyType      `json:"strategyType"`
	ProcessorIntentID *string           `json:"processorIntentID"` // Unique when set
	state             PaymentOrderState //
	FailureReason     *string           `json:"failureReason"`
	Metadata          map[string]string `json:"metadata"`
	Version           int64             `json:"version"` // Optimistic lock counter
	CapturedAt        *time.Time        `json:"capturedAt"`
	HeldAt            *time.Time        `json:"heldAt"`
	ReleasedAt        *time.Time        `json:"releasedAt"`
	SettledAt         *time.Time        `json:"settledAt"`
	FailedAt          *time.Time        `json:"failedAt"`
	CancelledAt       *time.Time        `json:"cancelledAt"`
	RefundedAt        *time.Time        `json:"refundedAt"`
	AuditFields
}

// NewPaymentOrder creates an order in DRAFT.
func NewPaymentOrder(orderID, payerID string, amountCents int64, currencyCode string, strategy StrategyType, metadata map[string]string) *PaymentOrder {
	return &PaymentOrder{
		PaymentOrderID: orderID,
		PayerID:        payerID,
		AmountCents:    amountCents,
		CurrencyCode:   currencyCode,
		StrategyType:   strategy,
		state:          OrderDraft,
		Metadata:       metadata,
		Version:        1,
	}
}

// PaymentOrderFields is the storage-shaped view of an order. Repositories use
// it with HydratePaymentOrder to rebuild orders without going through the
// transition methods.
type PaymentOrderFields struct {
	PaymentOrderID    string
	PayerID           string
	AmountCents       int64
	CurrencyCode      string
	StrategyType      StrategyType
	ProcessorIntentID *string
	State             PaymentOrderState
	FailureReason     *string
	Metadata          map[string]string
	Version           int64
	CapturedAt        *time.Time
	HeldAt            *time.Time
	ReleasedAt        *time.Time
	SettledAt         *time.Time
	FailedAt          *time.Time
	CancelledAt       *time.Time
	RefundedAt        *time.Time
	AuditFields
}

// HydratePaymentOrder rebuilds an order from persisted fields.
func HydratePaymentOrder(f PaymentOrderFields) *PaymentOrder {
	return &PaymentOrder{
		PaymentOrderID:    f.PaymentOrderID,
		PayerID:           f.PayerID,
		AmountCents:       f.AmountCents,
		CurrencyCode:      f.CurrencyCode,
		StrategyType:      f.StrategyType,
		ProcessorIntentID: f.ProcessorIntentID,
		state:             f.State,
		FailureReason:     f.FailureReason,
		Metadata:          f.Metadata,
		Version:           f.Version,
		CapturedAt:        f.CapturedAt,
		HeldAt:            f.HeldAt,
		ReleasedAt:        f.ReleasedAt,
		SettledAt:         f.SettledAt,
		FailedAt:          f.FailedAt,
		CancelledAt:       f.CancelledAt,
		RefundedAt:        f.RefundedAt,
		AuditFields:       f.AuditFields,
	}
}

// Fields returns the storage-shaped view of the order.
func (o *PaymentOrder) Fields() PaymentOrderFields {
	return PaymentOrderFields{
		PaymentOrderID:    o.PaymentOrderID,
		PayerID:           o.PayerID,
		AmountCents:       o.AmountCents,
		CurrencyCode:      o.CurrencyCode,
		StrategyType:      o.StrategyType,
		ProcessorIntentID: o.ProcessorIntentID,
		State:             o.state,
		FailureReason:     o.FailureReason,
		Metadata:          o.Metadata,
		Version:           o.Version,
		CapturedAt:        o.CapturedAt,
		HeldAt:            o.HeldAt,
		ReleasedAt:        o.ReleasedAt,
		SettledAt:         o.SettledAt,
		FailedAt:          o.FailedAt,
		CancelledAt:       o.CancelledAt,
		RefundedAt:        o.RefundedAt,
		AuditFields:       o.AuditFields,
	}
}

// State returns the current lifecycle state.
func (o *PaymentOrder) State() PaymentOrderState {
	return o.state
}

// transition moves the order to target if the current state is in from.
func (o *PaymentOrder) transition(target PaymentOrderState, from ...PaymentOrderState) error {
	for _, s := range from {
		if o.state == s {
			o.state = target
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move to %s from %s", ErrInvalidTransition, target, o.state)
}

// Submit hands the draft order to the processor flow.
func (o *PaymentOrder) Submit() error {
	return o.transition(OrderPending, OrderDraft)
}

// Process marks the order as in flight with the processor.
func (o *PaymentOrder) Process() error {
	return o.transition(OrderProcessing, OrderPending)
}

// Capture records that the processor confirmed the charge.
func (o *PaymentOrder) Capture(now time.Time) error {
	if err := o.transition(OrderCaptured, OrderProcessing); err != nil {
		return err
	}
	o.CapturedAt = &now
	return nil
}

// Hold moves captured funds into escrow.
func (o *PaymentOrder) Hold(now time.Time) error {
	if err := o.transition(OrderHeld, OrderCaptured); err != nil {
		return err
	}
	o.HeldAt = &now
	return nil
}

// Release frees held funds towards the recipient.
func (o *PaymentOrder) Release(now time.Time) error {
	if err := o.transition(OrderReleased, OrderHeld); err != nil {
		return err
	}
	o.ReleasedAt = &now
	return nil
}

// SettleFromCaptured finalizes a direct payment.
func (o *PaymentOrder) SettleFromCaptured(now time.Time) error {
	if err := o.transition(OrderSettled, OrderCaptured); err != nil {
		return err
	}
	o.SettledAt = &now
	return nil
}

// SettleFromReleased finalizes an escrow payment after release.
func (o *PaymentOrder) SettleFromReleased(now time.Time) error {
	if err := o.transition(OrderSettled, OrderReleased); err != nil {
		return err
	}
	o.SettledAt = &now
	return nil
}

// Fail records a processor failure with its reason.
func (o *PaymentOrder) Fail(reason string, now time.Time) error {
	if err := o.transition(OrderFailed, OrderProcessing); err != nil {
		return err
	}
	o.FailureReason = &reason
	o.FailedAt = &now
	return nil
}

// Retry re-queues a failed order and clears the failure record.
func (o *PaymentOrder) Retry() error {
	if err := o.transition(OrderPending, OrderFailed); err != nil {
		return err
	}
	o.FailureReason = nil
	o.FailedAt = nil
	return nil
}

// Cancel aborts an order that has not reached the processor yet.
func (o *PaymentOrder) Cancel(now time.Time) error {
	if err := o.transition(OrderCancelled, OrderDraft, OrderPending); err != nil {
		return err
	}
	o.CancelledAt = &now
	return nil
}

// RefundFull marks the entire order as refunded.
func (o *PaymentOrder) RefundFull(now time.Time) error {
	if err := o.transition(OrderRefunded, refundableStates...); err != nil {
		return err
	}
	o.RefundedAt = &now
	return nil
}

// RefundPartial marks the order as partially refunded. Further partial
// refunds stay in the same state and refresh the refund timestamp.
func (o *PaymentOrder) RefundPartial(now time.Time) error {
	if err := o.transition(OrderPartiallyRefunded, refundableStates...); err != nil {
		return err
	}
	o.RefundedAt = &now
	return nil
}
