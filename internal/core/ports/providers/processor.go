package providers

import (
	"context"
	"fmt"
)

// ChargeIntentParams describes a charge to register with the processor.
type ChargeIntentParams struct {
	OrderID        string
	AmountCents    int64
	CurrencyCode   string
	IdempotencyKey string
	Metadata       map[string]string
}

// ChargeIntent is the processor's handle for a pending charge.
type ChargeIntent struct {
	IntentID     string
	ClientSecret string // Returned to the payer's client to finish the charge
	Status       string
}

// RefundParams describes a refund against a previously captured charge.
type RefundParams struct {
	IntentID       string
	AmountCents    int64 // 0 means refund the full remaining amount
	Reason         string
	IdempotencyKey string
}

// RefundResult is the processor's record of an issued refund.
type RefundResult struct {
	RefundID string
	Status   string
}

// PaymentProcessor abstracts the external card processor.
type PaymentProcessor interface {
	// CreateChargeIntent registers a charge. The idempotency key makes the
	// call safe to repeat.
	CreateChargeIntent(ctx context.Context, params ChargeIntentParams) (*ChargeIntent, error)

	// CreateRefund issues a refund for a captured charge.
	CreateRefund(ctx context.Context, params RefundParams) (*RefundResult, error)
}

// ProcessorError is a failure reported by the processor. Retryable errors
// (rate limits, transient server failures, network trouble) may be replayed
// with the same idempotency key.
type ProcessorError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error %s: %s", e.Code, e.Message)
}
