package models

import "time"

// PaymentOrder mirrors the payment_orders table. The version column backs
// optimistic locking; every UPDATE increments it server-side.
type PaymentOrder struct {
	PaymentOrderID    string            `db:"payment_order_id"`
	PayerID           string            `db:"payer_id"`
	AmountCents       int64             `db:"amount_cents"`
	CurrencyCode      string            `db:"currency_code"`
	StrategyType      string            `db:"strategy_type"`
	ProcessorIntentID *string           `db:"processor_intent_id"` // Unique when set
	State             string            `db:"state"`
	FailureReason     *string           `db:"failure_reason"`
	Metadata          map[string]string `db:"metadata"` // jsonb
	Version           int64             `db:"version"`
	CapturedAt        *time.Time        `db:"captured_at"`
	HeldAt            *time.Time        `db:"held_at"`
	ReleasedAt        *time.Time        `db:"released_at"`
	SettledAt         *time.Time        `db:"settled_at"`
	FailedAt          *time.Time        `db:"failed_at"`
	CancelledAt       *time.Time        `db:"cancelled_at"`
	RefundedAt        *time.Time        `db:"refunded_at"`
	AuditFields
}
