package models

import "time"

// FundHold mirrors the fund_holds table.
type FundHold struct {
	HoldID             string            `db:"hold_id"`
	PaymentOrderID     string            `db:"payment_order_id"`
	AmountCents        int64             `db:"amount_cents"`
	CurrencyCode       string            `db:"currency_code"`
	ExpiresAt          time.Time         `db:"expires_at"`
	Released           bool              `db:"released"`
	ReleasedAt         *time.Time        `db:"released_at"`
	ReleasedToPayoutID *string           `db:"released_to_payout_id"`
	Metadata           map[string]string `db:"metadata"` // jsonb
	Version            int64             `db:"version"`
	AuditFields
}
