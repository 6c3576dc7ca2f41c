package models

// Payout mirrors the payouts table.
type Payout struct {
	PayoutID           string            `db:"payout_id"`
	PaymentOrderID     string            `db:"payment_order_id"`
	ConnectedAccountID string            `db:"connected_account_id"`
	AmountCents        int64             `db:"amount_cents"`
	CurrencyCode       string            `db:"currency_code"`
	State              string            `db:"state"`
	Metadata           map[string]string `db:"metadata"` // jsonb
	AuditFields
}
