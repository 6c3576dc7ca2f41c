package domain

import "time"

// FundHold earmarks captured escrow funds for a payment order until they are
// released to the recipient or refunded to the payer.
type FundHold struct {
	HoldID             string            `json:"holdID"` // Primary Key (UUID)
	PaymentOrderID     string            `json:"paymentOrderID"`
	AmountCents        int64             `json:"amountCents"`
	CurrencyCode       string            `json:"currencyCode"`
	ExpiresAt          time.Time         `json:"expiresAt"` // Auto-release deadline
	Released           bool              `json:"released"`
	ReleasedAt         *time.Time        `json:"releasedAt"`
	ReleasedToPayoutID *string           `json:"releasedToPayoutID"`
	Metadata           map[string]string `json:"metadata"`
	Version            int64             `json:"version"`
	AuditFields
}

// IsExpired reports whether the hold passed its auto-release deadline.
func (h *FundHold) IsExpired(now time.Time) bool {
	return !h.Released && now.After(h.ExpiresAt)
}

// ReleaseTo marks the hold as released into the given payout.
func (h *FundHold) ReleaseTo(payoutID string, now time.Time) {
	h.Released = true
	h.ReleasedAt = &now
	h.ReleasedToPayoutID = &payoutID
}
