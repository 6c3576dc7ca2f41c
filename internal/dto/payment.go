package dto

import (
	"time"

	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/utils/money"
)

// CreatePaymentRequest defines the payload for starting a payment.
type CreatePaymentRequest struct {
	AmountCents  int64             `json:"amountCents" binding:"required,gt=0"`
	CurrencyCode string            `json:"currencyCode" binding:"required,currencycode"`
	Strategy     string            `json:"strategy" binding:"required,oneof=DIRECT ESCROW"`
	Metadata     map[string]string `json:"metadata"`
}

// RefundPaymentRequest defines the payload for refunding a payment.
// AmountCents nil means a full refund.
type RefundPaymentRequest struct {
	AmountCents *int64 `json:"amountCents" binding:"omitempty,gt=0"`
	Reason      string `json:"reason" binding:"required"`
}

// ReleaseHoldRequest defines the payload for releasing held escrow funds.
type ReleaseHoldRequest struct {
	Reason string `json:"reason"`
}

// PaymentOrderResponse defines the data returned for a payment order.
type PaymentOrderResponse struct {
	PaymentOrderID    string            `json:"paymentOrderID"`
	PayerID           string            `json:"payerID"`
	AmountCents       int64             `json:"amountCents"`
	DisplayAmount     string            `json:"displayAmount"`
	CurrencyCode      string            `json:"currencyCode"`
	Strategy          string            `json:"strategy"`
	State             string            `json:"state"`
	ProcessorIntentID *string           `json:"processorIntentID,omitempty"`
	FailureReason     *string           `json:"failureReason,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CapturedAt        *time.Time        `json:"capturedAt,omitempty"`
	HeldAt            *time.Time        `json:"heldAt,omitempty"`
	ReleasedAt        *time.Time        `json:"releasedAt,omitempty"`
	SettledAt         *time.Time        `json:"settledAt,omitempty"`
	FailedAt          *time.Time        `json:"failedAt,omitempty"`
	CancelledAt       *time.Time        `json:"cancelledAt,omitempty"`
	RefundedAt        *time.Time        `json:"refundedAt,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// PayoutResponse defines the data returned for a payout.
type PayoutResponse struct {
	PayoutID       string `json:"payoutID"`
	PaymentOrderID string `json:"paymentOrderID"`
	AmountCents    int64  `json:"amountCents"`
	DisplayAmount  string `json:"displayAmount"`
	CurrencyCode   string `json:"currencyCode"`
	State          string `json:"state"`
}

// ToPaymentOrderResponse converts a domain PaymentOrder to its DTO.
func ToPaymentOrderResponse(o *domain.PaymentOrder) PaymentOrderResponse {
	return PaymentOrderResponse{
		PaymentOrderID:    o.PaymentOrderID,
		PayerID:           o.PayerID,
		AmountCents:       o.AmountCents,
		DisplayAmount:     money.FormatCents(o.AmountCents, o.CurrencyCode),
		CurrencyCode:      o.CurrencyCode,
		Strategy:          string(o.StrategyType),
		State:             string(o.State()),
		ProcessorIntentID: o.ProcessorIntentID,
		FailureReason:     o.FailureReason,
		Metadata:          o.Metadata,
		CapturedAt:        o.CapturedAt,
		HeldAt:            o.HeldAt,
		ReleasedAt:        o.ReleasedAt,
		SettledAt:         o.SettledAt,
		FailedAt:          o.FailedAt,
		CancelledAt:       o.CancelledAt,
		RefundedAt:        o.RefundedAt,
		CreatedAt:         o.CreatedAt,
	}
}

// ToPayoutResponse converts a domain PayoutRecord to its DTO.
func ToPayoutResponse(p *domain.PayoutRecord) PayoutResponse {
	return PayoutResponse{
		PayoutID:       p.PayoutID,
		PaymentOrderID: p.PaymentOrderID,
		AmountCents:    p.AmountCents,
		DisplayAmount:  money.FormatCents(p.AmountCents, p.CurrencyCode),
		CurrencyCode:   p.CurrencyCode,
		State:          string(p.State),
	}
}
