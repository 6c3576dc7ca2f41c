package mapping

import (
	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/models"
)

// ToModelPaymentOrder converts a domain PaymentOrder to a model PaymentOrder
func ToModelPaymentOrder(d *domain.PaymentOrder) models.PaymentOrder {
	f := d.Fields()
	return models.PaymentOrder{
		PaymentOrderID:    f.PaymentOrderID,
		PayerID:           f.PayerID,
		AmountCents:       f.AmountCents,
		CurrencyCode:      f.CurrencyCode,
		StrategyType:      string(f.StrategyType),
		ProcessorIntentID: f.ProcessorIntentID,
		State:             string(f.State),
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
		AuditFields:       ToModelAuditFields(f.AuditFields),
	}
}

// ToDomainPaymentOrder rebuilds a domain PaymentOrder from a model row.
func ToDomainPaymentOrder(m models.PaymentOrder) *domain.PaymentOrder {
	return domain.HydratePaymentOrder(domain.PaymentOrderFields{
		PaymentOrderID:    m.PaymentOrderID,
		PayerID:           m.PayerID,
		AmountCents:       m.AmountCents,
		CurrencyCode:      m.CurrencyCode,
		StrategyType:      domain.StrategyType(m.StrategyType),
		ProcessorIntentID: m.ProcessorIntentID,
		State:             domain.PaymentOrderState(m.State),
		FailureReason:     m.FailureReason,
		Metadata:          m.Metadata,
		Version:           m.Version,
		CapturedAt:        m.CapturedAt,
		HeldAt:            m.HeldAt,
		ReleasedAt:        m.ReleasedAt,
		SettledAt:         m.SettledAt,
		FailedAt:          m.FailedAt,
		CancelledAt:       m.CancelledAt,
		RefundedAt:        m.RefundedAt,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	})
}
