package mapping

import (
	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/models"
)

// ToModelFundHold converts a domain FundHold to a model FundHold
func ToModelFundHold(d domain.FundHold) models.FundHold {
	return models.FundHold{
		HoldID:             d.HoldID,
		PaymentOrderID:     d.PaymentOrderID,
		AmountCents:        d.AmountCents,
		CurrencyCode:       d.CurrencyCode,
		ExpiresAt:          d.ExpiresAt,
		Released:           d.Released,
		ReleasedAt:         d.ReleasedAt,
		ReleasedToPayoutID: d.ReleasedToPayoutID,
		Metadata:           d.Metadata,
		Version:            d.Version,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFundHold converts a model FundHold to a domain FundHold
func ToDomainFundHold(m models.FundHold) domain.FundHold {
	return domain.FundHold{
		HoldID:             m.HoldID,
		PaymentOrderID:     m.PaymentOrderID,
		AmountCents:        m.AmountCents,
		CurrencyCode:       m.CurrencyCode,
		ExpiresAt:          m.ExpiresAt,
		Released:           m.Released,
		ReleasedAt:         m.ReleasedAt,
		ReleasedToPayoutID: m.ReleasedToPayoutID,
		Metadata:           m.Metadata,
		Version:            m.Version,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPayout converts a domain PayoutRecord to a model Payout
func ToModelPayout(d domain.PayoutRecord) models.Payout {
	return models.Payout{
		PayoutID:           d.PayoutID,
		PaymentOrderID:     d.PaymentOrderID,
		ConnectedAccountID: d.ConnectedAccountID,
		AmountCents:        d.AmountCents,
		CurrencyCode:       d.CurrencyCode,
		State:              string(d.State),
		Metadata:           d.Metadata,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayout converts a model Payout to a domain PayoutRecord
func ToDomainPayout(m models.Payout) domain.PayoutRecord {
	return domain.PayoutRecord{
		PayoutID:           m.PayoutID,
		PaymentOrderID:     m.PaymentOrderID,
		ConnectedAccountID: m.ConnectedAccountID,
		AmountCents:        m.AmountCents,
		CurrencyCode:       m.CurrencyCode,
		State:              domain.PayoutState(m.State),
		Metadata:           m.Metadata,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainConnectedAccount converts a model ConnectedAccount to its domain form
func ToDomainConnectedAccount(m models.ConnectedAccount) domain.ConnectedAccount {
	return domain.ConnectedAccount{
		UserID:             m.UserID,
		ProcessorAccountID: m.ProcessorAccountID,
		PayoutsEnabled:     m.PayoutsEnabled,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}
