package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
)

// recipientMetadataKey is where escrow orders carry the recipient user id.
const recipientMetadataKey = "recipient_id"

// clientSecretMetadataKey is where strategies stash the processor's
// client-side continuation token after opening a charge intent.
const clientSecretMetadataKey = "client_secret"

// paymentOrderReference is the reference type used for all order postings.
const paymentOrderReference = "payment_order"

// accountProvisioner resolves the ledger accounts the strategies post
// against, creating them on first use.
type accountProvisioner struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

func (p *accountProvisioner) ensure(ctx context.Context, accountType domain.AccountType, ownerID *string, currencyCode string, createdBy string) (*domain.LedgerAccount, error) {
	now := time.Now()
	account, err := p.accountRepo.EnsureAccount(ctx, domain.LedgerAccount{
		AccountID:     uuid.NewString(),
		AccountType:   accountType,
		OwnerID:       ownerID,
		CurrencyCode:  currencyCode,
		AllowNegative: accountType == domain.ExternalProcessor,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure %s account: %w", accountType, err)
	}
	return account, nil
}

func (p *accountProvisioner) ensurePlatform(ctx context.Context, accountType domain.AccountType, currencyCode string, createdBy string) (*domain.LedgerAccount, error) {
	return p.ensure(ctx, accountType, nil, currencyCode, createdBy)
}

func (p *accountProvisioner) ensureUserBalance(ctx context.Context, ownerID string, currencyCode string, createdBy string) (*domain.LedgerAccount, error) {
	return p.ensure(ctx, domain.UserBalance, &ownerID, currencyCode, createdBy)
}

// intentIdempotencyKey derives the processor idempotency key for opening a
// charge intent, deterministic per order so retries are safe.
func intentIdempotencyKey(orderID string) string {
	return "create_intent:" + orderID
}

// refundIdempotencyKey derives the processor idempotency key for a refund
// attempt. The order version is baked in so each attempt gets a fresh key
// (a partial refund bumps the version when it persists), while a retry of an
// attempt that never persisted replays the same key.
func refundIdempotencyKey(orderID string, version int64) string {
	return fmt.Sprintf("refund:%s:v%d", orderID, version)
}
