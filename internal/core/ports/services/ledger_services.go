package services

import (
	"context"

	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/dto"
)

// LedgerSvcFacade exposes the double-entry ledger operations.
type LedgerSvcFacade interface {
	// EnsureAccount returns the account for (type, owner, currency), creating
	// it on first use.
	EnsureAccount(ctx context.Context, req dto.EnsureAccountRequest, userID string) (*domain.LedgerAccount, error)

	// GetAccountByID retrieves a ledger account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error)

	// GetAccountByOwner retrieves the account for (type, owner, currency).
	GetAccountByOwner(ctx context.Context, accountType domain.AccountType, ownerID *string, currencyCode string) (*domain.LedgerAccount, error)

	// DeactivateAccount blocks further postings to the account. History stays.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error

	// ReactivateAccount lifts a prior deactivation.
	ReactivateAccount(ctx context.Context, accountID string, userID string) error

	// GetBalance derives the account balance from its entries.
	GetBalance(ctx context.Context, accountID string) (int64, error)

	// RecordEntry posts a single double-entry record.
	RecordEntry(ctx context.Context, params domain.RecordEntryParams, createdBy string) (*domain.LedgerEntry, error)

	// RecordEntries atomically posts a batch: either every entry commits or
	// none do.
	RecordEntries(ctx context.Context, params []domain.RecordEntryParams, createdBy string) ([]domain.LedgerEntry, error)

	// Transfer posts a TRANSFER entry between two accounts.
	Transfer(ctx context.Context, req dto.TransferRequest, createdBy string) (*domain.LedgerEntry, error)

	// ListEntriesForAccount lists entries touching the account, newest first.
	ListEntriesForAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerEntry, error)

	// ListEntriesByReference lists entries for a business reference, oldest first.
	ListEntriesByReference(ctx context.Context, referenceType, referenceID string) ([]domain.LedgerEntry, error)
}
