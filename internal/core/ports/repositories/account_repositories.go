package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mentorhub/payments-backend/internal/core/domain"
)

// AccountReader defines read operations for ledger account data
type AccountReader interface {
	// FindAccountByID retrieves a specific ledger account by its identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error)

	// FindAccountByOwner retrieves the account of the given type, owner and currency.
	// ownerID is nil for platform accounts.
	FindAccountByOwner(ctx context.Context, accountType domain.AccountType, ownerID *string, currencyCode string) (*domain.LedgerAccount, error)

	// GetBalance derives the account balance as SUM(credits) - SUM(debits).
	GetBalance(ctx context.Context, accountID string) (int64, error)
}

// AccountWriter defines write operations for ledger account data
type AccountWriter interface {
	// EnsureAccount inserts the account if no account with the same
	// (type, owner, currency) exists and returns the stored row either way.
	EnsureAccount(ctx context.Context, account domain.LedgerAccount) (*domain.LedgerAccount, error)

	// SetAccountActive flips the soft-deactivation flag.
	SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error
}

// AccountTransactionSupport defines account operations used inside a posting transaction
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts in ascending ID order with
	// row locks held for the remainder of the transaction. Every requested ID
	// must exist or apperrors.ErrAccountNotFound is returned.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.LedgerAccount, error)

	// GetBalancesInTx derives balances for the given accounts inside the transaction.
	GetBalancesInTx(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]int64, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
