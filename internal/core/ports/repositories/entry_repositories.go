package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mentorhub/payments-backend/internal/core/domain"
)

// EntryReader defines read operations for ledger entries
type EntryReader interface {
	// FindEntriesByAccount lists entries touching the account, newest first.
	FindEntriesByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerEntry, error)

	// FindEntriesByReference lists entries for a business reference, oldest first.
	FindEntriesByReference(ctx context.Context, referenceType, referenceID string) ([]domain.LedgerEntry, error)
}

// EntryRecorder posts batches of double-entry records.
type EntryRecorder interface {
	// RecordEntriesInTx atomically posts a batch inside the caller's
	// transaction. Accounts are locked in ascending ID order, requests are
	// validated sequentially against the locked balances, and idempotency
	// keys short-circuit to the already-stored entry. Any failure leaves the
	// transaction poisoned so nothing partially commits.
	RecordEntriesInTx(ctx context.Context, tx pgx.Tx, params []domain.RecordEntryParams, createdBy string, now time.Time) ([]domain.LedgerEntry, error)
}

// EntryRepositoryFacade combines all entry-related repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryRecorder
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
