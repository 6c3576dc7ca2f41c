package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	"github.com/mentorhub/payments-backend/internal/models"
	"github.com/mentorhub/payments-backend/internal/utils/mapping"
)

const uniqueViolationCode = "23505"

const entryColumns = `entry_id, debit_account_id, credit_account_id, amount_cents, currency_code,
	entry_type, reference_type, reference_id, description, metadata, idempotency_key,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewEntryRepository creates a new repository for ledger entry data.
func NewEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.DebitAccountID,
		&m.CreditAccountID,
		&m.AmountCents,
		&m.CurrencyCode,
		&m.EntryType,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.Description,
		&m.Metadata,
		&m.IdempotencyKey,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// findByIdempotencyKeyInTx looks up an existing entry for the key inside the
// posting transaction.
func (r *PgxEntryRepository) findByIdempotencyKeyInTx(ctx context.Context, tx pgx.Tx, key string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE idempotency_key = $1;`
	m, err := scanEntry(tx.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to look up idempotency key", err)
	}
	d := mapping.ToDomainLedgerEntry(*m)
	return &d, nil
}

// insertEntryInTx inserts the entry under a savepoint so a uniqueness race on
// the idempotency key does not poison the surrounding transaction. On a
// conflict it returns the entry another writer stored for the same key.
func (r *PgxEntryRepository) insertEntryInTx(ctx context.Context, tx pgx.Tx, m models.LedgerEntry) (*domain.LedgerEntry, error) {
	inner, err := tx.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to create savepoint for entry insert", err)
	}

	insertQuery := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = inner.Exec(ctx, insertQuery,
		m.EntryID,
		m.DebitAccountID,
		m.CreditAccountID,
		m.AmountCents,
		m.CurrencyCode,
		m.EntryType,
		m.ReferenceType,
		m.ReferenceID,
		m.Description,
		m.Metadata,
		m.IdempotencyKey,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		_ = inner.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			existing, findErr := r.findByIdempotencyKeyInTx(ctx, tx, m.IdempotencyKey)
			if findErr != nil {
				return nil, apperrors.NewAppError(500, "failed to fetch entry after idempotency conflict", findErr)
			}
			return existing, nil
		}
		return nil, apperrors.NewAppError(500, "failed to insert ledger entry", err)
	}
	if err := inner.Commit(ctx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to release entry insert savepoint", err)
	}

	d := mapping.ToDomainLedgerEntry(m)
	return &d, nil
}

// RecordEntriesInTx atomically posts a batch of double-entry records inside
// the caller's transaction.
//
// All referenced accounts are locked up front in ascending ID order, then each
// request is processed in submitted order: the idempotency key is checked
// before anything else, the debit side is validated against the locked balance
// adjusted by earlier requests in this batch, and the entry is inserted. Any
// error aborts the whole batch.
func (r *PgxEntryRepository) RecordEntriesInTx(ctx context.Context, tx pgx.Tx, params []domain.RecordEntryParams, createdBy string, now time.Time) ([]domain.LedgerEntry, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no entries to record", apperrors.ErrValidation)
	}

	accountIDs := make([]string, 0, len(params)*2)
	seen := make(map[string]struct{}, len(params)*2)
	for _, p := range params {
		for _, id := range []string{p.DebitAccountID, p.CreditAccountID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				accountIDs = append(accountIDs, id)
			}
		}
	}

	accounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	balances, err := r.accountRepo.GetBalancesInTx(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	// Net effect of entries posted earlier in this batch, on top of the
	// balances read under the locks.
	batchDeltas := make(map[string]int64, len(accountIDs))

	recorded := make([]domain.LedgerEntry, 0, len(params))
	for _, p := range params {
		if p.AmountCents <= 0 {
			return nil, fmt.Errorf("%w: entry amount must be positive", apperrors.ErrValidation)
		}
		if p.IdempotencyKey == "" {
			return nil, fmt.Errorf("%w: idempotency key is required", apperrors.ErrValidation)
		}
		if p.DebitAccountID == p.CreditAccountID {
			return nil, fmt.Errorf("%w: debit and credit accounts must differ", apperrors.ErrValidation)
		}

		// Idempotency wins over validation: a replayed request returns the
		// stored entry even if balances have since moved.
		existing, err := r.findByIdempotencyKeyInTx(ctx, tx, p.IdempotencyKey)
		if err == nil {
			recorded = append(recorded, *existing)
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		debitAccount := accounts[p.DebitAccountID]
		creditAccount := accounts[p.CreditAccountID]

		if !debitAccount.IsActive {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInactiveAccount, p.DebitAccountID)
		}
		if !creditAccount.IsActive {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInactiveAccount, p.CreditAccountID)
		}
		if debitAccount.CurrencyCode != p.CurrencyCode || creditAccount.CurrencyCode != p.CurrencyCode {
			return nil, fmt.Errorf("%w: entry currency %s does not match account currency", apperrors.ErrValidation, p.CurrencyCode)
		}

		if !debitAccount.AllowNegative {
			available := balances[p.DebitAccountID] + batchDeltas[p.DebitAccountID]
			if available < p.AmountCents {
				return nil, &apperrors.InsufficientBalanceError{
					AccountID:      p.DebitAccountID,
					RequiredCents:  p.AmountCents,
					AvailableCents: available,
				}
			}
		}

		m := models.LedgerEntry{
			EntryID:         uuid.NewString(),
			DebitAccountID:  p.DebitAccountID,
			CreditAccountID: p.CreditAccountID,
			AmountCents:     p.AmountCents,
			CurrencyCode:    p.CurrencyCode,
			EntryType:       string(p.EntryType),
			ReferenceType:   p.ReferenceType,
			ReferenceID:     p.ReferenceID,
			Description:     p.Description,
			Metadata:        p.Metadata,
			IdempotencyKey:  p.IdempotencyKey,
			AuditFields: models.AuditFields{
				CreatedAt:     now,
				CreatedBy:     createdBy,
				LastUpdatedAt: now,
				LastUpdatedBy: createdBy,
			},
		}

		entry, err := r.insertEntryInTx(ctx, tx, m)
		if err != nil {
			return nil, err
		}

		// Only entries newly written by this batch shift the working balances.
		if entry.EntryID == m.EntryID {
			batchDeltas[p.DebitAccountID] -= p.AmountCents
			batchDeltas[p.CreditAccountID] += p.AmountCents
		}
		recorded = append(recorded, *entry)
	}

	return recorded, nil
}

// FindEntriesByAccount lists entries touching the account, newest first.
func (r *PgxEntryRepository) FindEntriesByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE debit_account_id = $1 OR credit_account_id = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for account "+accountID, err)
	}
	return collectEntries(rows)
}

// FindEntriesByReference lists entries for a business reference, oldest first
// so the flow reads in the order it happened.
func (r *PgxEntryRepository) FindEntriesByReference(ctx context.Context, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at ASC, entry_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, referenceType, referenceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for reference "+referenceType+"/"+referenceID, err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entry rows", err)
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nil
}
