package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	"github.com/mentorhub/payments-backend/internal/models"
	"github.com/mentorhub/payments-backend/internal/utils/mapping"
)

const accountColumns = `account_id, account_type, owner_id, currency_code, allow_negative, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a new repository for ledger account data.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*models.LedgerAccount, error) {
	var m models.LedgerAccount
	err := row.Scan(
		&m.AccountID,
		&m.AccountType,
		&m.OwnerID,
		&m.CurrencyCode,
		&m.AllowNegative,
		&m.IsActive,
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

// EnsureAccount inserts the account unless one already exists for the same
// (type, owner, currency) and returns the stored row either way.
func (r *PgxAccountRepository) EnsureAccount(ctx context.Context, account domain.LedgerAccount) (*domain.LedgerAccount, error) {
	m := mapping.ToModelLedgerAccount(account)
	insertQuery := `
		INSERT INTO ledger_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, insertQuery,
		m.AccountID,
		m.AccountType,
		m.OwnerID,
		m.CurrencyCode,
		m.AllowNegative,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to ensure ledger account", err)
	}

	// Re-select so concurrent creators all see the winning row.
	return r.FindAccountByOwner(ctx, account.AccountType, account.OwnerID, account.CurrencyCode)
}

// FindAccountByID retrieves a ledger account by its identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE account_id = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger account "+accountID, err)
	}
	d := mapping.ToDomainLedgerAccount(*m)
	return &d, nil
}

// FindAccountByOwner retrieves the account for (type, owner, currency).
func (r *PgxAccountRepository) FindAccountByOwner(ctx context.Context, accountType domain.AccountType, ownerID *string, currencyCode string) (*domain.LedgerAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger_accounts
		WHERE account_type = $1 AND owner_id IS NOT DISTINCT FROM $2 AND currency_code = $3;
	`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountType, ownerID, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger account by owner", err)
	}
	d := mapping.ToDomainLedgerAccount(*m)
	return &d, nil
}

// SetAccountActive flips the soft-deactivation flag.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE ledger_accounts
		SET is_active = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, active, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update ledger account "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger account " + accountID + " not found for update")
	}
	return nil
}

// balanceQuery derives balances as SUM(credits) - SUM(debits) per account.
const balanceQuery = `
	SELECT account_id, COALESCE(SUM(delta), 0)::bigint
	FROM (
		SELECT credit_account_id AS account_id, amount_cents AS delta
		FROM ledger_entries WHERE credit_account_id = ANY($1)
		UNION ALL
		SELECT debit_account_id AS account_id, -amount_cents AS delta
		FROM ledger_entries WHERE debit_account_id = ANY($1)
	) movements
	GROUP BY account_id;
`

func balancesFromRows(rows pgx.Rows, accountIDs []string) (map[string]int64, error) {
	defer rows.Close()

	balances := make(map[string]int64, len(accountIDs))
	for rows.Next() {
		var accountID string
		var balance int64
		if err := rows.Scan(&accountID, &balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance row", err)
		}
		balances[accountID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating balance rows", err)
	}

	// Accounts with no entries yet have a zero balance.
	for _, id := range accountIDs {
		if _, ok := balances[id]; !ok {
			balances[id] = 0
		}
	}
	return balances, nil
}

// GetBalance derives a single account balance from its entries.
func (r *PgxAccountRepository) GetBalance(ctx context.Context, accountID string) (int64, error) {
	// Make sure the account exists before reporting a balance for it.
	if _, err := r.FindAccountByID(ctx, accountID); err != nil {
		return 0, err
	}

	rows, err := r.Pool.Query(ctx, balanceQuery, []string{accountID})
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to query balance for account "+accountID, err)
	}
	balances, err := balancesFromRows(rows, []string{accountID})
	if err != nil {
		return 0, err
	}
	return balances[accountID], nil
}

// GetBalancesInTx derives balances for the given accounts inside a transaction.
func (r *PgxAccountRepository) GetBalancesInTx(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]int64, error) {
	if len(accountIDs) == 0 {
		return map[string]int64{}, nil
	}
	rows, err := tx.Query(ctx, balanceQuery, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query balances in transaction", err)
	}
	return balancesFromRows(rows, accountIDs)
}

// FindAccountsByIDsForUpdate selects the accounts in ascending ID order with
// row locks held until the transaction ends. The ascending order keeps
// concurrent posting batches from deadlocking against each other.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.LedgerAccount{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM ledger_accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock ledger accounts", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.LedgerAccount, len(accountIDs))
	for rows.Next() {
		var m models.LedgerAccount
		if err := rows.Scan(
			&m.AccountID,
			&m.AccountType,
			&m.OwnerID,
			&m.CurrencyCode,
			&m.AllowNegative,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked account row", err)
		}
		accounts[m.AccountID] = mapping.ToDomainLedgerAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating locked account rows", err)
	}

	// Every requested ID must resolve to a row.
	for _, id := range accountIDs {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}

	return accounts, nil
}
