package pgsql_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	"github.com/mentorhub/payments-backend/internal/models"
	"github.com/mentorhub/payments-backend/internal/repositories/database/pgsql"
)

// accountStore is an in-memory stand-in for the account repository inside a
// posting transaction. Only the locking lookups are exercised here.
type accountStore struct {
	accounts map[string]domain.LedgerAccount
	balances map[string]int64
}

func (s *accountStore) FindAccountsByIDsForUpdate(_ context.Context, _ pgx.Tx, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	found := make(map[string]domain.LedgerAccount, len(accountIDs))
	for _, id := range accountIDs {
		account, ok := s.accounts[id]
		if !ok {
			return nil, apperrors.ErrAccountNotFound
		}
		found[id] = account
	}
	return found, nil
}

func (s *accountStore) GetBalancesInTx(_ context.Context, _ pgx.Tx, accountIDs []string) (map[string]int64, error) {
	balances := make(map[string]int64, len(accountIDs))
	for _, id := range accountIDs {
		balances[id] = s.balances[id]
	}
	return balances, nil
}

func (s *accountStore) FindAccountByID(context.Context, string) (*domain.LedgerAccount, error) {
	return nil, apperrors.ErrNotFound
}

func (s *accountStore) FindAccountByOwner(context.Context, domain.AccountType, *string, string) (*domain.LedgerAccount, error) {
	return nil, apperrors.ErrNotFound
}

func (s *accountStore) GetBalance(context.Context, string) (int64, error) {
	return 0, nil
}

func (s *accountStore) EnsureAccount(_ context.Context, account domain.LedgerAccount) (*domain.LedgerAccount, error) {
	return &account, nil
}

func (s *accountStore) SetAccountActive(context.Context, string, bool, string, time.Time) error {
	return nil
}

var _ portsrepo.AccountRepositoryFacade = (*accountStore)(nil)

// ledgerTx implements the slice of pgx.Tx the entry repository touches,
// backed by an in-memory table keyed on idempotency key.
type ledgerTx struct {
	entries map[string]models.LedgerEntry
	// Keys that fail the insert with a unique violation even though the
	// earlier lookup missed them, mimicking a concurrent writer landing
	// between lookup and insert.
	racedEntries map[string]models.LedgerEntry
	inserts      int
}

func newLedgerTx() *ledgerTx {
	return &ledgerTx{
		entries:      map[string]models.LedgerEntry{},
		racedEntries: map[string]models.LedgerEntry{},
	}
}

func (t *ledgerTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *ledgerTx) Commit(context.Context) error          { return nil }
func (t *ledgerTx) Rollback(context.Context) error        { return nil }

func (t *ledgerTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if !strings.Contains(sql, "INSERT INTO ledger_entries") {
		return pgconn.CommandTag{}, nil
	}
	key := args[10].(string)
	if raced, ok := t.racedEntries[key]; ok {
		t.entries[key] = raced
		delete(t.racedEntries, key)
		return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
	}
	if _, ok := t.entries[key]; ok {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
	}
	t.entries[key] = models.LedgerEntry{
		EntryID:         args[0].(string),
		DebitAccountID:  args[1].(string),
		CreditAccountID: args[2].(string),
		AmountCents:     args[3].(int64),
		CurrencyCode:    args[4].(string),
		EntryType:       args[5].(string),
		ReferenceType:   args[6].(string),
		ReferenceID:     args[7].(string),
		Description:     args[8].(string),
		IdempotencyKey:  key,
		AuditFields: models.AuditFields{
			CreatedAt:     args[11].(time.Time),
			CreatedBy:     args[12].(string),
			LastUpdatedAt: args[13].(time.Time),
			LastUpdatedBy: args[14].(string),
		},
	}
	if md, ok := args[9].(map[string]string); ok {
		entry := t.entries[key]
		entry.Metadata = md
		t.entries[key] = entry
	}
	t.inserts++
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *ledgerTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "WHERE idempotency_key") {
		if m, ok := t.entries[args[0].(string)]; ok {
			return entryRow{m: m}
		}
		return errRow{err: pgx.ErrNoRows}
	}
	return errRow{err: pgx.ErrNoRows}
}

func (t *ledgerTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (t *ledgerTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *ledgerTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *ledgerTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *ledgerTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *ledgerTx) Conn() *pgx.Conn { return nil }

var _ pgx.Tx = (*ledgerTx)(nil)

type entryRow struct {
	m models.LedgerEntry
}

func (r entryRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.m.EntryID
	*dest[1].(*string) = r.m.DebitAccountID
	*dest[2].(*string) = r.m.CreditAccountID
	*dest[3].(*int64) = r.m.AmountCents
	*dest[4].(*string) = r.m.CurrencyCode
	*dest[5].(*string) = r.m.EntryType
	*dest[6].(*string) = r.m.ReferenceType
	*dest[7].(*string) = r.m.ReferenceID
	*dest[8].(*string) = r.m.Description
	*dest[9].(*map[string]string) = r.m.Metadata
	*dest[10].(*string) = r.m.IdempotencyKey
	*dest[11].(*time.Time) = r.m.CreatedAt
	*dest[12].(*string) = r.m.CreatedBy
	*dest[13].(*time.Time) = r.m.LastUpdatedAt
	*dest[14].(*string) = r.m.LastUpdatedBy
	return nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }

func testAccounts() *accountStore {
	ownerID := "user-1"
	return &accountStore{
		accounts: map[string]domain.LedgerAccount{
			"acct-ext": {AccountID: "acct-ext", AccountType: domain.ExternalProcessor, CurrencyCode: "USD", AllowNegative: true, IsActive: true},
			"acct-escrow": {AccountID: "acct-escrow", AccountType: domain.PlatformEscrow, CurrencyCode: "USD", IsActive: true},
			"acct-user": {AccountID: "acct-user", AccountType: domain.UserBalance, OwnerID: &ownerID, CurrencyCode: "USD", IsActive: true},
			"acct-revenue": {AccountID: "acct-revenue", AccountType: domain.PlatformRevenue, CurrencyCode: "USD", IsActive: true},
		},
		balances: map[string]int64{},
	}
}

func entryParams(debit, credit string, amount int64, key string) domain.RecordEntryParams {
	return domain.RecordEntryParams{
		DebitAccountID:  debit,
		CreditAccountID: credit,
		AmountCents:     amount,
		CurrencyCode:    "USD",
		EntryType:       domain.PaymentReceived,
		ReferenceType:   "payment_order",
		ReferenceID:     "order-1",
		IdempotencyKey:  key,
	}
}

func newEntryRepo(accounts *accountStore) portsrepo.EntryRepositoryWithTx {
	return pgsql.NewEntryRepository(nil, accounts)
}

func TestRecordEntriesInTx_LaterEntrySeesEarlierDebits(t *testing.T) {
	accounts := testAccounts()
	accounts.balances["acct-escrow"] = 10000
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	// The first debit leaves 4000 behind, not enough for the second one.
	_, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-escrow", "acct-user", 6000, "batch:1"),
		entryParams("acct-escrow", "acct-revenue", 6000, "batch:2"),
	}, "ledger_test", time.Now())

	var insufficientErr *apperrors.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "acct-escrow", insufficientErr.AccountID)
	assert.Equal(t, int64(6000), insufficientErr.RequiredCents)
	assert.Equal(t, int64(4000), insufficientErr.AvailableCents)
}

func TestRecordEntriesInTx_BatchWithinBalanceSucceeds(t *testing.T) {
	accounts := testAccounts()
	accounts.balances["acct-escrow"] = 10000
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	entries, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-escrow", "acct-user", 6000, "batch:1"),
		entryParams("acct-escrow", "acct-revenue", 4000, "batch:2"),
	}, "ledger_test", time.Now())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, tx.inserts)
}

func TestRecordEntriesInTx_CreditsExtendTheWorkingBalance(t *testing.T) {
	accounts := testAccounts()
	accounts.balances["acct-user"] = 0
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	// The user account starts empty but receives 5000 earlier in the batch.
	entries, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-ext", "acct-user", 5000, "batch:1"),
		entryParams("acct-user", "acct-revenue", 5000, "batch:2"),
	}, "ledger_test", time.Now())

	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestRecordEntriesInTx_AllowNegativeSkipsBalanceCheck(t *testing.T) {
	accounts := testAccounts()
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	// The external processor account starts at zero and goes negative.
	entries, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-ext", "acct-escrow", 10000, "capture:1"),
	}, "ledger_test", time.Now())

	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRecordEntriesInTx_ReplayReturnsStoredEntryWithoutInsert(t *testing.T) {
	accounts := testAccounts()
	accounts.balances["acct-escrow"] = 10000
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	first, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-escrow", "acct-user", 6000, "batch:1"),
	}, "ledger_test", time.Now())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, tx.inserts)

	// Replaying the same key returns the stored entry, writes nothing and
	// shifts no balances, even with a different amount in the request.
	replay, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-escrow", "acct-user", 9999, "batch:1"),
	}, "ledger_test", time.Now())

	require.NoError(t, err)
	require.Len(t, replay, 1)
	assert.Equal(t, first[0].EntryID, replay[0].EntryID)
	assert.Equal(t, int64(6000), replay[0].AmountCents)
	assert.Equal(t, 1, tx.inserts)
}

func TestRecordEntriesInTx_InsertRaceReturnsCompetingEntry(t *testing.T) {
	accounts := testAccounts()
	accounts.balances["acct-escrow"] = 10000
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	competing := models.LedgerEntry{
		EntryID:         "entry-other",
		DebitAccountID:  "acct-escrow",
		CreditAccountID: "acct-user",
		AmountCents:     6000,
		CurrencyCode:    "USD",
		EntryType:       string(domain.PaymentReceived),
		ReferenceType:   "payment_order",
		ReferenceID:     "order-1",
		IdempotencyKey:  "batch:1",
	}
	tx.racedEntries["batch:1"] = competing

	entries, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-escrow", "acct-user", 6000, "batch:1"),
	}, "ledger_test", time.Now())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry-other", entries[0].EntryID)
	assert.Equal(t, 0, tx.inserts)
}

func TestRecordEntriesInTx_UnknownAccountAbortsBeforeAnyInsert(t *testing.T) {
	accounts := testAccounts()
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	_, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-ext", "acct-escrow", 1000, "batch:1"),
		entryParams("acct-ext", "acct-missing", 1000, "batch:2"),
	}, "ledger_test", time.Now())

	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	assert.Equal(t, 0, tx.inserts)
}

func TestRecordEntriesInTx_ValidationGuards(t *testing.T) {
	tests := []struct {
		name   string
		params []domain.RecordEntryParams
	}{
		{"empty batch", nil},
		{"non-positive amount", []domain.RecordEntryParams{
			entryParams("acct-ext", "acct-escrow", 0, "batch:1"),
		}},
		{"missing idempotency key", []domain.RecordEntryParams{
			entryParams("acct-ext", "acct-escrow", 1000, ""),
		}},
		{"debit equals credit", []domain.RecordEntryParams{
			entryParams("acct-ext", "acct-ext", 1000, "batch:1"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newEntryRepo(testAccounts())
			tx := newLedgerTx()

			_, err := repo.RecordEntriesInTx(context.Background(), tx, tt.params, "ledger_test", time.Now())

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, 0, tx.inserts)
		})
	}
}

func TestRecordEntriesInTx_CurrencyMismatchRejected(t *testing.T) {
	accounts := testAccounts()
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	params := entryParams("acct-ext", "acct-escrow", 1000, "batch:1")
	params.CurrencyCode = "EUR"

	_, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{params}, "ledger_test", time.Now())

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, tx.inserts)
}

func TestRecordEntriesInTx_InactiveAccountRejected(t *testing.T) {
	accounts := testAccounts()
	frozen := accounts.accounts["acct-escrow"]
	frozen.IsActive = false
	accounts.accounts["acct-escrow"] = frozen
	repo := newEntryRepo(accounts)
	tx := newLedgerTx()

	_, err := repo.RecordEntriesInTx(context.Background(), tx, []domain.RecordEntryParams{
		entryParams("acct-ext", "acct-escrow", 1000, "batch:1"),
	}, "ledger_test", time.Now())

	assert.ErrorIs(t, err, apperrors.ErrInactiveAccount)
	assert.Equal(t, 0, tx.inserts)
}
