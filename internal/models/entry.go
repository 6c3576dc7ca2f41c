package models

// LedgerEntry mirrors the ledger_entries table. Rows are append-only.
type LedgerEntry struct {
	EntryID         string            `db:"entry_id"`
	DebitAccountID  string            `db:"debit_account_id"`
	CreditAccountID string            `db:"credit_account_id"`
	AmountCents     int64             `db:"amount_cents"`
	CurrencyCode    string            `db:"currency_code"`
	EntryType       string            `db:"entry_type"`
	ReferenceType   string            `db:"reference_type"`
	ReferenceID     string            `db:"reference_id"`
	Description     string            `db:"description"`
	Metadata        map[string]string `db:"metadata"` // jsonb
	IdempotencyKey  string            `db:"idempotency_key"`
	AuditFields
}
