package domain

// EntryType classifies the business meaning of a ledger entry.
type EntryType string

const (
	PaymentReceived EntryType = "PAYMENT_RECEIVED"
	PaymentReleased EntryType = "PAYMENT_RELEASED"
	FeeCollected    EntryType = "FEE_COLLECTED"
	Payout          EntryType = "PAYOUT"
	Refund          EntryType = "REFUND"
	Adjustment      EntryType = "ADJUSTMENT"
	Transfer        EntryType = "TRANSFER"
)

// LedgerEntry is an immutable double-entry record: it debits exactly one
// account and credits exactly one account for the same positive amount.
// Entries are never updated or deleted once written.
type LedgerEntry struct {
	EntryID         string            `json:"entryID"`        // Primary Key (UUID)
	DebitAccountID  string            `json:"debitAccountID"` // FK -> ledger_accounts
	CreditAccountID string            `json:"creditAccountID"`
	AmountCents     int64             `json:"amountCents"` // Always > 0, minor units
	CurrencyCode    string            `json:"currencyCode"`
	EntryType       EntryType         `json:"entryType"`
	ReferenceType   string            `json:"referenceType"` // e.g. "payment_order"
	ReferenceID     string            `json:"referenceID"`
	Description     string            `json:"description"`
	Metadata        map[string]string `json:"metadata"`
	IdempotencyKey  string            `json:"idempotencyKey"` // Unique across all entries
	AuditFields
}

// RecordEntryParams carries everything needed to post one ledger entry.
type RecordEntryParams struct {
	DebitAccountID  string
	CreditAccountID string
	AmountCents     int64
	CurrencyCode    string
	EntryType       EntryType
	ReferenceType   string
	ReferenceID     string
	Description     string
	Metadata        map[string]string
	IdempotencyKey  string
}
