package models

// AccountType defines the role of a ledger account.
type AccountType string

const (
	UserBalance       AccountType = "USER_BALANCE"
	PlatformEscrow    AccountType = "PLATFORM_ESCROW"
	PlatformRevenue   AccountType = "PLATFORM_REVENUE"
	ExternalProcessor AccountType = "EXTERNAL_PROCESSOR"
)

// LedgerAccount mirrors the ledger_accounts table. Balances are derived from
// entries and never stored here.
type LedgerAccount struct {
	AccountID     string      `db:"account_id"`
	AccountType   AccountType `db:"account_type"`
	OwnerID       *string     `db:"owner_id"` // Nullable for platform accounts
	CurrencyCode  string      `db:"currency_code"`
	AllowNegative bool        `db:"allow_negative"`
	IsActive      bool        `db:"is_active"`
	AuditFields
}
