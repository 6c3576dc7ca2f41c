package domain

// AccountType defines the role of a ledger account in the payment flows.
type AccountType string

const (
	UserBalance       AccountType = "USER_BALANCE"
	PlatformEscrow    AccountType = "PLATFORM_ESCROW"
	PlatformRevenue   AccountType = "PLATFORM_REVENUE"
	ExternalProcessor AccountType = "EXTERNAL_PROCESSOR"
)

// LedgerAccount represents a balance-bearing account in the double-entry ledger.
// The balance is never stored; it is always derived from the entries that
// reference the account.
type LedgerAccount struct {
	AccountID     string      `json:"accountID"`     // Primary Key (UUID)
	AccountType   AccountType `json:"accountType"`   // USER_BALANCE, PLATFORM_ESCROW, etc.
	OwnerID       *string     `json:"ownerID"`       // Nullable; platform accounts have no owner
	CurrencyCode  string      `json:"currencyCode"`  // ISO 4217 code (Not Null)
	AllowNegative bool        `json:"allowNegative"` // Only the external processor account may go negative
	IsActive      bool        `json:"isActive"`      // Soft deactivation flag
	AuditFields
}
