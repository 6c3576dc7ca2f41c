package models

// ConnectedAccount mirrors the connected_accounts table.
type ConnectedAccount struct {
	UserID             string `db:"user_id"`
	ProcessorAccountID string `db:"processor_account_id"`
	PayoutsEnabled     bool   `db:"payouts_enabled"`
	AuditFields
}
