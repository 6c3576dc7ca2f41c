package domain

// ConnectedAccount links a platform user to their account at the payment
// processor. Payouts can only be released to accounts the processor has
// fully onboarded.
type ConnectedAccount struct {
	UserID             string `json:"userID"` // Primary Key
	ProcessorAccountID string `json:"processorAccountID"`
	PayoutsEnabled     bool   `json:"payoutsEnabled"`
	AuditFields
}

// IsReadyForPayouts reports whether the processor will accept transfers to
// this account.
func (a *ConnectedAccount) IsReadyForPayouts() bool {
	return a.PayoutsEnabled
}
