package domain

// PayoutState is the processor-side state of a payout to a recipient.
type PayoutState string

const (
	PayoutPending    PayoutState = "PENDING"
	PayoutProcessing PayoutState = "PROCESSING"
	PayoutPaid       PayoutState = "PAID"
	PayoutFailed     PayoutState = "FAILED"
)

// PayoutRecord tracks money owed to a recipient after an escrow release.
// The ledger entry that credits the recipient balance is the source of truth;
// the payout mirrors the transfer out to the recipient's bank.
type PayoutRecord struct {
	PayoutID           string            `json:"payoutID"` // Primary Key (UUID)
	PaymentOrderID     string            `json:"paymentOrderID"`
	ConnectedAccountID string            `json:"connectedAccountID"` // Processor-side account
	AmountCents        int64             `json:"amountCents"`
	CurrencyCode       string            `json:"currencyCode"`
	State              PayoutState       `json:"state"`
	Metadata           map[string]string `json:"metadata"`
	AuditFields
}
