package accounting

// CalculateFeeCents computes the platform fee for a gross amount using
// integer floor division, so the fee never rounds up against the recipient.
func CalculateFeeCents(amountCents int64, feePercent int64) int64 {
	return amountCents * feePercent / 100
}

// SplitAmount returns the recipient share and the platform fee for a gross
// amount. The two always sum back to the gross amount.
func SplitAmount(amountCents int64, feePercent int64) (recipientCents, feeCents int64) {
	feeCents = CalculateFeeCents(amountCents, feePercent)
	return amountCents - feeCents, feeCents
}
