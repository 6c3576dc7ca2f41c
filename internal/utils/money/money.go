package money

import "github.com/shopspring/decimal"

// minorUnitDigits maps ISO 4217 codes to the number of minor unit digits.
// Currencies not listed use two digits.
var minorUnitDigits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"TND": 3,
}

// digitsFor returns the minor unit digits for a currency code.
func digitsFor(currencyCode string) int32 {
	if d, ok := minorUnitDigits[currencyCode]; ok {
		return d
	}
	return 2
}

// FormatCents renders an amount in minor units as a display string.
// Example: 12345 with USD returns "123.45"; 12345 with JPY returns "12345".
func FormatCents(amountCents int64, currencyCode string) string {
	digits := digitsFor(currencyCode)
	return decimal.New(amountCents, -digits).StringFixed(digits)
}
