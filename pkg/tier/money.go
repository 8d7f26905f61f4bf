package tier

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money represents a monetary amount in the smallest currency unit.
// For example, EUR 19.90 is Amount: 1990, Currency: "EUR". Prices are
// user-facing and contractual, so they are carried as integer minor units
// end to end and only converted to decimals at the formatting boundary.
type Money struct {
	Amount   int64  `json:"amount" yaml:"amount"`
	Currency string `json:"currency" yaml:"currency"`
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Units returns the amount as decimal currency units (e.g. 1990 -> 19.90).
func (m Money) Units() float64 {
	return float64(m.Amount) / 100
}

// String renders the amount with its currency symbol using CLDR data.
// Falls back to "<amount> <code>" when the currency code is not ISO 4217.
func (m Money) String() string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return fmt.Sprintf("%.2f %s", m.Units(), m.Currency)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(m.Units())))
}
