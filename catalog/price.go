package catalog

import (
	"github.com/shopspring/decimal"
)

type Currency struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Price struct {
	// Amount is in hundredths of the currency unit, as sent by the API.
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
	// Text is the formatted price for display.
	Text string `json:"text"`
}

// Units returns the amount in whole currency units.
func (p Price) Units() decimal.Decimal {
	return p.Amount.Shift(-2)
}
