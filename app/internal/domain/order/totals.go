package order

import "github.com/shopspring/decimal"

// TaxRate is the fixed IVA applied to every order.
var TaxRate = decimal.RequireFromString("0.16")

// Totals carries exact decimal amounts. Rounding happens only in Display.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func ComputeTotals(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

type DisplayTotals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal: t.Subtotal.StringFixed(2),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}
