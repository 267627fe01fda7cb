// Package pricing does the money and stock-quantity arithmetic in exact
// decimal. Money is rounded to cents, quantities to QuantityPlaces.
package pricing

import "github.com/shopspring/decimal"

const cents = 2

// QuantityPlaces is the scale of every stored quantity, matching the
// numeric(12,3) columns.
const QuantityPlaces = 3

// Quantity rounds q half-away-from-zero to QuantityPlaces.
func Quantity(q float64) float64 {
	return decimal.NewFromFloat(q).Round(QuantityPlaces).InexactFloat64()
}

// AddQuantity is a+b at the quantity scale, so 0.1+0.2 is exactly 0.3.
func AddQuantity(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(QuantityPlaces).InexactFloat64()
}

// LineTotal is unitPrice * quantity rounded half-away-from-zero to cents.
func LineTotal(unitPrice, quantity float64) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromFloat(quantity)).
		Round(cents).
		InexactFloat64()
}

// Sum adds already-rounded line totals without float drift.
func Sum(lines ...float64) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l))
	}
	return total.Round(cents).InexactFloat64()
}

// Accumulator sums line totals as lines are produced.
type Accumulator struct {
	total decimal.Decimal
}

func (a *Accumulator) Add(line float64) {
	a.total = a.total.Add(decimal.NewFromFloat(line))
}

func (a *Accumulator) Total() float64 {
	return a.total.Round(cents).InexactFloat64()
}
