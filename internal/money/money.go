// Package money sums prices exactly before handing back float64 amounts.
package money

import "github.com/shopspring/decimal"

// Total returns Σ price(x) × quantity(x) over items.
func Total[T any](items []T, price func(T) float64, quantity func(T) int) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(price(it)).Mul(decimal.NewFromInt(int64(quantity(it)))))
	}
	return sum.InexactFloat64()
}

// Sum adds amounts exactly.
func Sum(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return sum.InexactFloat64()
}
