// Package money provides decimal helpers for wallet balance arithmetic.
//
// All monetary values in the ledger are signed fixed-precision decimals
// (github.com/shopspring/decimal). Raw binary floats are never used for
// balance math; equality checks go through Equal so that historical data
// imported from float-based sources still compares sanely.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used for balance equality checks.
var Epsilon = decimal.New(1, -9) // 1e-9

// Parse parses a decimal amount from its string form.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// Equal reports whether a and b are equal within Epsilon.
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// IsZero reports whether d is zero within Epsilon.
func IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}

// Sum adds up a list of decimals.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
