// Package money provides a fixed-point currency amount stored as integer
// minor units (cents). All ledger arithmetic happens on integers; decimal
// strings exist only at the API and display boundary.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// decimalPlaces is the scale of the fixed-point representation. Amounts are
// stored as cents regardless of what token eventually settles them.
const decimalPlaces = 2

// Money is a signed currency amount in minor units.
type Money int64

// Zero is the additive identity.
const Zero Money = 0

// FromMinorUnits wraps a raw minor-unit count.
func FromMinorUnits(units int64) Money {
	return Money(units)
}

// Parse converts a decimal string such as "12.34" into minor units.
// More than two fractional digits is rejected rather than silently rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scaled := d.Shift(decimalPlaces)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, decimalPlaces)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return Money(scaled.IntPart()), nil
}

// MinorUnits returns the raw integer value.
func (m Money) MinorUnits() int64 {
	return int64(m)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return m + other
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return m - other
}

// Neg returns -m.
func (m Money) Neg() Money {
	return -m
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m > 0
}

// IsZero reports whether m == 0.
func (m Money) IsZero() bool {
	return m == 0
}

// String formats m as a decimal string, e.g. "-3.05".
func (m Money) String() string {
	return decimal.New(int64(m), -decimalPlaces).StringFixed(decimalPlaces)
}

// SplitEven divides amount into n shares that sum exactly to amount.
// The first (amount mod n) shares receive one extra minor unit, so callers
// must pass recipients in a deterministic order. Panics if n <= 0; callers
// validate participant sets before splitting.
func SplitEven(amount Money, n int) []Money {
	if n <= 0 {
		panic("money: split among zero recipients")
	}
	share := int64(amount) / int64(n)
	remainder := int64(amount) % int64(n)
	shares := make([]Money, n)
	for i := range shares {
		shares[i] = Money(share)
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares
}
