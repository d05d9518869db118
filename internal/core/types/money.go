// Package types provides shared value types for the ledger.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount (storage rates, accrued charges).
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// ZeroMoney returns the zero amount.
func ZeroMoney() Money {
	return decimal.Zero
}

// MoneyFromFloat converts a float to Money.
func MoneyFromFloat(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MoneyFromString parses a Money amount from its decimal string form.
func MoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MoneyFromBags multiplies a per-bag rate by a bag count.
func MoneyFromBags(rate Money, bags int64) Money {
	return rate.Mul(decimal.NewFromInt(bags))
}
