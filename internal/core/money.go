// Package core provides the budgeting domain types and amount parsing.
//
// Amounts are decimal values (github.com/shopspring/decimal); balances may
// go negative, which is advisory rather than an error.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a non-negative decimal amount. It accepts both dot
// (12.34) and comma (12,34) decimal separators.
//
// Examples:
//
//	ParseAmount("50")    -> 50, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSignedAmount parses a quick-entry amount, which is expected to be a
// subtraction: zero or negative. Positive values are rejected.
func ParseSignedAmount(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders d as a dollar string with two decimals, e.g.
// "$12.50" or "$-33.50" for a negative balance.
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
