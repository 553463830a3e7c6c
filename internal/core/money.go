// Package core provides money parsing and handling utilities.
//
// Amounts are carried as decimal.Decimal so that sums are exact; rounding
// to two fractional digits happens only when a value is parsed from user
// input or rendered for display.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for every amount.
const AmountPlaces = 2

// MaxAmount is the exclusive upper bound of an amount. The amount column is
// DECIMAL(10, 2), which leaves eight integer digits.
var MaxAmount = decimal.New(1, 8)

// ParseAmount converts a user supplied decimal string to an amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and the
// value is rounded half-up to two fractional digits. Signs, thousands
// separators and zero amounts are rejected.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("12,345")    -> 12.35
//	ParseAmount("0.004")     -> ErrInvalidAmount
//	ParseAmount("100000000") -> ErrAmountTooLarge
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, invalid("amount", ErrInvalidAmount)
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	d = d.Round(AmountPlaces)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount checks that d is strictly positive, below MaxAmount and
// has at most two fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return invalid("amount", ErrInvalidAmount)
	}
	if d.GreaterThanOrEqual(MaxAmount) {
		return invalid("amount", ErrAmountTooLarge)
	}
	if !d.Equal(d.Round(AmountPlaces)) {
		return invalid("amount", ErrInvalidAmount)
	}
	return nil
}

// FormatAmount renders d with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
