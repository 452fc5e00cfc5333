// Package core provides money handling utilities.
//
// Amounts are fixed-point decimals matching the DECIMAL(10, 2) columns of the
// ledger. Floats are never used so repeated runs cannot drift.
package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits stored per amount.
const AmountScale = 2

var (
	ErrAmountTooLarge = errors.New("amount exceeds DECIMAL(10, 2)")
	ErrAmountScale    = errors.New("amount has more than two decimal places")

	maxAmount = decimal.New(1, 8) // 10 digits, 2 of them fractional
)

// ValidateAmount checks that d fits the ledger column. Zero and negative
// amounts (free trials, recurring credits) are valid.
func ValidateAmount(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(AmountScale)) {
		return ErrAmountScale
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// FormatAmount renders d with exactly two decimals for logs and messages.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}
