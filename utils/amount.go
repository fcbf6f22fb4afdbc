package utils

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAmountOutOfRange  = errors.New("amount out of range")
	maxMinorUnits        = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits        = decimal.NewFromInt(math.MinInt64)
	minorUnitsPerDecimal = decimal.NewFromInt(100)
)

// ParseAmount coerces a form value into a decimal amount.
// A blank value coerces to zero, like an empty numeric input.
// Accepts user-formatted strings like "1,250.50" or "$ 19.99".
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", "")

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if neg {
		s = "-" + s
	}

	val, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return val, nil
}

// ToMinorUnits converts an amount to cents, rounding half away from zero.
// Cents that do not fit in an int64 column return ErrAmountOutOfRange.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(minorUnitsPerDecimal).Round(0)
	if cents.GreaterThan(maxMinorUnits) || cents.LessThan(minMinorUnits) {
		return 0, ErrAmountOutOfRange
	}
	return cents.IntPart(), nil
}
