package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid money amount")
)

// Storage limits: NUMERIC(10,2), so 8 integer digits and 2 decimal places.
const (
	maxIntegerDigits = 8
	maxScale         = 2
)

// Parse converts a user-entered decimal string (like "12.34") into an exact
// decimal amount. Amounts must be positive and carry at most two decimal places;
// totals are financial and user-facing, so no binary floats anywhere.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if d.Exponent() < -maxScale {
		return decimal.Zero, fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, maxScale)
	}
	if len(d.Truncate(0).String()) > maxIntegerDigits {
		return decimal.Zero, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return d, nil
}

// Format renders an amount with exactly two decimal places ("80" -> "80.00").
func Format(d decimal.Decimal) string {
	return d.StringFixed(maxScale)
}
