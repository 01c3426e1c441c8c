package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseHours parses a decimal hour amount such as "7.5".
func ParseHours(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, Validationf("invalid hours %q", s)
	}
	return d, nil
}

// HoursOrZero returns the value of a nullable hour amount, or zero.
func HoursOrZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// SomeHours wraps d as a present nullable hour amount.
func SomeHours(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// CoalesceHours returns the first present value, or zero.
func CoalesceHours(vals ...decimal.NullDecimal) decimal.Decimal {
	for _, v := range vals {
		if v.Valid {
			return v.Decimal
		}
	}
	return decimal.Zero
}
