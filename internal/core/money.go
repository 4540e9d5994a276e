// Package core provides money parsing and handling utilities.
//
// This file contains the Money value type backed by an exact decimal and the
// parser used for amounts typed by the user.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative exact decimal amount. The sign of a transaction is
// implied by its type and never stored.
type Money struct {
	value decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{value: d}
}

// MoneyFromInt builds a whole-unit amount.
func MoneyFromInt(units int64) Money {
	return Money{value: decimal.NewFromInt(units)}
}

// ParseAmount converts user input to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Empty
// input, malformed numbers and negative values are rejected with
// ErrInvalidAmount; zero is a valid amount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> 0, nil
//	ParseAmount("-1")    -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: negative value %q", ErrInvalidAmount, s)
	}
	return Money{value: d}, nil
}

// Bounds on the decimal magnitude (integer digits plus exponent) of an
// amount: the float64 range.
const (
	maxAmountMagnitude = 309
	minAmountMagnitude = -324
)

// ParseDecimal parses a plain or exponent-form number. Numbers too large
// for a float64 are ErrInvalidAmount and numbers too small for one are
// zero, so no accepted value expands to more than a few hundred digits.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	switch {
	case magnitude > maxAmountMagnitude:
		return decimal.Zero, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	case magnitude < minAmountMagnitude:
		return decimal.Zero, nil
	}
	return d, nil
}

func (m Money) Validate() error {
	if m.value.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Decimal() decimal.Decimal {
	return m.value
}

func (m Money) Add(o Money) Money {
	return Money{value: m.value.Add(o.value)}
}

func (m Money) Sub(o Money) Money {
	return Money{value: m.value.Sub(o.value)}
}

func (m Money) Abs() Money {
	return Money{value: m.value.Abs()}
}

func (m Money) Neg() Money {
	return Money{value: m.value.Neg()}
}

func (m Money) Equal(o Money) bool {
	return m.value.Equal(o.value)
}

func (m Money) IsZero() bool {
	return m.value.IsZero()
}

func (m Money) IsNegative() bool {
	return m.value.IsNegative()
}

// Float64 returns the value for display and charting only; arithmetic stays
// on the decimal.
func (m Money) Float64() float64 {
	f, _ := m.value.Float64()
	return f
}

func (m Money) String() string {
	return m.value.String()
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
		}
		data = []byte(strings.TrimSpace(s))
	}
	d, err := ParseDecimal(string(data))
	if err != nil {
		return err
	}
	*m = Money{value: d}
	return nil
}
