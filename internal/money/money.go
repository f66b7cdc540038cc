package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in the platform currency. All order and
// promotion arithmetic must go through this type; float64 is never acceptable
// for prices because binary floats cannot represent values like 3.33 exactly.
type Money struct {
	d decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// FromDecimal wraps an existing decimal value.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// FromInt returns a whole-unit amount.
func FromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// Parse converts a decimal string such as "12.50" into Money.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for literals in tests and seed data.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// MulInt returns m × n, used for quantity extension of a unit price.
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// Percent returns m × rate / 100 without any intermediate division, so the
// result stays exact (the divide-by-100 is a decimal exponent shift).
func (m Money) Percent(rate Money) Money {
	return Money{d: m.d.Mul(rate.d.Shift(-2))}
}

// Min returns the smaller of m and o.
func (m Money) Min(o Money) Money {
	if m.d.GreaterThan(o.d) {
		return o
	}
	return m
}

// Round2 rounds half-up to two decimal places, the persisted precision.
func (m Money) Round2() Money {
	return Money{d: m.d.Round(2)}
}

// Cmp compares m and o: -1 when m < o, 0 when equal, +1 when m > o.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

// LessThan reports m < o.
func (m Money) LessThan(o Money) bool {
	return m.d.LessThan(o.d)
}

// GreaterThan reports m > o.
func (m Money) GreaterThan(o Money) bool {
	return m.d.GreaterThan(o.d)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Equal reports exact numeric equality (1.5 equals 1.50).
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// StringFixed renders the amount with exactly two decimal places.
func (m Money) StringFixed() string {
	return m.d.StringFixed(2)
}

func (m Money) String() string {
	return m.d.String()
}

// MarshalJSON renders the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.d.MarshalJSON()
}

// UnmarshalJSON accepts both quoted and bare decimal literals.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.d.UnmarshalJSON(data)
}

// Value implements driver.Valuer so Money maps onto NUMERIC columns.
func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}

// Scan implements sql.Scanner for NUMERIC columns.
func (m *Money) Scan(src any) error {
	return m.d.Scan(src)
}
