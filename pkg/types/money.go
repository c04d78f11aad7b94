package types

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount that always renders with two fractional digits as a
// JSON number. It scans from NUMERIC, REAL, INTEGER or TEXT columns.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MustMoney parses s and panics on malformed input. Intended for constants and tests.
func MustMoney(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

// String keeps the two-digit rendering used on the wire.
func (m Money) String() string {
	return m.StringFixed(2)
}
