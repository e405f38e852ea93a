package solcgt

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// audCode is the only reporting currency the engine works in. FX conversion
// of USD hints happens before a value ever becomes Money.
const audCode = "AUD"

// Money is an exact AUD amount.
type Money struct {
	value decimal.Decimal
}

func AUD[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | string | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// String formats the amount with the AUD currency formatter.
func (m Money) String() string {
	cur := money.GetCurrency(audCode)
	shifted := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(shifted.IntPart())
}

func (m Money) Equal(n Money) bool           { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                 { return m.value.IsZero() }
func (m Money) IsPositive() bool             { return m.value.IsPositive() }
func (m Money) IsNegative() bool             { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool        { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool     { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money            { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money            { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money         { return Money{value: m.value.Mul(q.value)} }
func (m Money) Div(q Quantity) Money         { return Money{value: m.value.Div(q.value)} }
func (m Money) Decimal() decimal.Decimal     { return m.value }
func (m Money) InexactFloat64() float64      { return m.value.InexactFloat64() }

// Round quantizes to whole cents. Applied whenever a derived AUD figure is
// recorded, mirroring the fee-proration exactness rule.
func (m Money) Round() Money {
	cur := money.GetCurrency(audCode)
	return Money{value: m.value.Round(int32(cur.Fraction))}
}

// SignedString renders the amount with an explicit sign, "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) MarshalJSON() ([]byte, error) { return m.value.MarshalJSON() }
func (m *Money) UnmarshalJSON(b []byte) error {
	return m.value.UnmarshalJSON(b)
}
