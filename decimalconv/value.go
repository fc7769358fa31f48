package decimalconv

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the tag of a Value. Apart from Null, it is determined by the HandlingMode only.
type Kind int

const (
	Null Kind = iota
	ExactDecimal
	Text
	Approximate
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case ExactDecimal:
		return "exact_decimal"
	case Text:
		return "text"
	case Approximate:
		return "approximate"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a converted decimal value.
type Value struct {
	kind    Kind
	decimal decimal.Decimal
	text    string
	float   float64
}

var (
	_ driver.Valuer  = Value{}
	_ json.Marshaler = Value{}
)

// NullValue is the converted form of an absent value.
var NullValue = Value{}

// Kind returns the tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NullValue.
func (v Value) IsNull() bool { return v.kind == Null }

// Decimal returns the exact value, ok is false unless Kind is ExactDecimal.
func (v Value) Decimal() (d decimal.Decimal, ok bool) {
	return v.decimal, v.kind == ExactDecimal
}

// Text returns the fixed-point text, ok is false unless Kind is Text.
func (v Value) Text() (s string, ok bool) {
	return v.text, v.kind == Text
}

// Float64 returns the approximate value, ok is false unless Kind is Approximate.
func (v Value) Float64() (f float64, ok bool) {
	return v.float, v.kind == Approximate
}

// Scale returns the number of fractional digits of an ExactDecimal.
// It is negative for values like 1E+3 whose exponent is positive.
func (v Value) Scale() int32 {
	return -v.decimal.Exponent()
}

// Interface returns nil, decimal.Decimal, string or float64 according to Kind.
func (v Value) Interface() interface{} {
	switch v.kind {
	case ExactDecimal:
		return v.decimal
	case Text:
		return v.text
	case Approximate:
		return v.float
	}
	return nil
}

// Value implements driver.Valuer. Exact decimals are bound as fixed-point text which every
// destination driver parses without going through float64.
func (v Value) Value() (driver.Value, error) {
	switch v.kind {
	case ExactDecimal:
		return FormatFixed(v.decimal), nil
	case Text:
		return v.text, nil
	case Approximate:
		return v.float, nil
	}
	return nil, nil
}

// MarshalJSON implements json.Marshaler. Exact decimals are written as JSON numbers with
// all their digits.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ExactDecimal:
		return []byte(FormatFixed(v.decimal)), nil
	case Text:
		return json.Marshal(v.text)
	case Approximate:
		return json.Marshal(v.float)
	}
	return []byte("null"), nil
}

func (v Value) String() string {
	switch v.kind {
	case ExactDecimal:
		return FormatFixed(v.decimal)
	case Text:
		return fmt.Sprintf("%q", v.text)
	case Approximate:
		return fmt.Sprintf("~%g", v.float)
	}
	return "null"
}
