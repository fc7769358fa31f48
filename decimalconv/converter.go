// Package decimalconv converts arbitrary precision decimal values according to a HandlingMode.
//
// Values are carried as github.com/shopspring/decimal (a big.Int coefficient plus an int32
// exponent), never float64, until Double mode asks for one. All functions are pure and safe
// for concurrent use.
package decimalconv

import (
	"math"

	perrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Convert parses raw (see Parse) and converts it according to mode.
// A nil/absent raw value converts to NullValue in every mode.
func Convert(raw interface{}, mode HandlingMode) (Value, error) {
	if !mode.Valid() {
		return Value{}, perrors.WithStack(ErrInvalidHandlingMode)
	}
	d, ok, err := Parse(raw)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return NullValue, nil
	}
	return ConvertDecimal(d, mode), nil
}

// ConvertDecimal converts an exact decimal. mode must be valid.
//
//   - Precise returns d untouched (sign, coefficient and exponent).
//   - String returns FormatFixed(d).
//   - Double returns the nearest float64. Magnitudes beyond the float64 range are clamped to
//     ±math.MaxFloat64: the sign is kept and the result is never infinite.
func ConvertDecimal(d decimal.Decimal, mode HandlingMode) Value {
	switch mode {
	case String:
		return Value{kind: Text, text: FormatFixed(d)}
	case Double:
		return Value{kind: Approximate, float: toFloat64(d)}
	}
	return Value{kind: ExactDecimal, decimal: d}
}

// Zero returns zero at the given scale converted according to mode,
// e.g. "0.00" in String mode for scale 2.
func Zero(scale int32, mode HandlingMode) Value {
	return ConvertDecimal(decimal.New(0, -scale), mode)
}

// FormatFixed renders d in fixed-point notation keeping its scale: no exponent, no grouping,
// a single leading '-' for negative values. Trailing zeros are significant and kept.
func FormatFixed(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.StringFixed(0)
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	switch {
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}
