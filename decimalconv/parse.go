package decimalconv

import (
	"database/sql"
	"math"
	"math/big"
	"strings"
	"unicode"

	perrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/volatiletech/null.v6"
)

// MaxExponent bounds the exponent of parsed values. Rendering a decimal in fixed-point costs
// time and memory proportional to its exponent, so "1e50000000" must not get through.
const MaxExponent = 1000

func checkExponent(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return perrors.Wrapf(ErrMalformedNumeric, "exponent %d out of range ±%d", exp, MaxExponent)
	}
	return nil
}

// Unscaled is a decimal given as an unscaled integer and a scale: Value * 10^-Scale.
type Unscaled struct {
	Value *big.Int
	Scale int32
}

// Decimal returns the decimal value of u.
func (u Unscaled) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(u.Value, -u.Scale)
}

// Encoded is a decimal in the structured event wire form: the unscaled value as big-endian
// two's complement bytes, plus the scale.
type Encoded struct {
	Bytes []byte
	Scale int32
}

// Decimal returns the decimal value of e.
func (e Encoded) Decimal() decimal.Decimal {
	v := new(big.Int).SetBytes(e.Bytes)
	if len(e.Bytes) > 0 && e.Bytes[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(e.Bytes))*8))
	}
	return decimal.NewFromBigInt(v, -e.Scale)
}

// Parse reads raw as an exact decimal. ok is false for absent values (nil, nil pointers,
// invalid sql/null wrappers). Supported inputs:
//
//   - decimal.Decimal, *decimal.Decimal, decimal.NullDecimal
//   - Unscaled, Encoded, *big.Int
//   - string and []byte decimal literals, e.g. "-92233720368547758.08"
//   - all Go integer types, finite float32/float64
//   - sql.NullString, sql.NullInt64, sql.NullFloat64
//   - null.String, null.Bytes, null.Int64, null.Float64 (gopkg.in/volatiletech/null.v6)
//
// Anything else returns an error wrapping ErrMalformedNumeric, as do values whose exponent
// lies outside ±MaxExponent.
func Parse(raw interface{}) (d decimal.Decimal, ok bool, err error) {
	d, ok, err = parse(raw)
	if err != nil || !ok {
		return d, ok, err
	}
	if err := checkExponent(d); err != nil {
		return decimal.Decimal{}, false, err
	}
	return d, true, nil
}

func parse(raw interface{}) (d decimal.Decimal, ok bool, err error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Decimal{}, false, nil

	case decimal.Decimal:
		return v, true, nil

	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, false, nil
		}
		return *v, true, nil

	case decimal.NullDecimal:
		return v.Decimal, v.Valid, nil

	case Unscaled:
		if v.Value == nil {
			return decimal.Decimal{}, false, perrors.Wrap(ErrMalformedNumeric, "Unscaled with nil Value")
		}
		return v.Decimal(), true, nil

	case Encoded:
		if len(v.Bytes) == 0 {
			return decimal.Decimal{}, false, perrors.Wrap(ErrMalformedNumeric, "Encoded with no bytes")
		}
		return v.Decimal(), true, nil

	case *big.Int:
		if v == nil {
			return decimal.Decimal{}, false, nil
		}
		return decimal.NewFromBigInt(v, 0), true, nil

	case string:
		return parseLiteral(v)

	case []byte:
		if v == nil {
			return decimal.Decimal{}, false, nil
		}
		return parseLiteral(string(v))

	case int:
		return decimal.NewFromInt(int64(v)), true, nil
	case int8:
		return decimal.NewFromInt(int64(v)), true, nil
	case int16:
		return decimal.NewFromInt(int64(v)), true, nil
	case int32:
		return decimal.NewFromInt(int64(v)), true, nil
	case int64:
		return decimal.NewFromInt(v), true, nil
	case uint:
		return fromUint64(uint64(v)), true, nil
	case uint8:
		return fromUint64(uint64(v)), true, nil
	case uint16:
		return fromUint64(uint64(v)), true, nil
	case uint32:
		return fromUint64(uint64(v)), true, nil
	case uint64:
		return fromUint64(v), true, nil

	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Decimal{}, false, perrors.Wrapf(ErrMalformedNumeric, "non-finite float32 %v", v)
		}
		return decimal.NewFromFloat32(v), true, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false, perrors.Wrapf(ErrMalformedNumeric, "non-finite float64 %v", v)
		}
		return decimal.NewFromFloat(v), true, nil

	case sql.NullString:
		if !v.Valid {
			return decimal.Decimal{}, false, nil
		}
		return parseLiteral(v.String)
	case sql.NullInt64:
		if !v.Valid {
			return decimal.Decimal{}, false, nil
		}
		return decimal.NewFromInt(v.Int64), true, nil
	case sql.NullFloat64:
		if !v.Valid {
			return decimal.Decimal{}, false, nil
		}
		return parse(v.Float64)

	case null.String:
		if !v.Valid {
			return decimal.Decimal{}, false, nil
		}
		return parseLiteral(v.String)
	case null.Bytes:
		if !v.Valid {
			return decimal.Decimal{}, false, nil
		}
		return parseLiteral(string(v.Bytes))
	case null.Int64:
		if !v.Valid {
			return decimal.Decimal{}, false, nil
		}
		return decimal.NewFromInt(v.Int64), true, nil
	case null.Float64:
		if !v.Valid {
			return decimal.Decimal{}, false, nil
		}
		return parse(v.Float64)
	}

	return decimal.Decimal{}, false, perrors.Wrapf(ErrMalformedNumeric, "unsupported type %T", raw)
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func parseLiteral(s string) (decimal.Decimal, bool, error) {
	lit := strings.TrimSpace(s)
	if lit == "" {
		return decimal.Decimal{}, false, perrors.Wrap(ErrMalformedNumeric, "empty literal")
	}
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Decimal{}, false, perrors.Wrapf(ErrMalformedNumeric, "literal %q: %s", s, err)
	}
	return d, true, nil
}

// ParseMoney parses a monetary literal as printed by PostgreSQL under a '.' decimal point
// locale, e.g. "$1,000.00", "-$92,233,720,368,547,758.08" or "($5.25)". Currency symbols and
// ',' group separators are dropped; plain decimal literals are accepted as well.
func ParseMoney(s string) (decimal.Decimal, error) {
	lit := strings.TrimSpace(s)
	if lit == "" {
		return decimal.Decimal{}, perrors.Wrap(ErrMalformedNumeric, "empty money literal")
	}

	negative := false
	if strings.HasPrefix(lit, "(") && strings.HasSuffix(lit, ")") {
		negative = true
		lit = lit[1 : len(lit)-1]
	}

	b := &strings.Builder{}
	seenDigit := false
	for _, r := range lit {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == ',' && seenDigit:
		case r == '-' && !seenDigit && !negative:
			negative = true
		case unicode.Is(unicode.Sc, r) || unicode.IsSpace(r):
		default:
			return decimal.Decimal{}, perrors.Wrapf(ErrMalformedNumeric, "money literal %q", s)
		}
	}
	if !seenDigit {
		return decimal.Decimal{}, perrors.Wrapf(ErrMalformedNumeric, "money literal %q", s)
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Decimal{}, perrors.Wrapf(ErrMalformedNumeric, "money literal %q: %s", s, err)
	}
	if err := checkExponent(d); err != nil {
		return decimal.Decimal{}, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
