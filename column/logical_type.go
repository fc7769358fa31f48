package column

import (
	"errors"
	"fmt"
	"strings"

	perrors "github.com/pkg/errors"
)

var (
	// ErrUnknownLogicalType is returned when parsing or marshalling an undeclared logical type.
	ErrUnknownLogicalType = errors.New("Unknown logical type")
)

// LogicalType is the dialect independent classification of a column.
type LogicalType int

const (
	Boolean LogicalType = iota + 1
	Int16
	Int32
	Int64
	Float32
	Float64
	Text
	Bytes
	Date
	Timestamp
	FixedDecimal
	Money
	FloatVector
	DoubleVector
)

const (
	// DefaultVectorSize is the largest vector dimensionality MySQL allows. Vector columns
	// without a declared size use it so that no source vector is rejected downstream.
	DefaultVectorSize = 16383

	// DefaultDecimalPrecision is MySQL's maximum DECIMAL precision.
	DefaultDecimalPrecision = 65

	// DefaultMoneyPrecision covers PostgreSQL money (-92233720368547758.08 ~ +92233720368547758.07)
	// at DefaultMoneyScale.
	DefaultMoneyPrecision = 19

	// DefaultMoneyScale is the fractional digits of PostgreSQL money under the C locale.
	DefaultMoneyScale = 2

	// DefaultTimestampPrecision is microsecond precision.
	DefaultTimestampPrecision = 6
)

var logicalTypeNames = map[LogicalType]string{
	Boolean:      "boolean",
	Int16:        "int16",
	Int32:        "int32",
	Int64:        "int64",
	Float32:      "float32",
	Float64:      "float64",
	Text:         "text",
	Bytes:        "bytes",
	Date:         "date",
	Timestamp:    "timestamp",
	FixedDecimal: "fixed_decimal",
	Money:        "money",
	FloatVector:  "float_vector",
	DoubleVector: "double_vector",
}

// LogicalTypes returns all known logical types in declaration order.
func LogicalTypes() []LogicalType {
	ret := make([]LogicalType, 0, len(logicalTypeNames))
	for lt := Boolean; lt <= DoubleVector; lt++ {
		ret = append(ret, lt)
	}
	return ret
}

// ParseLogicalType parses the name returned by LogicalType.String.
func ParseLogicalType(s string) (LogicalType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for lt, name := range logicalTypeNames {
		if name == s {
			return lt, nil
		}
	}
	return 0, perrors.Wrapf(ErrUnknownLogicalType, "%q", s)
}

// Valid reports whether lt is one of the declared logical types.
func (lt LogicalType) Valid() bool {
	_, ok := logicalTypeNames[lt]
	return ok
}

func (lt LogicalType) String() string {
	if name, ok := logicalTypeNames[lt]; ok {
		return name
	}
	return fmt.Sprintf("LogicalType(%d)", int(lt))
}

// MarshalText implements encoding.TextMarshaler.
func (lt LogicalType) MarshalText() ([]byte, error) {
	if !lt.Valid() {
		return nil, perrors.Wrapf(ErrUnknownLogicalType, "%d", int(lt))
	}
	return []byte(lt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (lt *LogicalType) UnmarshalText(text []byte) error {
	v, err := ParseLogicalType(string(text))
	if err != nil {
		return err
	}
	*lt = v
	return nil
}

// DefaultSize returns the size used when a column does not declare one.
// ok is false for types that are not parameterized by size.
func (lt LogicalType) DefaultSize() (size int, ok bool) {
	switch lt {
	case FloatVector, DoubleVector:
		return DefaultVectorSize, true
	case FixedDecimal:
		return DefaultDecimalPrecision, true
	case Money:
		return DefaultMoneyPrecision, true
	case Timestamp:
		return DefaultTimestampPrecision, true
	}
	return 0, false
}

// DefaultScale returns the scale used when a decimal column does not declare one.
func (lt LogicalType) DefaultScale() (scale int, ok bool) {
	switch lt {
	case FixedDecimal:
		return 0, true
	case Money:
		return DefaultMoneyScale, true
	}
	return 0, false
}

// IsDecimal reports whether values of lt carry decimal semantics.
func (lt LogicalType) IsDecimal() bool {
	return lt == FixedDecimal || lt == Money
}

// IsVector reports whether lt is a vector type.
func (lt LogicalType) IsVector() bool {
	return lt == FloatVector || lt == DoubleVector
}
