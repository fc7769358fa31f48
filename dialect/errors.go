package dialect

import (
	"errors"
	"fmt"

	"github.com/huangjunwen/cdcconv/column"
)

var (
	// ErrUnsupportedLogicalTypeForDialect matches (errors.Is) any *UnsupportedError.
	ErrUnsupportedLogicalTypeForDialect = errors.New("Unsupported logical type for dialect")

	// ErrUnknownDialect is returned when parsing or marshalling an undeclared dialect.
	ErrUnknownDialect = errors.New("Unknown dialect")

	// ErrInvalidRule is returned by NewRegistry for malformed options.
	ErrInvalidRule = errors.New("Invalid dialect rule")
)

// UnsupportedError is returned when no rule is registered for a (LogicalType, Dialect) pair.
type UnsupportedError struct {
	LogicalType column.LogicalType
	Dialect     Dialect
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("logical type %s has no rendering for dialect %s", e.LogicalType, e.Dialect)
}

// Is makes errors.Is(err, ErrUnsupportedLogicalTypeForDialect) work.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedLogicalTypeForDialect
}
