package pipeline

import (
	"errors"
	"fmt"

	"github.com/huangjunwen/cdcconv/column"
	"github.com/huangjunwen/cdcconv/decimalconv"
	"github.com/huangjunwen/cdcconv/dialect"
)

var (
	// ErrInvalidConfig is returned for bad configuration.
	ErrInvalidConfig = errors.New("Invalid pipeline config")

	// ErrInvalidTable is returned by Map for malformed tables.
	ErrInvalidTable = errors.New("Invalid table")

	// ErrUnknownColumn is returned when a row carries a column the mapping doesn't know.
	ErrUnknownColumn = errors.New("Unknown column")

	// ErrMalformedVector is returned for vector values that are neither float slices nor text.
	ErrMalformedVector = errors.New("Malformed vector value")
)

// SchemaError is returned when a column can't be mapped to the destination. No rows of the
// table must be written.
type SchemaError struct {
	Table       string
	Column      string
	LogicalType column.LogicalType
	Dialect     dialect.Dialect
	Err         error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("map %s.%s (%s) to %s: %v", e.Table, e.Column, e.LogicalType, e.Dialect, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ConversionError is returned when a row value can't be converted. The row must not be
// emitted.
type ConversionError struct {
	Table       string
	Column      string
	LogicalType column.LogicalType
	Mode        decimalconv.HandlingMode
	Err         error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s.%s (%s, %s mode): %v", e.Table, e.Column, e.LogicalType, e.Mode, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
