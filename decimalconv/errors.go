package decimalconv

import (
	"errors"
)

var (
	// ErrMalformedNumeric is returned when a value can't be read as (sign, unscaled magnitude, scale).
	ErrMalformedNumeric = errors.New("Malformed numeric input")

	// ErrInvalidHandlingMode is returned for unknown handling modes.
	ErrInvalidHandlingMode = errors.New("Invalid decimal handling mode")
)
