package decimalconv

import (
	"fmt"
	"strings"

	perrors "github.com/pkg/errors"
)

// HandlingMode selects how decimal values are represented downstream.
// It is fixed for the life of a connector instance.
type HandlingMode int

const (
	// Precise keeps the exact decimal value. This is the default (zero value).
	Precise HandlingMode = iota

	// String renders the exact value as fixed-point text.
	String

	// Double converts to the nearest float64, precision beyond ~17 significant digits is lost.
	Double
)

var handlingModeNames = map[HandlingMode]string{
	Precise: "precise",
	String:  "string",
	Double:  "double",
}

// ParseHandlingMode parses "precise", "string" or "double" (case-insensitive).
// An empty string means Precise.
func ParseHandlingMode(s string) (HandlingMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Precise, nil
	}
	for mode, name := range handlingModeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, perrors.Wrapf(ErrInvalidHandlingMode, "%q", s)
}

// Valid reports whether mode is one of the declared modes.
func (mode HandlingMode) Valid() bool {
	_, ok := handlingModeNames[mode]
	return ok
}

func (mode HandlingMode) String() string {
	if name, ok := handlingModeNames[mode]; ok {
		return name
	}
	return fmt.Sprintf("HandlingMode(%d)", int(mode))
}

// MarshalText implements encoding.TextMarshaler.
func (mode HandlingMode) MarshalText() ([]byte, error) {
	if !mode.Valid() {
		return nil, perrors.Wrapf(ErrInvalidHandlingMode, "%d", int(mode))
	}
	return []byte(mode.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (mode *HandlingMode) UnmarshalText(text []byte) error {
	v, err := ParseHandlingMode(string(text))
	if err != nil {
		return err
	}
	*mode = v
	return nil
}
