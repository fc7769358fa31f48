// Package column describes source columns independent of any SQL dialect.
package column

import (
	"errors"
	"fmt"
	"strings"

	perrors "github.com/pkg/errors"
)

var (
	// ErrInvalidDescriptor is returned when a Descriptor can't be built from the given options.
	ErrInvalidDescriptor = errors.New("Invalid column descriptor")
)

// Descriptor is the immutable description of a source column.
type Descriptor struct {
	name        string
	logicalType LogicalType
	size        int // 0 means absent
	scale       int
	hasScale    bool
	nullable    bool
	sourceType  string
}

// Option is the option in creating Descriptor.
type Option func(*Descriptor) error

// Size sets the declared size (length, precision or dimensionality). n >= 1.
func Size(n int) Option {
	return func(d *Descriptor) error {
		if n < 1 {
			return perrors.Wrapf(ErrInvalidDescriptor, "size %d < 1", n)
		}
		d.size = n
		return nil
	}
}

// Scale sets the declared scale. n >= 0.
func Scale(n int) Option {
	return func(d *Descriptor) error {
		if n < 0 {
			return perrors.Wrapf(ErrInvalidDescriptor, "scale %d < 0", n)
		}
		d.scale = n
		d.hasScale = true
		return nil
	}
}

// Nullable sets whether the column accepts NULL. Columns are nullable by default.
func Nullable(nullable bool) Option {
	return func(d *Descriptor) error {
		d.nullable = nullable
		return nil
	}
}

// SourceType records the source database type name, for diagnostics only.
func SourceType(name string) Option {
	return func(d *Descriptor) error {
		d.sourceType = name
		return nil
	}
}

// New creates a Descriptor.
func New(name string, lt LogicalType, opts ...Option) (Descriptor, error) {
	d := Descriptor{
		name:        name,
		logicalType: lt,
		nullable:    true,
	}

	if strings.TrimSpace(name) == "" {
		return Descriptor{}, perrors.Wrap(ErrInvalidDescriptor, "empty column name")
	}
	if !lt.Valid() {
		return Descriptor{}, perrors.Wrapf(ErrInvalidDescriptor, "column %q: %s", name, lt)
	}

	for _, opt := range opts {
		if err := opt(&d); err != nil {
			return Descriptor{}, perrors.Wrapf(err, "column %q", name)
		}
	}

	if lt.IsDecimal() && d.size != 0 && d.hasScale && d.scale > d.size {
		return Descriptor{}, perrors.Wrapf(ErrInvalidDescriptor, "column %q: scale %d > precision %d", name, d.scale, d.size)
	}
	return d, nil
}

// Must creates a Descriptor or panic.
func Must(name string, lt LogicalType, opts ...Option) Descriptor {
	d, err := New(name, lt, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the column name.
func (d Descriptor) Name() string { return d.name }

// LogicalType returns the source logical type.
func (d Descriptor) LogicalType() LogicalType { return d.logicalType }

// Size returns the declared size, ok is false if absent.
func (d Descriptor) Size() (size int, ok bool) { return d.size, d.size != 0 }

// Scale returns the declared scale, ok is false if absent.
func (d Descriptor) Scale() (scale int, ok bool) { return d.scale, d.hasScale }

// Nullable reports whether the column accepts NULL.
func (d Descriptor) Nullable() bool { return d.nullable }

// SourceType returns the source database type name, may be empty.
func (d Descriptor) SourceType() string { return d.sourceType }

// EffectiveSize returns the declared size or the logical type's default.
func (d Descriptor) EffectiveSize() (size int, ok bool) {
	if d.size != 0 {
		return d.size, true
	}
	return d.logicalType.DefaultSize()
}

// EffectiveScale returns the declared scale or the logical type's default.
func (d Descriptor) EffectiveScale() (scale int, ok bool) {
	if d.hasScale {
		return d.scale, true
	}
	return d.logicalType.DefaultScale()
}

func (d Descriptor) String() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s %s", d.name, d.logicalType)
	switch {
	case d.size != 0 && d.hasScale:
		fmt.Fprintf(b, "(%d,%d)", d.size, d.scale)
	case d.size != 0:
		fmt.Fprintf(b, "(%d)", d.size)
	case d.hasScale:
		fmt.Fprintf(b, "(,%d)", d.scale)
	}
	if !d.nullable {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}
