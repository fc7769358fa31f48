package dialect

import (
	perrors "github.com/pkg/errors"

	"github.com/huangjunwen/cdcconv/column"
)

// TypeSpec is the input of a DeclarationFunc.
type TypeSpec struct {
	// Column is the source column.
	Column column.Descriptor

	// Size is the effective size: the column's declared size, or the registry default
	// for the (LogicalType, Dialect) pair. 0 if the type takes no size.
	Size int

	// SizeDeclared is true if Size comes from the column itself.
	SizeDeclared bool

	// Scale is the effective scale, only meaningful when HasScale is true.
	Scale    int
	HasScale bool

	// ScaleDeclared is true if Scale comes from the column itself.
	ScaleDeclared bool

	// Key is true for primary key columns.
	Key bool
}

// DeclarationFunc renders a column type declaration.
type DeclarationFunc func(spec TypeSpec) string

// BindingFunc renders the prepared statement expression of a column. '?' marks the bind
// parameter, see Dialect.NumberPlaceholders. value is the runtime value (may be nil) for
// dialects whose expression depends on the value's shape.
type BindingFunc func(col column.Descriptor, value interface{}) string

// Rule is the rendering function pair for one (LogicalType, Dialect).
type Rule struct {
	// Declaration must not be nil.
	Declaration DeclarationFunc

	// Binding may be nil, which means a bare '?'.
	Binding BindingFunc

	// DefaultSize, if > 0, overrides the logical type's default size for this dialect.
	DefaultSize int
}

type ruleKey struct {
	logicalType column.LogicalType
	dialect     Dialect
}

// Registry maps (LogicalType, Dialect) to rules. It is immutable once created by NewRegistry,
// all methods are safe for concurrent use.
type Registry struct {
	rules map[ruleKey]Rule
	sizes map[ruleKey]int
}

type registryOptions struct {
	noBuiltins bool
	rules      map[ruleKey]Rule
	sizes      map[ruleKey]int
}

// Option is the option in creating Registry.
type Option func(*registryOptions) error

// WithRule registers (or replaces a builtin) rule.
func WithRule(lt column.LogicalType, d Dialect, rule Rule) Option {
	return func(opts *registryOptions) error {
		if !lt.Valid() || !d.Valid() {
			return perrors.Wrapf(ErrInvalidRule, "WithRule(%s, %s)", lt, d)
		}
		if rule.Declaration == nil {
			return perrors.Wrapf(ErrInvalidRule, "WithRule(%s, %s): nil Declaration", lt, d)
		}
		opts.rules[ruleKey{lt, d}] = rule
		return nil
	}
}

// WithDefaultSize sets the size used for columns of lt without a declared size when
// rendered for d. n >= 1.
func WithDefaultSize(lt column.LogicalType, d Dialect, n int) Option {
	return func(opts *registryOptions) error {
		if !lt.Valid() || !d.Valid() {
			return perrors.Wrapf(ErrInvalidRule, "WithDefaultSize(%s, %s)", lt, d)
		}
		if n < 1 {
			return perrors.Wrapf(ErrInvalidRule, "WithDefaultSize(%s, %s): %d < 1", lt, d, n)
		}
		opts.sizes[ruleKey{lt, d}] = n
		return nil
	}
}

// WithoutBuiltins starts from an empty rule table.
func WithoutBuiltins() Option {
	return func(opts *registryOptions) error {
		opts.noBuiltins = true
		return nil
	}
}

// NewRegistry creates a Registry with the builtin rules plus opts.
func NewRegistry(opts ...Option) (*Registry, error) {
	o := &registryOptions{
		rules: map[ruleKey]Rule{},
		sizes: map[ruleKey]int{},
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	r := &Registry{
		rules: map[ruleKey]Rule{},
		sizes: o.sizes,
	}
	if !o.noBuiltins {
		for k, rule := range builtinRules() {
			r.rules[k] = rule
		}
	}
	for k, rule := range o.rules {
		r.rules[k] = rule
	}
	return r, nil
}

// MustRegistry creates a Registry or panic.
func MustRegistry(opts ...Option) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Supports reports whether lt has a rule for d.
func (r *Registry) Supports(lt column.LogicalType, d Dialect) bool {
	_, ok := r.rules[ruleKey{lt, d}]
	return ok
}

// DefaultSize returns the size used for undeclared columns of lt in d.
func (r *Registry) DefaultSize(lt column.LogicalType, d Dialect) (int, bool) {
	k := ruleKey{lt, d}
	if n, ok := r.sizes[k]; ok {
		return n, true
	}
	if rule, ok := r.rules[k]; ok && rule.DefaultSize > 0 {
		return rule.DefaultSize, true
	}
	return lt.DefaultSize()
}

// ResolveTypeDeclaration renders the type declaration of col as lt in d.
//
// lt may differ from col.LogicalType() (e.g. a decimal column stored as text); the column's
// declared size and scale only apply when it does not.
func (r *Registry) ResolveTypeDeclaration(lt column.LogicalType, col column.Descriptor, d Dialect, isKey bool) (string, error) {
	rule, err := r.rule(lt, d)
	if err != nil {
		return "", err
	}

	spec := TypeSpec{
		Column: col,
		Key:    isKey,
	}
	if col.LogicalType() == lt {
		spec.Size, spec.SizeDeclared = col.Size()
		spec.Scale, spec.ScaleDeclared = col.Scale()
		spec.HasScale = spec.ScaleDeclared
	}
	if !spec.SizeDeclared {
		spec.Size, _ = r.DefaultSize(lt, d)
	}
	if !spec.HasScale {
		spec.Scale, spec.HasScale = lt.DefaultScale()
	}
	return rule.Declaration(spec), nil
}

// ResolveQueryBinding returns the bind expression of col as lt in d.
func (r *Registry) ResolveQueryBinding(lt column.LogicalType, col column.Descriptor, d Dialect, value interface{}) (string, error) {
	rule, err := r.rule(lt, d)
	if err != nil {
		return "", err
	}
	if rule.Binding == nil {
		return "?", nil
	}
	return rule.Binding(col, value), nil
}

func (r *Registry) rule(lt column.LogicalType, d Dialect) (Rule, error) {
	rule, ok := r.rules[ruleKey{lt, d}]
	if !ok {
		return Rule{}, perrors.WithStack(&UnsupportedError{LogicalType: lt, Dialect: d})
	}
	return rule, nil
}
