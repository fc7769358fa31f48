package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	perrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/huangjunwen/cdcconv/column"
	"github.com/huangjunwen/cdcconv/decimalconv"
	"github.com/huangjunwen/cdcconv/dialect"
)

// MappedColumn is a column with its resolved destination declaration.
type MappedColumn struct {
	Column column.Descriptor

	// Key is true for primary key columns.
	Key bool

	// Type is the destination logical type, see DestinationType.
	Type column.LogicalType

	// Declaration is the rendered column type, e.g. "decimal(19,2)".
	Declaration string
}

// Mapping is the resolved form of a Table. Created by Pipeline.Map, it is immutable.
type Mapping struct {
	table    string
	dialect  dialect.Dialect
	mode     decimalconv.HandlingMode
	registry *dialect.Registry
	columns  []MappedColumn
	index    map[string]int
}

// Table returns the table name.
func (m *Mapping) Table() string { return m.table }

// Dialect returns the destination dialect.
func (m *Mapping) Dialect() dialect.Dialect { return m.dialect }

// Columns returns the mapped columns in source order.
func (m *Mapping) Columns() []MappedColumn {
	return append([]MappedColumn(nil), m.columns...)
}

// Column returns the mapped column by name.
func (m *Mapping) Column(name string) (MappedColumn, bool) {
	i, ok := m.index[name]
	if !ok {
		return MappedColumn{}, false
	}
	return m.columns[i], true
}

// Declaration returns the rendered type declaration of the named column.
func (m *Mapping) Declaration(name string) (string, bool) {
	mc, ok := m.Column(name)
	return mc.Declaration, ok
}

// ConvertRow converts the raw values of row into destination values:
//
//   - Decimal and money values become decimalconv.Value according to the handling mode.
//     Money text such as "$1,000.00" is accepted.
//   - A NOT NULL decimal column without value becomes zero at the column scale.
//   - Float slices of vector columns become vector text "[1,2.5]".
//   - Other values are passed through.
//
// The result has an entry for every mapped column, absent ones are nil.
func (m *Mapping) ConvertRow(row Row) (Row, error) {
	for name := range row {
		if _, ok := m.index[name]; !ok {
			return nil, &ConversionError{
				Table:  m.table,
				Column: name,
				Mode:   m.mode,
				Err:    perrors.WithStack(ErrUnknownColumn),
			}
		}
	}

	ret := make(Row, len(m.columns))
	for _, mc := range m.columns {
		name := mc.Column.Name()
		v, err := m.convertValue(mc, row[name])
		if err != nil {
			return nil, &ConversionError{
				Table:       m.table,
				Column:      name,
				LogicalType: mc.Column.LogicalType(),
				Mode:        m.mode,
				Err:         err,
			}
		}
		ret[name] = v
	}
	return ret, nil
}

func (m *Mapping) convertValue(mc MappedColumn, raw interface{}) (interface{}, error) {
	lt := mc.Column.LogicalType()
	switch {
	case lt.IsDecimal():
		return m.convertDecimal(mc.Column, raw)
	case lt.IsVector():
		return convertVector(raw)
	}
	return raw, nil
}

func (m *Mapping) convertDecimal(col column.Descriptor, raw interface{}) (interface{}, error) {
	scale, _ := col.EffectiveScale()

	var (
		d   decimal.Decimal
		ok  bool
		err error
	)
	switch v := raw.(type) {
	case string:
		if col.LogicalType() == column.Money {
			d, err = decimalconv.ParseMoney(v)
			ok = err == nil
			break
		}
		d, ok, err = decimalconv.Parse(v)
	case []byte:
		if col.LogicalType() == column.Money && v != nil {
			d, err = decimalconv.ParseMoney(string(v))
			ok = err == nil
			break
		}
		d, ok, err = decimalconv.Parse(v)
	default:
		d, ok, err = decimalconv.Parse(raw)
	}
	if err != nil {
		return nil, err
	}

	if !ok {
		if col.Nullable() {
			return decimalconv.NullValue, nil
		}
		return decimalconv.Zero(int32(scale), m.mode), nil
	}

	// Pad to the column scale so that 5 is emitted as 5.00 for money. Never rounds.
	if d.Exponent() > -int32(scale) {
		d = d.Round(int32(scale))
	}
	return decimalconv.ConvertDecimal(d, m.mode), nil
}

func convertVector(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case nil, string, []byte:
		return v, nil
	case []float64:
		if err := checkFinite(len(v), func(i int) float64 { return v[i] }); err != nil {
			return nil, err
		}
		return formatVector(len(v), func(i int) string {
			return strconv.FormatFloat(v[i], 'g', -1, 64)
		}), nil
	case []float32:
		if err := checkFinite(len(v), func(i int) float64 { return float64(v[i]) }); err != nil {
			return nil, err
		}
		return formatVector(len(v), func(i int) string {
			return strconv.FormatFloat(float64(v[i]), 'g', -1, 32)
		}), nil
	}
	return nil, perrors.Wrapf(ErrMalformedVector, "unsupported type %T", raw)
}

// checkFinite rejects NaN and ±Inf elements, no destination vector type stores them.
func checkFinite(n int, elem func(int) float64) error {
	for i := 0; i < n; i++ {
		if f := elem(i); math.IsNaN(f) || math.IsInf(f, 0) {
			return perrors.Wrapf(ErrMalformedVector, "element %d is %v", i, f)
		}
	}
	return nil
}

func formatVector(n int, elem func(int) string) string {
	b := &strings.Builder{}
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i != 0 {
			b.WriteByte(',')
		}
		b.WriteString(elem(i))
	}
	b.WriteByte(']')
	return b.String()
}

// CreateTableSQL renders the CREATE TABLE statement of the mapping.
func (m *Mapping) CreateTableSQL() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "CREATE TABLE %s (\n", m.quoteTable())

	keys := []string{}
	for i, mc := range m.columns {
		if i != 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(b, "  %s %s", m.dialect.QuoteIdentifier(mc.Column.Name()), mc.Declaration)
		if mc.Key || !mc.Column.Nullable() {
			b.WriteString(" NOT NULL")
		}
		if mc.Key {
			keys = append(keys, m.dialect.QuoteIdentifier(mc.Column.Name()))
		}
	}
	if len(keys) != 0 {
		fmt.Fprintf(b, ",\n  PRIMARY KEY (%s)", strings.Join(keys, ", "))
	}
	b.WriteString("\n)")
	return b.String()
}

// InsertSQL renders the INSERT statement of a converted row (see ConvertRow) and its
// arguments. Bind expressions may depend on the values, so the statement is per row.
func (m *Mapping) InsertSQL(row Row) (string, []interface{}, error) {
	names := make([]string, 0, len(m.columns))
	exprs := make([]string, 0, len(m.columns))
	args := make([]interface{}, 0, len(m.columns))

	next := 1
	for _, mc := range m.columns {
		name := mc.Column.Name()
		v := row[name]

		expr, err := m.registry.ResolveQueryBinding(mc.Type, mc.Column, m.dialect, bindingValue(v))
		if err != nil {
			return "", nil, &SchemaError{
				Table:       m.table,
				Column:      name,
				LogicalType: mc.Type,
				Dialect:     m.dialect,
				Err:         err,
			}
		}
		expr, next = m.dialect.NumberPlaceholders(expr, next)

		names = append(names, m.dialect.QuoteIdentifier(name))
		exprs = append(exprs, expr)
		args = append(args, v)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		m.quoteTable(),
		strings.Join(names, ", "),
		strings.Join(exprs, ", "),
	)
	return query, args, nil
}

func (m *Mapping) quoteTable() string {
	parts := strings.Split(m.table, ".")
	for i, part := range parts {
		parts[i] = m.dialect.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

// bindingValue unwraps decimalconv.Value so that binding rules see plain Go values.
func bindingValue(v interface{}) interface{} {
	if dv, ok := v.(decimalconv.Value); ok {
		return dv.Interface()
	}
	return v
}
