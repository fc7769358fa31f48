package dialect

import (
	"fmt"

	"github.com/huangjunwen/cdcconv/column"
)

// pgvectorMaxDimensions is the largest dimensionality pgvector can store in a column.
const pgvectorMaxDimensions = 16000

func postgresNumeric(spec TypeSpec) string {
	if !spec.SizeDeclared {
		// Unconstrained numeric accepts any precision and scale.
		return "numeric"
	}
	return fmt.Sprintf("numeric(%d,%d)", spec.Size, spec.Scale)
}

func postgresRules() map[column.LogicalType]Rule {
	vector := Rule{
		Declaration: sized("vector"),
		Binding:     bindWith("CAST(? AS vector)"),
		DefaultSize: pgvectorMaxDimensions,
	}
	return map[column.LogicalType]Rule{
		column.Boolean:      {Declaration: fixed("boolean")},
		column.Int16:        {Declaration: fixed("smallint")},
		column.Int32:        {Declaration: fixed("integer")},
		column.Int64:        {Declaration: fixed("bigint")},
		column.Float32:      {Declaration: fixed("real")},
		column.Float64:      {Declaration: fixed("double precision")},
		column.Text:         {Declaration: sizedOr("varchar", "text")},
		column.Bytes:        {Declaration: fixed("bytea")},
		column.Date:         {Declaration: fixed("date")},
		column.Timestamp:    {Declaration: sized("timestamp")},
		column.FixedDecimal: {Declaration: postgresNumeric},
		column.Money: {
			Declaration: fixed("money"),
			Binding:     bindWith("CAST(? AS money)"),
		},
		column.FloatVector:  vector,
		column.DoubleVector: vector,
	}
}
