package dialect

import (
	"fmt"

	"github.com/huangjunwen/cdcconv/column"
)

const (
	// mysqlKeyLength is the length of unsized string key columns; MySQL can't index
	// TEXT/BLOB columns without a prefix length.
	mysqlKeyLength = 255

	mysqlMaxDecimalPrecision = 65
	mysqlMaxDecimalScale     = 30
)

func mysqlVarLength(sizedName, unsizedName string) DeclarationFunc {
	return func(spec TypeSpec) string {
		switch {
		case spec.Size > 0:
			return fmt.Sprintf("%s(%d)", sizedName, spec.Size)
		case spec.Key:
			return fmt.Sprintf("%s(%d)", sizedName, mysqlKeyLength)
		}
		return unsizedName
	}
}

func mysqlDecimal(spec TypeSpec) string {
	precision := minInt(spec.Size, mysqlMaxDecimalPrecision)
	scale := minInt(spec.Scale, mysqlMaxDecimalScale)
	return fmt.Sprintf("decimal(%d,%d)", precision, minInt(scale, precision))
}

// mysqlFixedDecimal keeps as many fraction digits as MySQL allows when the column declares
// neither precision nor scale. decimal(65,0) would round every fraction away on insert.
func mysqlFixedDecimal(spec TypeSpec) string {
	if !spec.SizeDeclared && !spec.ScaleDeclared {
		precision := minInt(spec.Size, mysqlMaxDecimalPrecision)
		return fmt.Sprintf("decimal(%d,%d)", precision, minInt(mysqlMaxDecimalScale, precision))
	}
	return mysqlDecimal(spec)
}

// mysqlScalarRules are shared by MySQL and MariaDB.
func mysqlScalarRules() map[column.LogicalType]Rule {
	return map[column.LogicalType]Rule{
		column.Boolean:      {Declaration: fixed("boolean")},
		column.Int16:        {Declaration: fixed("smallint")},
		column.Int32:        {Declaration: fixed("int")},
		column.Int64:        {Declaration: fixed("bigint")},
		column.Float32:      {Declaration: fixed("float")},
		column.Float64:      {Declaration: fixed("double")},
		column.Text:         {Declaration: mysqlVarLength("varchar", "longtext")},
		column.Bytes:        {Declaration: mysqlVarLength("varbinary", "longblob")},
		column.Date:         {Declaration: fixed("date")},
		column.Timestamp:    {Declaration: sized("datetime")},
		column.FixedDecimal: {Declaration: mysqlFixedDecimal},
		column.Money:        {Declaration: mysqlDecimal},
	}
}

func mysqlRules() map[column.LogicalType]Rule {
	rules := mysqlScalarRules()
	// MySQL VECTOR elements are 4-byte floats, so DoubleVector has no lossless rendering.
	rules[column.FloatVector] = Rule{
		Declaration: sized("vector"),
		Binding:     bindWith("STRING_TO_VECTOR(?)"),
	}
	return rules
}

func mariadbRules() map[column.LogicalType]Rule {
	rules := mysqlScalarRules()
	vector := Rule{
		// MariaDB requires an explicit length; an undeclared size falls back to the
		// logical type default (MySQL's limit) so vectors from MySQL or PostgreSQL fit.
		Declaration: sized("vector"),
		Binding:     mariadbVectorBinding,
	}
	rules[column.FloatVector] = vector
	rules[column.DoubleVector] = vector
	return rules
}

// mariadbVectorBinding passes binary vectors through, text forms ("[1,2,3]") are converted.
func mariadbVectorBinding(col column.Descriptor, value interface{}) string {
	if _, ok := value.([]byte); ok {
		return "?"
	}
	return "VEC_FromText(?)"
}
