package dialect

import (
	"github.com/huangjunwen/cdcconv/column"
)

func sqliteRules() map[column.LogicalType]Rule {
	return map[column.LogicalType]Rule{
		column.Boolean:   {Declaration: fixed("INTEGER")},
		column.Int16:     {Declaration: fixed("INTEGER")},
		column.Int32:     {Declaration: fixed("INTEGER")},
		column.Int64:     {Declaration: fixed("INTEGER")},
		column.Float32:   {Declaration: fixed("REAL")},
		column.Float64:   {Declaration: fixed("REAL")},
		column.Text:      {Declaration: fixed("TEXT")},
		column.Bytes:     {Declaration: fixed("BLOB")},
		column.Date:      {Declaration: fixed("TEXT")},
		column.Timestamp: {Declaration: fixed("TEXT")},
		// NUMERIC affinity would coerce wide decimals to REAL.
		column.FixedDecimal: {Declaration: fixed("TEXT")},
		column.Money:        {Declaration: fixed("TEXT")},
	}
}
