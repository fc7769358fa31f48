package binlog

import (
	"strings"
	"time"

	perrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	gmysql "github.com/siddontang/go-mysql/mysql"
	"github.com/siddontang/go-mysql/replication"

	"github.com/huangjunwen/cdcconv/pipeline"
)

// RowFromEvent converts one row image of a ROWS_EVENT of table into a pipeline row keyed by
// column name. Decimal values are kept as decimal.Decimal.
func RowFromEvent(table *replication.TableMapEvent, data []interface{}) (pipeline.Row, error) {
	if len(table.ColumnName) != len(table.ColumnType) {
		return nil, perrors.Errorf(
			"Table %s.%s has no column names in binlog, need --binlog-row-metadata=FULL",
			table.Schema,
			table.Table,
		)
	}
	if len(data) != len(table.ColumnType) {
		return nil, perrors.Errorf("Table %s.%s: expect %d values but got %d",
			table.Schema, table.Table, len(table.ColumnType), len(data))
	}

	meta := newTableMeta(table)
	ret := make(pipeline.Row, len(data))
	for i, val := range data {
		v, err := meta.normalizeValue(i, val)
		if err != nil {
			return nil, perrors.Wrapf(err, "Column %s.%s", table.Table, table.ColumnName[i])
		}
		ret[string(table.ColumnName[i])] = v
	}
	return ret, nil
}

// RowsFromEvent converts all row images of e. For update events before and after images
// alternate.
func RowsFromEvent(e *replication.RowsEvent) ([]pipeline.Row, error) {
	ret := make([]pipeline.Row, 0, len(e.Rows))
	for _, data := range e.Rows {
		row, err := RowFromEvent(e.Table, data)
		if err != nil {
			return nil, err
		}
		ret = append(ret, row)
	}
	return ret, nil
}

func (meta *tableMeta) normalizeValue(i int, val interface{}) (interface{}, error) {

	// No need to handle nil.
	if val == nil {
		return nil, nil
	}

	// NOTE: go-mysql stores int as signed values since before MySQL-8, no signedness
	// information is presents in binlog. So we need to convert here if it is unsigned.
	if meta.IsNumericColumn(i) {
		if v, ok := val.(decimal.Decimal); ok {
			return v, nil
		}

		if !meta.UnsignedMap()[i] {
			return val, nil
		}

		switch v := val.(type) {
		case int8:
			return uint8(v), nil

		case int16:
			return uint16(v), nil

		case int32:
			if v < 0 && meta.RealType(i) == gmysql.MYSQL_TYPE_INT24 {
				// 16777215 is the maximum value of mediumint
				return uint32(16777215 + v + 1), nil
			}
			return uint32(v), nil

		case int64:
			return uint64(v), nil

		case int:
			return uint(v), nil
		}
		// float/double ...
		return val, nil
	}

	switch meta.RealType(i) {
	case gmysql.MYSQL_TYPE_ENUM:
		v, ok := val.(int64)
		if !ok {
			return nil, perrors.Errorf("Expect int64 for enum (MYSQL_TYPE_ENUM) field but got %T %#v", val, val)
		}
		values := meta.EnumStrValueMap()[i]
		if v < 1 || int(v) > len(values) {
			return nil, perrors.Errorf("Enum index %d out of range", v)
		}
		return values[int(v)-1], nil

	case gmysql.MYSQL_TYPE_SET:
		v, ok := val.(int64)
		if !ok {
			return nil, perrors.Errorf("Expect int64 for set (MYSQL_TYPE_SET) field but got %T %#v", val, val)
		}
		setStrValue := meta.SetStrValueMap()[i]
		vals := []string{}
		for j := 0; j < 64 && j < len(setStrValue); j++ {
			if (v & (1 << uint(j))) != 0 {
				vals = append(vals, setStrValue[j])
			}
		}
		return strings.Join(vals, ","), nil

	case gmysql.MYSQL_TYPE_YEAR:
		v, ok := val.(int)
		if !ok {
			return nil, perrors.Errorf("Expect int for year (MYSQL_TYPE_YEAR) field but got %T %#v", val, val)
		}
		return int16(v), nil

	case gmysql.MYSQL_TYPE_NEWDATE:
		v, ok := val.(string)
		if !ok {
			return nil, perrors.Errorf("Expect string for date (MYSQL_TYPE_NEWDATE) field but got %T %#v", val, val)
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, perrors.WithStack(err)
		}
		return t, nil
	}

	binary := false
	switch meta.RealType(i) {
	case gmysql.MYSQL_TYPE_GEOMETRY:
		binary = true
	case gmysql.MYSQL_TYPE_VARCHAR, gmysql.MYSQL_TYPE_VAR_STRING, gmysql.MYSQL_TYPE_STRING,
		gmysql.MYSQL_TYPE_TINY_BLOB, gmysql.MYSQL_TYPE_MEDIUM_BLOB, gmysql.MYSQL_TYPE_LONG_BLOB, gmysql.MYSQL_TYPE_BLOB:
		binary = meta.IsBinary(i)
	}

	switch v := val.(type) {
	case time.Time:
		return v.UTC(), nil

	case []byte:
		if binary {
			return v, nil
		}
		return string(v), nil

	case string:
		if binary {
			return []byte(v), nil
		}
		return v, nil
	}
	return val, nil
}
