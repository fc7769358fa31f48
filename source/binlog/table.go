package binlog

import (
	"fmt"

	perrors "github.com/pkg/errors"
	gmysql "github.com/siddontang/go-mysql/mysql"
	"github.com/siddontang/go-mysql/replication"

	"github.com/huangjunwen/cdcconv/column"
	"github.com/huangjunwen/cdcconv/pipeline"
)

const (
	// binaryCollationID is the id of the 'binary' collation: BLOB/BINARY/VARBINARY columns.
	binaryCollationID = 63
)

var (
	emptyUnsignedMap     = map[int]bool{}
	emptyCollationMap    = map[int]uint64{}
	emptyEnumStrValueMap = map[int][]string{}
	emptySetStrValueMap  = map[int][]string{}
)

type tableMeta struct {
	*replication.TableMapEvent
	// cache fields
	unsignedMap     map[int]bool
	collationMap    map[int]uint64
	enumStrValueMap map[int][]string
	setStrValueMap  map[int][]string
}

func newTableMeta(table *replication.TableMapEvent) *tableMeta {
	return &tableMeta{
		TableMapEvent: table,
	}
}

func (meta *tableMeta) UnsignedMap() map[int]bool {
	if meta.unsignedMap == nil {
		meta.unsignedMap = meta.TableMapEvent.UnsignedMap()
		if meta.unsignedMap == nil {
			meta.unsignedMap = emptyUnsignedMap
		}
	}
	return meta.unsignedMap
}

func (meta *tableMeta) CollationMap() map[int]uint64 {
	if meta.collationMap == nil {
		meta.collationMap = meta.TableMapEvent.CollationMap()
		if meta.collationMap == nil {
			meta.collationMap = emptyCollationMap
		}
	}
	return meta.collationMap
}

func (meta *tableMeta) EnumStrValueMap() map[int][]string {
	if meta.enumStrValueMap == nil {
		meta.enumStrValueMap = meta.TableMapEvent.EnumStrValueMap()
		if meta.enumStrValueMap == nil {
			meta.enumStrValueMap = emptyEnumStrValueMap
		}
	}
	return meta.enumStrValueMap
}

func (meta *tableMeta) SetStrValueMap() map[int][]string {
	if meta.setStrValueMap == nil {
		meta.setStrValueMap = meta.TableMapEvent.SetStrValueMap()
		if meta.setStrValueMap == nil {
			meta.setStrValueMap = emptySetStrValueMap
		}
	}
	return meta.setStrValueMap
}

// RealType is TableMapEvent.realType which go-mysql doesn't export.
func (meta *tableMeta) RealType(i int) byte {
	typ := meta.TableMapEvent.ColumnType[i]

	switch typ {
	case gmysql.MYSQL_TYPE_STRING:
		rtyp := byte(meta.TableMapEvent.ColumnMeta[i] >> 8)
		if rtyp == gmysql.MYSQL_TYPE_ENUM || rtyp == gmysql.MYSQL_TYPE_SET {
			return rtyp
		}

	case gmysql.MYSQL_TYPE_DATE:
		return gmysql.MYSQL_TYPE_NEWDATE
	}

	return typ
}

// IsBinary reports whether the i-th string/blob column has binary collation. Without charset
// metadata every blob is treated as binary.
func (meta *tableMeta) IsBinary(i int) bool {
	collation, ok := meta.CollationMap()[i]
	if !ok {
		return meta.RealType(i) != gmysql.MYSQL_TYPE_VARCHAR &&
			meta.RealType(i) != gmysql.MYSQL_TYPE_VAR_STRING &&
			meta.RealType(i) != gmysql.MYSQL_TYPE_STRING
	}
	return collation == binaryCollationID
}

// IsNullable reports whether the i-th column is nullable. Nullable if the null bitmap is absent.
func (meta *tableMeta) IsNullable(i int) bool {
	available, nullable := meta.TableMapEvent.Nullable(i)
	if !available {
		return true
	}
	return nullable
}

// LogicalType returns the logical type and descriptor options of the i-th column.
func (meta *tableMeta) LogicalType(i int) (column.LogicalType, []column.Option, error) {
	unsigned := meta.UnsignedMap()[i]
	colMeta := meta.TableMapEvent.ColumnMeta[i]

	switch rtyp := meta.RealType(i); rtyp {
	case gmysql.MYSQL_TYPE_TINY:
		return column.Int16, nil, nil

	case gmysql.MYSQL_TYPE_SHORT:
		if unsigned {
			return column.Int32, nil, nil
		}
		return column.Int16, nil, nil

	case gmysql.MYSQL_TYPE_INT24:
		return column.Int32, nil, nil

	case gmysql.MYSQL_TYPE_LONG:
		if unsigned {
			return column.Int64, nil, nil
		}
		return column.Int32, nil, nil

	case gmysql.MYSQL_TYPE_LONGLONG:
		if unsigned {
			// 18446744073709551615 has 20 digits.
			return column.FixedDecimal, []column.Option{column.Size(20), column.Scale(0)}, nil
		}
		return column.Int64, nil, nil

	case gmysql.MYSQL_TYPE_FLOAT:
		return column.Float32, nil, nil

	case gmysql.MYSQL_TYPE_DOUBLE:
		return column.Float64, nil, nil

	case gmysql.MYSQL_TYPE_NEWDECIMAL:
		precision := int(colMeta >> 8)
		scale := int(colMeta & 0xff)
		return column.FixedDecimal, []column.Option{column.Size(precision), column.Scale(scale)}, nil

	case gmysql.MYSQL_TYPE_YEAR:
		return column.Int16, nil, nil

	case gmysql.MYSQL_TYPE_NEWDATE:
		return column.Date, nil, nil

	case gmysql.MYSQL_TYPE_DATETIME2, gmysql.MYSQL_TYPE_TIMESTAMP2, gmysql.MYSQL_TYPE_DATETIME, gmysql.MYSQL_TYPE_TIMESTAMP:
		// Meta is the fractional seconds precision for the v2 types, 0 for the old ones.
		if colMeta == 0 {
			return column.Timestamp, nil, nil
		}
		return column.Timestamp, []column.Option{column.Size(int(colMeta))}, nil

	case gmysql.MYSQL_TYPE_TIME, gmysql.MYSQL_TYPE_TIME2, gmysql.MYSQL_TYPE_ENUM, gmysql.MYSQL_TYPE_SET, gmysql.MYSQL_TYPE_JSON:
		return column.Text, nil, nil

	case gmysql.MYSQL_TYPE_VARCHAR, gmysql.MYSQL_TYPE_VAR_STRING, gmysql.MYSQL_TYPE_STRING,
		gmysql.MYSQL_TYPE_TINY_BLOB, gmysql.MYSQL_TYPE_MEDIUM_BLOB, gmysql.MYSQL_TYPE_LONG_BLOB, gmysql.MYSQL_TYPE_BLOB:
		if meta.IsBinary(i) {
			return column.Bytes, nil, nil
		}
		return column.Text, nil, nil

	case gmysql.MYSQL_TYPE_BIT:
		// Decoded as int64.
		return column.Int64, nil, nil

	case gmysql.MYSQL_TYPE_GEOMETRY:
		return column.Bytes, nil, nil

	default:
		return 0, nil, perrors.Errorf("Unsupported mysql column type %d", rtyp)
	}
}

// TableFromEvent builds the pipeline table of a TABLE_MAP_EVENT. The source server must run
// with --binlog-row-metadata=FULL so that column names and primary keys are present.
func TableFromEvent(e *replication.TableMapEvent) (pipeline.Table, error) {
	meta := newTableMeta(e)
	name := string(e.Table)

	if len(e.ColumnName) != len(e.ColumnType) {
		return pipeline.Table{}, perrors.Errorf(
			"Table %s.%s has no column names in binlog, need --binlog-row-metadata=FULL",
			e.Schema,
			e.Table,
		)
	}

	ret := pipeline.Table{
		Name:    name,
		Columns: make([]column.Descriptor, 0, len(e.ColumnType)),
	}
	for i := range e.ColumnType {
		colName := string(e.ColumnName[i])
		lt, opts, err := meta.LogicalType(i)
		if err != nil {
			return pipeline.Table{}, perrors.Wrapf(err, "Column %s.%s", name, colName)
		}
		opts = append(opts,
			column.Nullable(meta.IsNullable(i)),
			column.SourceType(fmt.Sprintf("mysql:%d", meta.RealType(i))),
		)

		desc, err := column.New(colName, lt, opts...)
		if err != nil {
			return pipeline.Table{}, err
		}
		ret.Columns = append(ret.Columns, desc)
	}

	for _, idx := range e.PrimaryKey {
		if int(idx) >= len(ret.Columns) {
			return pipeline.Table{}, perrors.Errorf("Table %s: primary key index %d out of range", name, idx)
		}
		ret.KeyColumns = append(ret.KeyColumns, ret.Columns[idx].Name())
	}

	return ret, nil
}
