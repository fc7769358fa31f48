package binlog

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	gmysql "github.com/siddontang/go-mysql/mysql"
	"github.com/siddontang/go-mysql/replication"
	"github.com/stretchr/testify/assert"

	"github.com/huangjunwen/cdcconv/column"
)

// newEvent builds a TABLE_MAP_EVENT as decoded with --binlog-row-metadata=FULL.
//
// Columns:
//   0 id      BIGINT UNSIGNED NOT NULL (pk)
//   1 price   DECIMAL(10,3)
//   2 name    VARCHAR(64)
//   3 payload BLOB
//   4 created DATETIME(3) NOT NULL
//   5 day     DATE
//   6 qty     INT
func newEvent() *replication.TableMapEvent {
	return &replication.TableMapEvent{
		Schema:      []byte("shop"),
		Table:       []byte("orders"),
		ColumnCount: 7,
		ColumnType: []byte{
			gmysql.MYSQL_TYPE_LONGLONG,
			gmysql.MYSQL_TYPE_NEWDECIMAL,
			gmysql.MYSQL_TYPE_VARCHAR,
			gmysql.MYSQL_TYPE_BLOB,
			gmysql.MYSQL_TYPE_DATETIME2,
			gmysql.MYSQL_TYPE_DATE,
			gmysql.MYSQL_TYPE_LONG,
		},
		ColumnMeta: []uint16{
			0,
			10<<8 | 3,
			256,
			2,
			3,
			0,
			0,
		},
		// Bits 1, 2, 3, 5, 6 are nullable.
		NullBitmap: []byte{0x6e},
		// Numeric columns in order: id, price, qty. Only id is unsigned.
		SignednessBitmap: []byte{0x80},
		ColumnName: [][]byte{
			[]byte("id"),
			[]byte("price"),
			[]byte("name"),
			[]byte("payload"),
			[]byte("created"),
			[]byte("day"),
			[]byte("qty"),
		},
		PrimaryKey: []uint64{0},
	}
}

func TestTableFromEvent(t *testing.T) {
	assert := assert.New(t)

	table, err := TableFromEvent(newEvent())
	assert.NoError(err)
	assert.Equal("orders", table.Name)
	assert.Equal([]string{"id"}, table.KeyColumns)
	assert.Len(table.Columns, 7)

	for _, testCase := range []struct {
		Index       int
		Name        string
		LogicalType column.LogicalType
		Size        int
		Scale       int
		HasScale    bool
		Nullable    bool
	}{
		{0, "id", column.FixedDecimal, 20, 0, true, false},
		{1, "price", column.FixedDecimal, 10, 3, true, true},
		{2, "name", column.Text, 0, 0, false, true},
		{3, "payload", column.Bytes, 0, 0, false, true},
		{4, "created", column.Timestamp, 3, 0, false, false},
		{5, "day", column.Date, 0, 0, false, true},
		{6, "qty", column.Int32, 0, 0, false, true},
	} {
		col := table.Columns[testCase.Index]
		assert.Equal(testCase.Name, col.Name())
		assert.Equal(testCase.LogicalType, col.LogicalType(), testCase.Name)
		size, _ := col.Size()
		assert.Equal(testCase.Size, size, testCase.Name)
		scale, hasScale := col.Scale()
		assert.Equal(testCase.HasScale, hasScale, testCase.Name)
		assert.Equal(testCase.Scale, scale, testCase.Name)
		assert.Equal(testCase.Nullable, col.Nullable(), testCase.Name)
	}
}

func TestTableFromEventNoMetadata(t *testing.T) {
	assert := assert.New(t)

	e := newEvent()
	e.ColumnName = nil
	_, err := TableFromEvent(e)
	assert.Error(err)
	assert.Contains(err.Error(), "binlog-row-metadata=FULL")

	_, err = RowFromEvent(e, make([]interface{}, 7))
	assert.Error(err)
}

func TestTableFromEventUnsupported(t *testing.T) {
	assert := assert.New(t)

	e := newEvent()
	e.ColumnType[6] = gmysql.MYSQL_TYPE_NULL
	_, err := TableFromEvent(e)
	assert.Error(err)
	assert.Contains(err.Error(), "qty")
}

func TestRowFromEvent(t *testing.T) {
	assert := assert.New(t)

	price := decimal.RequireFromString("1234567.890")
	created := time.Date(2020, 6, 1, 8, 0, 0, 123000000, time.FixedZone("UTC+8", 8*3600))

	row, err := RowFromEvent(newEvent(), []interface{}{
		int64(-1),
		price,
		[]byte("apple"),
		[]byte{0x00, 0xff},
		created,
		"2020-06-01",
		nil,
	})
	assert.NoError(err)

	assert.Equal(uint64(18446744073709551615), row["id"])
	assert.True(price.Equal(row["price"].(decimal.Decimal)))
	assert.Equal(int32(-3), row["price"].(decimal.Decimal).Exponent())
	assert.Equal("apple", row["name"])
	assert.Equal([]byte{0x00, 0xff}, row["payload"])
	assert.Equal(created.UTC(), row["created"])
	assert.Equal(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), row["day"])
	assert.Nil(row["qty"])
	assert.Contains(row, "qty")
}

func TestRowFromEventErrors(t *testing.T) {
	assert := assert.New(t)

	// Wrong number of values.
	_, err := RowFromEvent(newEvent(), []interface{}{int64(1)})
	assert.Error(err)

	// Bad date.
	_, err = RowFromEvent(newEvent(), []interface{}{
		int64(1), nil, nil, nil, time.Now(), "2020-13-45", nil,
	})
	assert.Error(err)
	assert.Contains(err.Error(), "day")
	var parseErr *time.ParseError
	assert.True(errors.As(err, &parseErr))
}

func TestRowsFromEvent(t *testing.T) {
	assert := assert.New(t)

	e := &replication.RowsEvent{
		Table: newEvent(),
		Rows: [][]interface{}{
			{int64(1), nil, []byte("a"), nil, time.Now(), nil, int32(1)},
			{int64(2), nil, []byte("b"), nil, time.Now(), nil, int32(2)},
		},
	}
	rows, err := RowsFromEvent(e)
	assert.NoError(err)
	assert.Len(rows, 2)
	assert.Equal(uint64(2), rows[1]["id"])
	assert.Equal("b", rows[1]["name"])
	assert.Equal(int32(2), rows[1]["qty"])
}

func TestConfig(t *testing.T) {
	assert := assert.New(t)

	cfg := &Config{
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "123456",
	}

	driverCfg := cfg.ToDriverCfg()
	assert.Equal("localhost:3306", driverCfg.Addr)
	assert.Equal("utf8mb4", driverCfg.Params["charset"])
	assert.True(driverCfg.ParseTime)

	_, err := cfg.ToBinlogSyncerCfg()
	assert.Error(err)

	cfg.ServerId = 1001
	syncerCfg, err := cfg.ToBinlogSyncerCfg()
	assert.NoError(err)
	assert.True(syncerCfg.UseDecimal)
	assert.Equal(uint32(1001), syncerCfg.ServerID)
}
