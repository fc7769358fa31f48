package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/huangjunwen/cdcconv/column"
	"github.com/huangjunwen/cdcconv/decimalconv"
	"github.com/huangjunwen/cdcconv/dialect"
	"github.com/huangjunwen/cdcconv/logr/zerologr"
)

func mustPipeline(cfg *Config, opts ...Option) *Pipeline {
	p, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func mustMap(p *Pipeline, table Table) *Mapping {
	m, err := p.Map(table)
	if err != nil {
		panic(err)
	}
	return m
}

func accountsTable() Table {
	return Table{
		Name: "accounts",
		Columns: []column.Descriptor{
			column.Must("id", column.Int64, column.Nullable(false)),
			column.Must("m", column.Money, column.Nullable(false)),
			column.Must("price", column.FixedDecimal, column.Size(10), column.Scale(3)),
			column.Must("name", column.Text),
		},
		KeyColumns: []string{"id"},
	}
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	{
		cfg, err := LoadConfig([]byte(`
dialect: postgres
decimalHandlingMode: string
defaultSizes:
  double_vector: 1024
workers: 2
`))
		assert.NoError(err)
		assert.Equal(dialect.PostgreSQL, cfg.Dialect)
		assert.Equal(decimalconv.String, cfg.DecimalHandlingMode)
		assert.Equal(map[column.LogicalType]int{column.DoubleVector: 1024}, cfg.DefaultSizes)
		assert.Equal(2, cfg.workers())
	}

	{
		cfg, err := LoadConfig([]byte(`{"dialect": "mariadb"}`))
		assert.NoError(err)
		assert.Equal(dialect.MariaDB, cfg.Dialect)
		assert.Equal(decimalconv.Precise, cfg.DecimalHandlingMode)
		assert.Equal(DefaultWorkers, cfg.workers())
	}

	for _, doc := range []string{
		``,
		`dialect: oracle`,
		`{dialect: mysql, decimalHandlingMode: float}`,
		`{dialect: mysql, defaultSizes: {double_vector: 0}}`,
		`{dialect: mysql, defaultSizes: {geometry: 10}}`,
		`{dialect: mysql, workers: -1}`,
	} {
		_, err := LoadConfig([]byte(doc))
		assert.Error(err, doc)
		assert.True(errors.Is(err, ErrInvalidConfig), doc)
	}
}

func TestMap(t *testing.T) {
	assert := assert.New(t)

	for _, testCase := range []struct {
		Dialect dialect.Dialect
		Mode    decimalconv.HandlingMode
		Expect  map[string]string
	}{
		{
			dialect.MySQL, decimalconv.Precise,
			map[string]string{"id": "bigint", "m": "decimal(19,2)", "price": "decimal(10,3)", "name": "longtext"},
		},
		{
			dialect.MySQL, decimalconv.String,
			map[string]string{"id": "bigint", "m": "longtext", "price": "longtext", "name": "longtext"},
		},
		{
			dialect.MySQL, decimalconv.Double,
			map[string]string{"id": "bigint", "m": "double", "price": "double", "name": "longtext"},
		},
		{
			dialect.PostgreSQL, decimalconv.Precise,
			map[string]string{"id": "bigint", "m": "money", "price": "numeric(10,3)", "name": "text"},
		},
		{
			dialect.SQLite, decimalconv.Precise,
			map[string]string{"id": "INTEGER", "m": "TEXT", "price": "TEXT", "name": "TEXT"},
		},
	} {
		p := mustPipeline(&Config{Dialect: testCase.Dialect, DecimalHandlingMode: testCase.Mode})
		m, err := p.Map(accountsTable())
		assert.NoError(err)

		for name, expect := range testCase.Expect {
			decl, ok := m.Declaration(name)
			assert.True(ok)
			assert.Equal(expect, decl, "%s %s %s", testCase.Dialect, testCase.Mode, name)
		}

		_, ok := m.Declaration("nonexistent")
		assert.False(ok)
		assert.Len(m.Columns(), 4)
	}
}

func TestMapDefaultSizes(t *testing.T) {
	assert := assert.New(t)

	table := Table{
		Name:    "embeddings",
		Columns: []column.Descriptor{column.Must("v", column.DoubleVector)},
	}

	m := mustMap(mustPipeline(&Config{Dialect: dialect.MariaDB}), table)
	decl, _ := m.Declaration("v")
	assert.Equal("vector(16383)", decl)

	m = mustMap(mustPipeline(&Config{
		Dialect:      dialect.MariaDB,
		DefaultSizes: map[column.LogicalType]int{column.DoubleVector: 1024},
	}), table)
	decl, _ = m.Declaration("v")
	assert.Equal("vector(1024)", decl)
}

func TestMapFailure(t *testing.T) {
	assert := assert.New(t)

	buf := &strings.Builder{}
	p := mustPipeline(
		&Config{Dialect: dialect.MySQL},
		WithLogger(zerologr.New(zerolog.New(buf))),
	)

	table := accountsTable()
	table.Columns = append(table.Columns, column.Must("v", column.DoubleVector, column.Size(3)))

	m, err := p.Map(table)
	assert.Nil(m)
	assert.Error(err)
	assert.True(errors.Is(err, dialect.ErrUnsupportedLogicalTypeForDialect))

	var schemaErr *SchemaError
	assert.True(errors.As(err, &schemaErr))
	assert.Equal("accounts", schemaErr.Table)
	assert.Equal("v", schemaErr.Column)
	assert.Equal(column.DoubleVector, schemaErr.LogicalType)
	assert.Equal(dialect.MySQL, schemaErr.Dialect)

	assert.Contains(buf.String(), `"message":"map table failed"`)
	assert.Contains(buf.String(), `"column":"v"`)
	assert.Contains(buf.String(), `"dialect":"mysql"`)

	// Invalid tables.
	for _, table := range []Table{
		{Name: "", Columns: accountsTable().Columns},
		{Name: "t"},
		{Name: "t", Columns: []column.Descriptor{column.Must("a", column.Text), column.Must("a", column.Int32)}},
		{Name: "t", Columns: []column.Descriptor{column.Must("a", column.Text)}, KeyColumns: []string{"b"}},
	} {
		m, err := p.Map(table)
		assert.Nil(m)
		assert.True(errors.Is(err, ErrInvalidTable))
	}
}

func TestConvertRowNotNullMoney(t *testing.T) {
	assert := assert.New(t)

	{
		m := mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL, DecimalHandlingMode: decimalconv.String}), accountsTable())
		row, err := m.ConvertRow(Row{"id": int64(1)})
		assert.NoError(err)

		text, ok := row["m"].(decimalconv.Value).Text()
		assert.True(ok)
		assert.Equal("0.00", text)

		// Nullable decimal stays null.
		assert.True(row["price"].(decimalconv.Value).IsNull())
		assert.Nil(row["name"])
	}

	{
		m := mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL, DecimalHandlingMode: decimalconv.Double}), accountsTable())
		row, err := m.ConvertRow(Row{"id": int64(1), "m": nil})
		assert.NoError(err)

		f, ok := row["m"].(decimalconv.Value).Float64()
		assert.True(ok)
		assert.Equal(0.0, f)
	}

	{
		m := mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL}), accountsTable())
		row, err := m.ConvertRow(Row{"id": int64(1)})
		assert.NoError(err)

		d, ok := row["m"].(decimalconv.Value).Decimal()
		assert.True(ok)
		assert.Equal("0.00", decimalconv.FormatFixed(d))
	}
}

func TestConvertRow(t *testing.T) {
	assert := assert.New(t)

	m := mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL}), accountsTable())

	for _, testCase := range []struct {
		Raw    interface{}
		Expect string
	}{
		{"$1,000.00", "1000.00"},
		{"-$92,233,720,368,547,758.08", "-92233720368547758.08"},
		{[]byte("($5.25)"), "-5.25"},
		{"92233720368547758.07", "92233720368547758.07"},
		{5, "5.00"},
		{"1.005", "1.005"},
	} {
		row, err := m.ConvertRow(Row{"id": int64(1), "m": testCase.Raw})
		assert.NoError(err)
		assert.Equal(testCase.Expect, row["m"].(decimalconv.Value).String(), "%v", testCase.Raw)
	}

	row, err := m.ConvertRow(Row{"id": int64(7), "price": "12.5", "name": "x"})
	assert.NoError(err)
	assert.Equal(int64(7), row["id"])
	assert.Equal("12.500", row["price"].(decimalconv.Value).String())
	assert.Equal("x", row["name"])
}

func TestConvertRowScale(t *testing.T) {
	assert := assert.New(t)

	for _, mode := range []decimalconv.HandlingMode{decimalconv.Precise, decimalconv.String} {
		m := mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL, DecimalHandlingMode: mode}), accountsTable())

		for _, testCase := range []struct {
			Column string
			Raw    interface{}
			Expect string
		}{
			// Padded to the column scale.
			{"m", 5, "5.00"},
			{"m", "7.1", "7.10"},
			{"price", "12", "12.000"},
			// More fraction digits than the column scale: never rounded.
			{"m", "1.234", "1.234"},
			{"m", "$1.239", "1.239"},
			{"price", "0.12345", "0.12345"},
		} {
			row, err := m.ConvertRow(Row{"id": int64(1), testCase.Column: testCase.Raw})
			assert.NoError(err)

			v := row[testCase.Column].(decimalconv.Value)
			switch mode {
			case decimalconv.Precise:
				d, ok := v.Decimal()
				assert.True(ok)
				assert.Equal(testCase.Expect, decimalconv.FormatFixed(d), "%s %v", mode, testCase.Raw)
			case decimalconv.String:
				text, ok := v.Text()
				assert.True(ok)
				assert.Equal(testCase.Expect, text, "%s %v", mode, testCase.Raw)
			}
		}
	}
}

func TestUnsizedDecimalKeepsFraction(t *testing.T) {
	assert := assert.New(t)

	for _, d := range []dialect.Dialect{dialect.MySQL, dialect.MariaDB} {
		m := mustMap(mustPipeline(&Config{Dialect: d}), Table{
			Name:    "t",
			Columns: []column.Descriptor{column.Must("amount", column.FixedDecimal)},
		})

		decl, _ := m.Declaration("amount")
		assert.Equal("decimal(65,30)", decl)

		row, err := m.ConvertRow(Row{"amount": "12345.6789"})
		assert.NoError(err)
		_, args, err := m.InsertSQL(row)
		assert.NoError(err)
		assert.Equal("12345.6789", args[0].(decimalconv.Value).String())
	}
}

func TestConvertRowErrors(t *testing.T) {
	assert := assert.New(t)

	m := mustMap(mustPipeline(&Config{Dialect: dialect.MySQL, DecimalHandlingMode: decimalconv.String}), accountsTable())

	{
		_, err := m.ConvertRow(Row{"id": int64(1), "nonexistent": 1})
		assert.True(errors.Is(err, ErrUnknownColumn))
		var convErr *ConversionError
		assert.True(errors.As(err, &convErr))
		assert.Equal("nonexistent", convErr.Column)
	}

	{
		_, err := m.ConvertRow(Row{"id": int64(1), "price": "12..5"})
		assert.True(errors.Is(err, decimalconv.ErrMalformedNumeric))
		var convErr *ConversionError
		assert.True(errors.As(err, &convErr))
		assert.Equal("price", convErr.Column)
		assert.Equal(column.FixedDecimal, convErr.LogicalType)
		assert.Equal(decimalconv.String, convErr.Mode)
	}

	{
		_, err := m.ConvertRow(Row{"id": int64(1), "m": "$"})
		assert.True(errors.Is(err, decimalconv.ErrMalformedNumeric))
	}
}

func TestConvertVector(t *testing.T) {
	assert := assert.New(t)

	m := mustMap(mustPipeline(&Config{Dialect: dialect.MariaDB}), Table{
		Name:    "embeddings",
		Columns: []column.Descriptor{column.Must("v", column.DoubleVector, column.Size(3))},
	})

	for _, testCase := range []struct {
		Raw    interface{}
		Expect interface{}
	}{
		{[]float64{1, 2.5, -0.125}, "[1,2.5,-0.125]"},
		{[]float32{1, 0.5}, "[1,0.5]"},
		{[]float64{}, "[]"},
		{"[1,2,3]", "[1,2,3]"},
		{[]byte{0, 0, 128, 63}, []byte{0, 0, 128, 63}},
		{nil, nil},
	} {
		row, err := m.ConvertRow(Row{"v": testCase.Raw})
		assert.NoError(err)
		assert.Equal(testCase.Expect, row["v"])
	}

	for _, raw := range []interface{}{
		3,
		[]int{1, 2},
		[]float64{1, math.NaN()},
		[]float64{math.Inf(1)},
		[]float32{float32(math.Inf(-1)), 0},
	} {
		_, err := m.ConvertRow(Row{"v": raw})
		assert.True(errors.Is(err, ErrMalformedVector), "%v", raw)
	}
}

func TestInsertSQL(t *testing.T) {
	assert := assert.New(t)

	table := Table{
		Name: "public.items",
		Columns: []column.Descriptor{
			column.Must("id", column.Int64, column.Nullable(false)),
			column.Must("m", column.Money),
			column.Must("v", column.DoubleVector, column.Size(2)),
		},
		KeyColumns: []string{"id"},
	}

	{
		m := mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL}), table)
		row, err := m.ConvertRow(Row{"id": int64(1), "m": "$1.50", "v": []float64{1, 2}})
		assert.NoError(err)

		query, args, err := m.InsertSQL(row)
		assert.NoError(err)
		assert.Equal(`INSERT INTO "public"."items" ("id", "m", "v") VALUES ($1, CAST($2 AS money), CAST($3 AS vector))`, query)
		assert.Len(args, 3)
		assert.Equal(int64(1), args[0])
		assert.Equal("1.50", args[1].(decimalconv.Value).String())
		assert.Equal("[1,2]", args[2])
	}

	{
		// String mode stores money as text so no cast is needed.
		m := mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL, DecimalHandlingMode: decimalconv.String}), table)
		row, err := m.ConvertRow(Row{"id": int64(1), "m": "$1.50"})
		assert.NoError(err)

		query, _, err := m.InsertSQL(row)
		assert.NoError(err)
		assert.Equal(`INSERT INTO "public"."items" ("id", "m", "v") VALUES ($1, $2, CAST($3 AS vector))`, query)
	}

	{
		m := mustMap(mustPipeline(&Config{Dialect: dialect.MariaDB}), table)

		row, err := m.ConvertRow(Row{"id": int64(1), "v": []float64{1, 2}})
		assert.NoError(err)
		query, _, err := m.InsertSQL(row)
		assert.NoError(err)
		assert.Equal("INSERT INTO `public`.`items` (`id`, `m`, `v`) VALUES (?, ?, VEC_FromText(?))", query)

		row, err = m.ConvertRow(Row{"id": int64(1), "v": []byte{0, 0, 128, 63, 0, 0, 0, 64}})
		assert.NoError(err)
		query, _, err = m.InsertSQL(row)
		assert.NoError(err)
		assert.Equal("INSERT INTO `public`.`items` (`id`, `m`, `v`) VALUES (?, ?, ?)", query)
	}
}

func TestCreateTableSQL(t *testing.T) {
	assert := assert.New(t)

	m := mustMap(mustPipeline(&Config{Dialect: dialect.MySQL}), accountsTable())
	assert.Equal("CREATE TABLE `accounts` (\n"+
		"  `id` bigint NOT NULL,\n"+
		"  `m` decimal(19,2) NOT NULL,\n"+
		"  `price` decimal(10,3),\n"+
		"  `name` longtext,\n"+
		"  PRIMARY KEY (`id`)\n"+
		")", m.CreateTableSQL())

	m = mustMap(mustPipeline(&Config{Dialect: dialect.PostgreSQL}), Table{
		Name:    "t",
		Columns: []column.Descriptor{column.Must("a", column.Text)},
	})
	assert.Equal("CREATE TABLE \"t\" (\n  \"a\" text\n)", m.CreateTableSQL())
}

func TestConvertRows(t *testing.T) {
	assert := assert.New(t)

	p := mustPipeline(&Config{Dialect: dialect.MySQL, DecimalHandlingMode: decimalconv.String, Workers: 3})
	m := mustMap(p, accountsTable())

	rows := []Row{}
	for i := 0; i < 100; i++ {
		rows = append(rows, Row{"id": int64(i), "m": fmt.Sprintf("%d.5", i)})
	}

	out, err := p.ConvertRows(context.Background(), m, rows)
	assert.NoError(err)
	assert.Len(out, 100)
	for i, row := range out {
		assert.Equal(int64(i), row["id"])
		text, _ := row["m"].(decimalconv.Value).Text()
		assert.Equal(fmt.Sprintf("%d.50", i), text)
	}

	rows[42]["m"] = "not a number"
	out, err = p.ConvertRows(context.Background(), m, rows)
	assert.Nil(out)
	assert.True(errors.Is(err, decimalconv.ErrMalformedNumeric))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ConvertRows(ctx, m, rows[:1])
	assert.True(errors.Is(err, context.Canceled))
}

func TestNewErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := New(nil)
	assert.True(errors.Is(err, ErrInvalidConfig))

	_, err = New(&Config{})
	assert.True(errors.Is(err, ErrInvalidConfig))

	_, err = New(&Config{Dialect: dialect.MySQL}, WithRegistry(nil))
	assert.True(errors.Is(err, ErrInvalidConfig))

	// A custom registry without builtins supports nothing.
	p, err := New(&Config{Dialect: dialect.MySQL}, WithRegistry(dialect.MustRegistry(dialect.WithoutBuiltins())))
	assert.NoError(err)
	_, err = p.Map(accountsTable())
	assert.True(errors.Is(err, dialect.ErrUnsupportedLogicalTypeForDialect))
}
