package pipeline

import (
	"context"
	"strings"

	perrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/huangjunwen/cdcconv/column"
	"github.com/huangjunwen/cdcconv/decimalconv"
	"github.com/huangjunwen/cdcconv/dialect"
	"github.com/huangjunwen/cdcconv/logr"
)

// Table is a schema notification: the columns of a source table at one schema version.
type Table struct {
	// Name of the destination table, may be qualified ("schema.table").
	Name string

	// Columns in source order.
	Columns []column.Descriptor

	// KeyColumns are the primary key column names.
	KeyColumns []string
}

// Row is a value notification: column name to raw value. Absent columns are treated as NULL.
type Row map[string]interface{}

// Pipeline maps tables and converts rows for one connector instance. It is immutable and
// safe for concurrent use.
type Pipeline struct {
	cfg      Config
	registry *dialect.Registry
	logger   logr.Logger
}

// Option is the option in creating Pipeline.
type Option func(*Pipeline) error

// WithLogger sets the logger. Use logr.Nop if not set.
func WithLogger(logger logr.Logger) Option {
	return func(p *Pipeline) error {
		p.logger = logr.OrNop(logger)
		return nil
	}
}

// WithRegistry uses an existing registry instead of building one from the config.
func WithRegistry(registry *dialect.Registry) Option {
	return func(p *Pipeline) error {
		if registry == nil {
			return perrors.Wrap(ErrInvalidConfig, "nil registry")
		}
		p.registry = registry
		return nil
	}
}

// New creates a Pipeline.
func New(cfg *Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, perrors.Wrap(ErrInvalidConfig, "nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    *cfg,
		logger: logr.Nop,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.registry == nil {
		regOpts := []dialect.Option{}
		for lt, n := range cfg.DefaultSizes {
			regOpts = append(regOpts, dialect.WithDefaultSize(lt, cfg.Dialect, n))
		}
		registry, err := dialect.NewRegistry(regOpts...)
		if err != nil {
			return nil, perrors.Wrap(ErrInvalidConfig, err.Error())
		}
		p.registry = registry
	}

	p.logger = p.logger.WithValues(
		"dialect", cfg.Dialect.String(),
		"mode", cfg.DecimalHandlingMode.String(),
	)
	return p, nil
}

// Dialect returns the destination dialect.
func (p *Pipeline) Dialect() dialect.Dialect {
	return p.cfg.Dialect
}

// HandlingMode returns the decimal handling mode.
func (p *Pipeline) HandlingMode() decimalconv.HandlingMode {
	return p.cfg.DecimalHandlingMode
}

// DestinationType returns the logical type a column of lt is stored as under mode:
// decimal types become Text in String mode and Float64 in Double mode.
func DestinationType(lt column.LogicalType, mode decimalconv.HandlingMode) column.LogicalType {
	if !lt.IsDecimal() {
		return lt
	}
	switch mode {
	case decimalconv.String:
		return column.Text
	case decimalconv.Double:
		return column.Float64
	}
	return lt
}

// Map resolves the destination declaration of every column of table. It fails as a whole:
// if any column can't be rendered a *SchemaError is returned and no Mapping is created.
func (p *Pipeline) Map(table Table) (*Mapping, error) {
	if err := validateTable(table); err != nil {
		p.logger.Error(err, "invalid table", "table", table.Name)
		return nil, err
	}

	keys := map[string]bool{}
	for _, k := range table.KeyColumns {
		keys[k] = true
	}

	m := &Mapping{
		table:    table.Name,
		dialect:  p.cfg.Dialect,
		mode:     p.cfg.DecimalHandlingMode,
		registry: p.registry,
		columns:  make([]MappedColumn, 0, len(table.Columns)),
		index:    make(map[string]int, len(table.Columns)),
	}

	for _, col := range table.Columns {
		dest := DestinationType(col.LogicalType(), m.mode)
		decl, err := p.registry.ResolveTypeDeclaration(dest, col, m.dialect, keys[col.Name()])
		if err != nil {
			err = &SchemaError{
				Table:       table.Name,
				Column:      col.Name(),
				LogicalType: dest,
				Dialect:     m.dialect,
				Err:         err,
			}
			p.logger.Error(err, "map table failed",
				"table", table.Name,
				"column", col.Name(),
				"logical_type", dest.String(),
			)
			return nil, err
		}

		m.index[col.Name()] = len(m.columns)
		m.columns = append(m.columns, MappedColumn{
			Column:      col,
			Key:         keys[col.Name()],
			Type:        dest,
			Declaration: decl,
		})
	}

	p.logger.Info("table mapped", "table", table.Name, "columns", len(m.columns))
	return m, nil
}

// ConvertRows converts rows with at most Config.Workers goroutines. The result keeps the
// input order. The first failure cancels the rest and is returned.
func (p *Pipeline) ConvertRows(ctx context.Context, m *Mapping, rows []Row) ([]Row, error) {
	ret := make([]Row, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.workers())
	for i := range rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := m.ConvertRow(rows[i])
			if err != nil {
				return err
			}
			ret[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Error(err, "convert rows failed", "table", m.table, "rows", len(rows))
		return nil, err
	}
	return ret, nil
}

func validateTable(table Table) error {
	if strings.TrimSpace(table.Name) == "" {
		return perrors.Wrap(ErrInvalidTable, "empty table name")
	}
	if len(table.Columns) == 0 {
		return perrors.Wrapf(ErrInvalidTable, "table %q has no columns", table.Name)
	}

	names := map[string]bool{}
	for _, col := range table.Columns {
		if names[col.Name()] {
			return perrors.Wrapf(ErrInvalidTable, "table %q: duplicate column %q", table.Name, col.Name())
		}
		names[col.Name()] = true
	}
	for _, k := range table.KeyColumns {
		if !names[k] {
			return perrors.Wrapf(ErrInvalidTable, "table %q: key column %q not found", table.Name, k)
		}
	}
	return nil
}
