package sqlh

import (
	"context"
	"database/sql"

	perrors "github.com/pkg/errors"

	"github.com/huangjunwen/cdcconv/dialect"
	"github.com/huangjunwen/cdcconv/pipeline"
)

// CreateTable creates the destination table of m.
func CreateTable(ctx context.Context, e Execer, m *pipeline.Mapping) error {
	_, err := e.ExecContext(ctx, m.CreateTableSQL())
	return perrors.WithStack(err)
}

// InsertRows inserts converted rows (see pipeline.Mapping.ConvertRow) using prepared
// statements. Rows rendering the same statement share one prepared statement.
func InsertRows(ctx context.Context, p Preparer, m *pipeline.Mapping, rows []pipeline.Row) error {
	stmts := map[string]*sql.Stmt{}
	defer func() {
		for _, stmt := range stmts {
			stmt.Close()
		}
	}()

	for _, row := range rows {
		query, args, err := m.InsertSQL(row)
		if err != nil {
			return err
		}

		stmt := stmts[query]
		if stmt == nil {
			stmt, err = p.PrepareContext(ctx, query)
			if err != nil {
				return perrors.Wrapf(err, "Prepare %q", query)
			}
			stmts[query] = stmt
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return perrors.Wrapf(err, "Exec %q", query)
		}
	}
	return nil
}

// WriteRows inserts converted rows in one transaction: either all rows are written or none.
func WriteRows(ctx context.Context, db *sql.DB, m *pipeline.Mapping, rows []pipeline.Row) error {
	return WriteRowsOpts(ctx, db, m, rows, nil)
}

// WriteRowsOpts is similar to WriteRows with extra transaction options. The session is prepared
// for the destination dialect of m first, see SessionTxOptions.
func WriteRowsOpts(ctx context.Context, db *sql.DB, m *pipeline.Mapping, rows []pipeline.Row, opts *TxOptions) error {
	return WithTxOpts(ctx, db, SessionTxOptions(m.Dialect(), opts), func(ctx context.Context, tx *sql.Tx) error {
		return InsertRows(ctx, tx, m, rows)
	})
}

// SessionTxOptions returns opts with hooks setting up the db session for dialect d:
//
//   - PostgreSQL: money text is locale dependent, lc_monetary is set to 'C' before the
//     transaction so that '.' is the decimal point, and reset after it.
//
// Hooks of opts run after the setup and before the reset. opts is returned as is for
// other dialects.
func SessionTxOptions(d dialect.Dialect, opts *TxOptions) *TxOptions {
	if d != dialect.PostgreSQL {
		return opts
	}
	if opts == nil {
		opts = emptyTxOptions
	}

	ret := *opts
	ret.BeforeTx = func(ctx context.Context, conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, "SET lc_monetary = 'C'"); err != nil {
			return perrors.WithStack(err)
		}
		if opts.BeforeTx != nil {
			if err := opts.BeforeTx(ctx, conn); err != nil {
				// AfterTx is not called in this case.
				conn.ExecContext(ctx, "RESET lc_monetary")
				return err
			}
		}
		return nil
	}
	ret.AfterTx = func(ctx context.Context, conn *sql.Conn, committed bool) {
		if opts.AfterTx != nil {
			opts.AfterTx(ctx, conn, committed)
		}
		// The conn goes back to the pool.
		conn.ExecContext(ctx, "RESET lc_monetary")
	}
	return &ret
}
