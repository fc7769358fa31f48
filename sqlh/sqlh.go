// Package sqlh contains helpers for writing converted rows through database/sql.
package sqlh

import (
	"context"
	"database/sql"
)

// Queryer is the common interface of *sql.DB, *sql.Conn and *sql.Tx for queries.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Execer is the common interface of *sql.DB, *sql.Conn and *sql.Tx for statements.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Preparer is the common interface of *sql.DB, *sql.Conn and *sql.Tx for prepared statements.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

var (
	_ Queryer  = (*sql.DB)(nil)
	_ Queryer  = (*sql.Conn)(nil)
	_ Queryer  = (*sql.Tx)(nil)
	_ Execer   = (*sql.DB)(nil)
	_ Execer   = (*sql.Conn)(nil)
	_ Execer   = (*sql.Tx)(nil)
	_ Preparer = (*sql.DB)(nil)
	_ Preparer = (*sql.Conn)(nil)
	_ Preparer = (*sql.Tx)(nil)
)
