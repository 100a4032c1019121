package db

import (
	"context"
	"database/sql"
)

// DBTX is what the phase and position repositories query through. Passing
// the *sql.Tx of a unit of work makes every read and write of a sibling
// group part of the same IMMEDIATE transaction; passing the *sql.DB gives
// autocommit reads.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
