package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UnitOfWork groups the reads and writes of one phase operation into a
// single transaction. fn builds tx-scoped repositories from the DBTX it is
// handed.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork runs units of work as SQLite transactions. The DSN sets
// _txlock=immediate, so BEGIN already takes the write lock.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx commits only if fn returns nil. Lock contention at any step
// comes back as domain.ErrConcurrentModification. Begin and commit failures,
// and storage-level driver failures inside fn, come back as
// domain.ErrStoreUnavailable. Other errors from fn are returned as is.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("beginning transaction", err, true)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbErr := tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err != nil {
			err = fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return classify("transaction", err, false)
	}
	if err := tx.Commit(); err != nil {
		return classify("committing transaction", err, true)
	}
	committed = true
	return nil
}
