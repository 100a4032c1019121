package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/phaseboard/timeline/internal/db"
	"github.com/phaseboard/timeline/internal/domain"
)

// FailOnNthExecUoW runs each transaction through the real SQLite unit of
// work but makes the FailOn-th ExecContext inside it return Err. Counting
// starts at 1 and restarts per transaction; reads are never counted.
//
// Position updates are multi-statement (compact then delete, two halves of
// a swap) so this is how tests break them halfway.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &execFault{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

type execFault struct {
	db.DBTX
	calls  atomic.Int32
	failOn int32
	err    error
}

func (f *execFault) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.calls.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// ContendedUoW behaves like a writer lock held elsewhere: the first
// Conflicts transactions fail with domain.ErrConcurrentModification before
// fn runs, later ones go to Next. Attempts counts every call.
type ContendedUoW struct {
	Next      db.UnitOfWork
	Conflicts int32
	Attempts  atomic.Int32
}

func (u *ContendedUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	if u.Attempts.Add(1) <= u.Conflicts {
		return fmt.Errorf("beginning transaction: %w", domain.ErrConcurrentModification)
	}
	return u.Next.WithinTx(ctx, fn)
}
