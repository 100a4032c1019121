package db

import (
	"errors"
	"fmt"

	"github.com/phaseboard/timeline/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsContention reports whether err is SQLite refusing a lock held by
// another connection.
func IsContention(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// IsStoreFailure reports whether err is SQLite failing at the storage level
// (I/O, corruption, a full disk, a read-only file) rather than rejecting the
// statement itself.
func IsStoreFailure(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_FULL,
		sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOMEM, sqlite3.SQLITE_READONLY,
		sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_PROTOCOL:
		return true
	}
	return false
}

// classify maps driver errors onto the store's sentinel errors. Errors that
// already carry a sentinel pass through unchanged.
func classify(op string, err error, unavailable bool) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConcurrentModification), errors.Is(err, domain.ErrStoreUnavailable):
		return err
	case IsContention(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConcurrentModification, err)
	case unavailable, IsStoreFailure(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	default:
		return err
	}
}
