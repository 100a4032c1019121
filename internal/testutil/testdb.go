package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/phaseboard/timeline/internal/db"
)

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("opening test database %s: %v", path, err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestDB returns a migrated in-memory database, closed with the test.
// It holds a single connection, so it cannot exercise lock contention.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewFileTestDB returns a migrated database file under t.TempDir(). Every
// pooled connection sees the same file, so concurrent writers really race
// for the SQLite write lock.
func NewFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "timeline_test.db"))
}

// NewTestUoW returns the production unit of work over database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
