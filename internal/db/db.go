package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeoutMs bounds how long a writer waits for the SQLite lock
// before the store reports contention.
const DefaultBusyTimeoutMs = 5000

// Options tunes how the database is opened.
type Options struct {
	BusyTimeoutMs int
}

// OpenDB opens a SQLite database at the given path with default options.
// If path is ":memory:", uses an in-memory database.
func OpenDB(path string) (*sql.DB, error) {
	return OpenDBWithOptions(path, Options{BusyTimeoutMs: DefaultBusyTimeoutMs})
}

// OpenDBWithOptions opens a SQLite database in WAL mode with foreign keys
// enforced on every pooled connection. Transactions begin IMMEDIATE so a
// writer holds the lock from its first read of a sibling group.
// Runs migrations automatically.
func OpenDBWithOptions(path string, opts Options) (*sql.DB, error) {
	memory := path == ":memory:"
	if !memory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	if opts.BusyTimeoutMs <= 0 {
		opts.BusyTimeoutMs = DefaultBusyTimeoutMs
	}

	db, err := sql.Open("sqlite", dsn(path, opts))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func dsn(path string, opts Options) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeoutMs))
	if path != ":memory:" {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	params.Set("_txlock", "immediate")

	name := path
	if !strings.HasPrefix(name, "file:") {
		name = "file:" + name
	}
	return name + "?" + params.Encode()
}
