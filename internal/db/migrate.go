package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS phases (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		start_date TEXT NOT NULL,
		parent_id  TEXT REFERENCES phases(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL DEFAULT 0 CHECK(position >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_phases_parent_position ON phases(parent_id, position)`,

	`CREATE TABLE IF NOT EXISTS access_groups (
		name       TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS access_group_permissions (
		group_name TEXT NOT NULL REFERENCES access_groups(name) ON DELETE CASCADE,
		permission TEXT NOT NULL,
		PRIMARY KEY (group_name, permission)
	)`,
}
