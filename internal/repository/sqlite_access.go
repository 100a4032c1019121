package repository

import (
	"context"
	"fmt"

	"github.com/phaseboard/timeline/internal/db"
)

// SQLiteAccessRepo stores permission groups.
type SQLiteAccessRepo struct {
	db db.DBTX
}

// NewSQLiteAccessRepo creates a new SQLiteAccessRepo.
func NewSQLiteAccessRepo(conn db.DBTX) *SQLiteAccessRepo {
	return &SQLiteAccessRepo{db: conn}
}

// EnsureGroup creates the group with the given permissions if it does not
// exist yet. An existing group keeps its permissions untouched. Reports
// whether the group was created.
func (r *SQLiteAccessRepo) EnsureGroup(ctx context.Context, name string, permissions []string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO access_groups (name, created_at) VALUES (?, ?)`, name, nowUTC())
	if err != nil {
		return false, fmt.Errorf("creating group %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking group %s: %w", name, err)
	}
	if n == 0 {
		return false, nil
	}
	for _, perm := range permissions {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO access_group_permissions (group_name, permission) VALUES (?, ?)`,
			name, perm); err != nil {
			return false, fmt.Errorf("granting %s to %s: %w", perm, name, err)
		}
	}
	return true, nil
}

// GroupPermissions lists the permissions granted to a group, sorted.
func (r *SQLiteAccessRepo) GroupPermissions(ctx context.Context, name string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT permission FROM access_group_permissions WHERE group_name = ? ORDER BY permission`, name)
	if err != nil {
		return nil, fmt.Errorf("listing permissions of %s: %w", name, err)
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning permission: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permissions: %w", err)
	}
	return perms, nil
}
