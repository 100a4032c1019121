package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// parentClause returns the WHERE fragment and args selecting a sibling
// group. SQL equality never matches NULL, so the root group needs IS NULL.
func parentClause(parentID *string) (string, []any) {
	if parentID == nil {
		return "parent_id IS NULL", nil
	}
	return "parent_id = ?", []any{*parentID}
}

// nullableString converts an optional string to a value suitable for SQLite storage.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// parseNullableString converts a sql.NullString into an optional string.
func parseNullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// parseTimestamp parses an RFC3339 column, naming the column on failure.
func parseTimestamp(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
