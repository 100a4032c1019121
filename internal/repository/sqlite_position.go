package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/phaseboard/timeline/internal/db"
	"github.com/phaseboard/timeline/internal/domain"
)

// SQLitePositionRepo allocates and repairs sibling positions. Callers run it
// on a transaction so reads and writes of one group happen under one lock.
type SQLitePositionRepo struct {
	db db.DBTX
}

// NewSQLitePositionRepo creates a new SQLitePositionRepo.
func NewSQLitePositionRepo(conn db.DBTX) *SQLitePositionRepo {
	return &SQLitePositionRepo{db: conn}
}

// NextPosition returns one past the highest position in the group, or 0 for
// an empty group.
func (r *SQLitePositionRepo) NextPosition(ctx context.Context, parentID *string) (int, error) {
	where, args := parentClause(parentID)
	var next int
	query := `SELECT COALESCE(MAX(position), -1) + 1 FROM phases WHERE ` + where
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("computing next position for group %s: %w", domain.GroupKey(parentID), err)
	}
	return next, nil
}

// CompactAfter closes the gap left at removed: every sibling above it moves
// down by exactly one and is stamped with at.
func (r *SQLitePositionRepo) CompactAfter(ctx context.Context, parentID *string, removed int, at time.Time) error {
	where, args := parentClause(parentID)
	query := `UPDATE phases SET position = position - 1, updated_at = ? WHERE ` + where + ` AND position > ?`
	params := append([]any{at.UTC().Format(time.RFC3339)}, args...)
	params = append(params, removed)
	if _, err := r.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("compacting group %s after %d: %w", domain.GroupKey(parentID), removed, err)
	}
	return nil
}

// SiblingAt returns the phase holding position in the group.
func (r *SQLitePositionRepo) SiblingAt(ctx context.Context, parentID *string, position int) (*domain.Phase, error) {
	where, args := parentClause(parentID)
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE ` + where + ` AND position = ? ORDER BY created_at, id LIMIT 1`
	p, err := scanPhase(r.db.QueryRowContext(ctx, query, append(args, position)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("position %d in group %s: %w", position, domain.GroupKey(parentID), ErrNotFound)
		}
		return nil, fmt.Errorf("scanning sibling: %w", err)
	}
	return p, nil
}

// SetPosition rewrites a single phase's position.
func (r *SQLitePositionRepo) SetPosition(ctx context.Context, id string, position int, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE phases SET position = ?, updated_at = ? WHERE id = ?`,
		position, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("setting position of %s: %w", id, err)
	}
	return requireAffected(res, "phase "+id)
}
