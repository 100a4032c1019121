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

// phaseColumns is the canonical SELECT column list for phases.
const phaseColumns = `id, title, start_date, parent_id, position, created_at, updated_at`

// descendantBatch caps the parent ids bound into one IN (...) query.
const descendantBatch = 500

// SQLitePhaseRepo implements PhaseRepo on a SQLite connection or transaction.
type SQLitePhaseRepo struct {
	db db.DBTX
}

// NewSQLitePhaseRepo creates a new SQLitePhaseRepo.
func NewSQLitePhaseRepo(conn db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: conn}
}

func (r *SQLitePhaseRepo) Create(ctx context.Context, p *domain.Phase) error {
	query := `INSERT INTO phases (id, title, start_date, parent_id, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Title,
		p.Start.Format(domain.DateLayout),
		nullableString(p.ParentID),
		p.Position,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE id = ?`
	p, err := scanPhase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("phase %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning phase: %w", err)
	}
	return p, nil
}

func (r *SQLitePhaseRepo) ListChildren(ctx context.Context, parentID *string) ([]*domain.Phase, error) {
	where, args := parentClause(parentID)
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE ` + where + ` ORDER BY position, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing child phases: %w", err)
	}
	defer rows.Close()
	return scanPhases(rows)
}

// ListDescendants returns the subtree under id in pre-order: each phase
// precedes its children, siblings follow position order. The tree is loaded
// one level per query and flattened with an explicit stack, so depth is
// bounded only by the data.
func (r *SQLitePhaseRepo) ListDescendants(ctx context.Context, id string, includeSelf bool) ([]*domain.Phase, error) {
	root, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	children := make(map[string][]*domain.Phase)
	seen := map[string]bool{root.ID: true}
	level := []string{root.ID}
	for len(level) > 0 {
		var next []string
		for start := 0; start < len(level); start += descendantBatch {
			end := min(start+descendantBatch, len(level))
			batch, err := r.listChildrenOf(ctx, level[start:end])
			if err != nil {
				return nil, err
			}
			for _, c := range batch {
				if seen[c.ID] {
					continue
				}
				seen[c.ID] = true
				children[*c.ParentID] = append(children[*c.ParentID], c)
				next = append(next, c.ID)
			}
		}
		level = next
	}

	var out []*domain.Phase
	if includeSelf {
		out = append(out, root)
	}
	stack := reversed(children[root.ID])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		stack = append(stack, reversed(children[n.ID])...)
	}
	return out, nil
}

func (r *SQLitePhaseRepo) listChildrenOf(ctx context.Context, parentIDs []string) ([]*domain.Phase, error) {
	args := make([]any, len(parentIDs))
	for i, id := range parentIDs {
		args[i] = id
	}
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE parent_id IN (` + placeholders(len(parentIDs)) + `)
		ORDER BY parent_id, position, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing descendant phases: %w", err)
	}
	defer rows.Close()
	return scanPhases(rows)
}

// IsDescendant reports whether candidateID lies strictly below ancestorID,
// walking parent links upward from the candidate.
func (r *SQLitePhaseRepo) IsDescendant(ctx context.Context, ancestorID, candidateID string) (bool, error) {
	visited := make(map[string]bool)
	current := candidateID
	for {
		if visited[current] {
			return false, fmt.Errorf("phase %s: parent chain loops: %w", candidateID, domain.ErrInvalidParent)
		}
		visited[current] = true

		var parent sql.NullString
		err := r.db.QueryRowContext(ctx, `SELECT parent_id FROM phases WHERE id = ?`, current).Scan(&parent)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, fmt.Errorf("phase %s: %w", current, ErrNotFound)
			}
			return false, fmt.Errorf("reading parent of %s: %w", current, err)
		}
		if !parent.Valid {
			return false, nil
		}
		if parent.String == ancestorID {
			return true, nil
		}
		current = parent.String
	}
}

func (r *SQLitePhaseRepo) Update(ctx context.Context, p *domain.Phase) error {
	query := `UPDATE phases SET title = ?, start_date = ?, parent_id = ?, position = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Title,
		p.Start.Format(domain.DateLayout),
		nullableString(p.ParentID),
		p.Position,
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating phase: %w", err)
	}
	return requireAffected(res, "phase "+p.ID)
}

// Delete removes the phase; foreign keys cascade the delete to descendants.
func (r *SQLitePhaseRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting phase: %w", err)
	}
	return requireAffected(res, "phase "+id)
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhase(row rowScanner) (*domain.Phase, error) {
	var p domain.Phase
	var startStr, createdAtStr, updatedAtStr string
	var parentID sql.NullString

	if err := row.Scan(&p.ID, &p.Title, &startStr, &parentID, &p.Position, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}

	var err error
	p.Start, err = domain.ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	p.ParentID = parseNullableString(parentID)
	if p.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPhases(rows *sql.Rows) ([]*domain.Phase, error) {
	var phases []*domain.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning phase row: %w", err)
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phases: %w", err)
	}
	return phases, nil
}

func reversed(in []*domain.Phase) []*domain.Phase {
	out := make([]*domain.Phase, len(in))
	for i, p := range in {
		out[len(in)-1-i] = p
	}
	return out
}
