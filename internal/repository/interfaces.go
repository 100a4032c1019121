package repository

import (
	"context"
	"time"

	"github.com/phaseboard/timeline/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = domain.ErrNotFound

// PhaseRepo is the tree store: phases with parent links, ordered by
// position within each sibling group. A nil parentID names the root group.
type PhaseRepo interface {
	Create(ctx context.Context, p *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListChildren(ctx context.Context, parentID *string) ([]*domain.Phase, error)
	ListDescendants(ctx context.Context, id string, includeSelf bool) ([]*domain.Phase, error)
	IsDescendant(ctx context.Context, ancestorID, candidateID string) (bool, error)
	Update(ctx context.Context, p *domain.Phase) error
	Delete(ctx context.Context, id string) error
}

// PositionRepo owns the position sequence of each sibling group.
type PositionRepo interface {
	NextPosition(ctx context.Context, parentID *string) (int, error)
	CompactAfter(ctx context.Context, parentID *string, removed int, at time.Time) error
	SiblingAt(ctx context.Context, parentID *string, position int) (*domain.Phase, error)
	SetPosition(ctx context.Context, id string, position int, at time.Time) error
}

// AccessRepo stores permission groups for the web layer.
type AccessRepo interface {
	EnsureGroup(ctx context.Context, name string, permissions []string) (bool, error)
	GroupPermissions(ctx context.Context, name string) ([]string, error)
}
