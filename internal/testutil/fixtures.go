package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phaseboard/timeline/internal/domain"
)

// Phase options
type PhaseOption func(*domain.Phase)

func WithParentID(id string) PhaseOption {
	return func(p *domain.Phase) {
		p.ParentID = &id
	}
}

func WithPosition(pos int) PhaseOption {
	return func(p *domain.Phase) {
		p.Position = pos
	}
}

func WithStart(d time.Time) PhaseOption {
	return func(p *domain.Phase) {
		p.Start = d
	}
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func NewTestPhase(title string, opts ...PhaseOption) *domain.Phase {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Phase{
		ID:        uuid.New().String(),
		Title:     title,
		Start:     Date(2024, time.January, 1),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type phaseCreator interface {
	Create(ctx context.Context, p *domain.Phase) error
}

// SeedChildren inserts phases with the given titles under parentID at
// positions 0..n-1 directly through the repository.
func SeedChildren(t *testing.T, repo phaseCreator, parentID *string, titles ...string) []*domain.Phase {
	t.Helper()
	ctx := context.Background()
	out := make([]*domain.Phase, 0, len(titles))
	for i, title := range titles {
		opts := []PhaseOption{WithPosition(i)}
		if parentID != nil {
			opts = append(opts, WithParentID(*parentID))
		}
		p := NewTestPhase(title, opts...)
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("seeding phase %q: %v", title, err)
		}
		out = append(out, p)
	}
	return out
}

// Titles returns the titles of phases in order.
func Titles(phases []*domain.Phase) []string {
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.Title
	}
	return out
}

// Positions returns the positions of phases in order.
func Positions(phases []*domain.Phase) []int {
	out := make([]int, len(phases))
	for i, p := range phases {
		out[i] = p.Position
	}
	return out
}

// Contiguous returns 0..n-1.
func Contiguous(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
