package service

import (
	"context"
	"time"

	"github.com/phaseboard/timeline/internal/calendar"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/transfer"
)

// PhaseUpdate carries the optional fields of an edit. Nil fields are left
// unchanged.
type PhaseUpdate struct {
	Title  *string
	Start  *time.Time
	Parent *ParentChange
}

// ParentChange requests a new parent. A nil ParentID turns the phase into a
// project.
type ParentChange struct {
	ParentID *string
}

// PhaseService is the core API the web layer and the CLI call into. Every
// mutation runs as one transaction over the affected sibling groups.
type PhaseService interface {
	CreateNode(ctx context.Context, parentID *string, title string, start time.Time) (*domain.Phase, error)
	CreateProject(ctx context.Context, title string, start time.Time, withSuite bool) (*domain.Phase, error)
	CreateSuite(ctx context.Context, projectID string) ([]*domain.Phase, error)
	UpdateNode(ctx context.Context, id string, upd PhaseUpdate) (*domain.Phase, error)
	DeleteNode(ctx context.Context, id string) error
	MoveUp(ctx context.Context, id string) error
	MoveDown(ctx context.Context, id string) error

	GetNode(ctx context.Context, id string) (*domain.Phase, error)
	ListChildren(ctx context.Context, parentID *string) ([]*domain.Phase, error)
	ListDescendants(ctx context.Context, rootID string, includeSelf bool) ([]*domain.Phase, error)
	MonthGrid(year, month int) calendar.MonthGrid
	Chart(ctx context.Context, rootID *string, year, month int) (*Chart, error)
}

// TransferService moves whole project trees in and out as YAML documents.
type TransferService interface {
	Export(ctx context.Context, projectID string) (*transfer.Document, error)
	Import(ctx context.Context, doc *transfer.Document) (*domain.Phase, error)
}
