package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phaseboard/timeline/internal/calendar"
	"github.com/phaseboard/timeline/internal/db"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/repository"
)

type phaseService struct {
	phases   repository.PhaseRepo
	uow      db.UnitOfWork
	suite    []string
	retry    RetryPolicy
	observer UseCaseObserver
	now      func() time.Time
}

// PhaseServiceOption customizes a PhaseService.
type PhaseServiceOption func(*phaseService)

// WithSuite replaces the phase titles CreateSuite creates.
func WithSuite(titles []string) PhaseServiceOption {
	return func(s *phaseService) {
		s.suite = append([]string(nil), titles...)
	}
}

// WithRetryPolicy sets how conflicting transactions are retried.
func WithRetryPolicy(p RetryPolicy) PhaseServiceOption {
	return func(s *phaseService) {
		s.retry = p
	}
}

// WithObservers attaches use-case observers.
func WithObservers(observers ...UseCaseObserver) PhaseServiceOption {
	return func(s *phaseService) {
		s.observer = useCaseObserverOrNoop(observers)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) PhaseServiceOption {
	return func(s *phaseService) {
		s.now = now
	}
}

// NewPhaseService wires the tree engine. phases serves reads outside
// transactions; mutations build tx-scoped repositories from uow.
func NewPhaseService(phases repository.PhaseRepo, uow db.UnitOfWork, opts ...PhaseServiceOption) PhaseService {
	return newPhaseService(phases, uow, opts...)
}

func newPhaseService(phases repository.PhaseRepo, uow db.UnitOfWork, opts ...PhaseServiceOption) *phaseService {
	s := &phaseService{
		phases:   phases,
		uow:      uow,
		suite:    domain.DefaultSuite,
		retry:    DefaultRetryPolicy,
		observer: NoopUseCaseObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate runs fn in a transaction, retrying on contention.
func (s *phaseService) mutate(ctx context.Context, fields map[string]any, fn func(ctx context.Context, tx db.DBTX) error) error {
	attempts, err := s.retry.run(ctx, func() error {
		return s.uow.WithinTx(ctx, fn)
	})
	fields["attempts"] = attempts
	return err
}

func (s *phaseService) CreateNode(ctx context.Context, parentID *string, title string, start time.Time) (phase *domain.Phase, err error) {
	fields := map[string]any{"group": domain.GroupKey(parentID)}
	defer track(ctx, s.observer, "create-node", fields)(&err)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("phase title is required: %w", domain.ErrInvalidInput)
	}

	err = s.mutate(ctx, fields, func(ctx context.Context, tx db.DBTX) error {
		phase, err = s.createInTx(ctx, tx, parentID, title, start)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["id"] = phase.ID
	fields["position"] = phase.Position
	return phase, nil
}

// createInTx appends a phase to the end of its sibling group.
func (s *phaseService) createInTx(ctx context.Context, tx db.DBTX, parentID *string, title string, start time.Time) (*domain.Phase, error) {
	phases := repository.NewSQLitePhaseRepo(tx)
	positions := repository.NewSQLitePositionRepo(tx)

	if parentID != nil {
		if _, err := phases.GetByID(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
	}
	pos, err := positions.NextPosition(ctx, parentID)
	if err != nil {
		return nil, err
	}

	now := s.stamp()
	p := &domain.Phase{
		ID:        uuid.New().String(),
		Title:     title,
		Start:     domain.DateOf(start),
		ParentID:  copyID(parentID),
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := phases.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *phaseService) CreateProject(ctx context.Context, title string, start time.Time, withSuite bool) (*domain.Phase, error) {
	project, err := s.CreateNode(ctx, nil, title, start)
	if err != nil {
		return nil, err
	}
	if withSuite {
		if _, err := s.CreateSuite(ctx, project.ID); err != nil {
			return project, fmt.Errorf("creating suite for %s: %w", project.Title, err)
		}
	}
	return project, nil
}

// CreateSuite appends the configured suite phases to a project, one
// CreateNode per title in order, each starting on the project's start date.
func (s *phaseService) CreateSuite(ctx context.Context, projectID string) (created []*domain.Phase, err error) {
	fields := map[string]any{"project": projectID, "size": len(s.suite)}
	defer track(ctx, s.observer, "create-suite", fields)(&err)

	project, err := s.phases.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsProject() {
		return nil, fmt.Errorf("suite target %s is not a project: %w", projectID, domain.ErrInvalidParent)
	}

	created = make([]*domain.Phase, 0, len(s.suite))
	for _, title := range s.suite {
		p, err := s.CreateNode(ctx, &project.ID, title, project.Start)
		if err != nil {
			return created, err
		}
		created = append(created, p)
	}
	return created, nil
}

func (s *phaseService) UpdateNode(ctx context.Context, id string, upd PhaseUpdate) (phase *domain.Phase, err error) {
	fields := map[string]any{"id": id}
	defer track(ctx, s.observer, "update-node", fields)(&err)

	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, fmt.Errorf("phase title is required: %w", domain.ErrInvalidInput)
	}

	err = s.mutate(ctx, fields, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)
		positions := repository.NewSQLitePositionRepo(tx)

		p, err := phases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		now := s.stamp()
		if upd.Title != nil {
			p.Title = strings.TrimSpace(*upd.Title)
		}
		if upd.Start != nil {
			p.Start = domain.DateOf(*upd.Start)
		}

		if upd.Parent != nil && !p.SameParent(upd.Parent.ParentID) {
			newParent := upd.Parent.ParentID
			if err := s.checkParent(ctx, phases, p.ID, newParent); err != nil {
				return err
			}
			fields["from"] = domain.GroupKey(p.ParentID)
			fields["to"] = domain.GroupKey(newParent)

			// Leave the old group first so its positions stay contiguous,
			// then take the end of the new group.
			if err := positions.CompactAfter(ctx, p.ParentID, p.Position, now); err != nil {
				return err
			}
			pos, err := positions.NextPosition(ctx, newParent)
			if err != nil {
				return err
			}
			p.ParentID = copyID(newParent)
			p.Position = pos
		}

		p.UpdatedAt = now
		if err := phases.Update(ctx, p); err != nil {
			return err
		}
		phase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return phase, nil
}

// checkParent rejects a parent that does not exist or that would put the
// phase inside its own subtree.
func (s *phaseService) checkParent(ctx context.Context, phases repository.PhaseRepo, id string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return fmt.Errorf("phase %s cannot be its own parent: %w", id, domain.ErrInvalidParent)
	}
	if _, err := phases.GetByID(ctx, *parentID); err != nil {
		return fmt.Errorf("parent: %w", err)
	}
	below, err := phases.IsDescendant(ctx, id, *parentID)
	if err != nil {
		return err
	}
	if below {
		return fmt.Errorf("phase %s cannot move under its descendant %s: %w", id, *parentID, domain.ErrInvalidParent)
	}
	return nil
}

// DeleteNode removes a phase and its subtree, compacting the group it leaves.
func (s *phaseService) DeleteNode(ctx context.Context, id string) (err error) {
	fields := map[string]any{"id": id}
	defer track(ctx, s.observer, "delete-node", fields)(&err)

	return s.mutate(ctx, fields, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)
		positions := repository.NewSQLitePositionRepo(tx)

		p, err := phases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		fields["group"] = domain.GroupKey(p.ParentID)
		fields["position"] = p.Position

		if err := positions.CompactAfter(ctx, p.ParentID, p.Position, s.stamp()); err != nil {
			return err
		}
		return phases.Delete(ctx, p.ID)
	})
}

func (s *phaseService) MoveUp(ctx context.Context, id string) (err error) {
	fields := map[string]any{"id": id}
	defer track(ctx, s.observer, "move-up", fields)(&err)
	return s.move(ctx, id, -1, fields)
}

func (s *phaseService) MoveDown(ctx context.Context, id string) (err error) {
	fields := map[string]any{"id": id}
	defer track(ctx, s.observer, "move-down", fields)(&err)
	return s.move(ctx, id, +1, fields)
}

// move swaps the phase with the sibling at position+delta. A missing
// neighbour means the phase is already at that end: nothing changes.
func (s *phaseService) move(ctx context.Context, id string, delta int, fields map[string]any) error {
	return s.mutate(ctx, fields, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)
		positions := repository.NewSQLitePositionRepo(tx)

		p, err := phases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		target := p.Position + delta
		fields["moved"] = false
		if target < 0 {
			return nil
		}
		neighbour, err := positions.SiblingAt(ctx, p.ParentID, target)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := s.stamp()
		if err := positions.SetPosition(ctx, p.ID, target, now); err != nil {
			return err
		}
		if err := positions.SetPosition(ctx, neighbour.ID, p.Position, now); err != nil {
			return err
		}
		fields["moved"] = true
		return nil
	})
}

func (s *phaseService) GetNode(ctx context.Context, id string) (*domain.Phase, error) {
	return s.phases.GetByID(ctx, id)
}

func (s *phaseService) ListChildren(ctx context.Context, parentID *string) ([]*domain.Phase, error) {
	if parentID != nil {
		if _, err := s.phases.GetByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	return s.phases.ListChildren(ctx, parentID)
}

func (s *phaseService) ListDescendants(ctx context.Context, rootID string, includeSelf bool) ([]*domain.Phase, error) {
	return s.phases.ListDescendants(ctx, rootID, includeSelf)
}

func (s *phaseService) MonthGrid(year, month int) calendar.MonthGrid {
	return calendar.NewMonthGrid(year, month)
}

// stamp is the service clock at storage precision.
func (s *phaseService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
