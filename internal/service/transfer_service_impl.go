package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phaseboard/timeline/internal/db"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/repository"
	"github.com/phaseboard/timeline/internal/transfer"
)

type transferService struct {
	engine *phaseService
}

// NewTransferService shares the phase engine's options so imports allocate
// positions and report use cases the same way CreateNode does.
func NewTransferService(phases repository.PhaseRepo, uow db.UnitOfWork, opts ...PhaseServiceOption) TransferService {
	return &transferService{engine: newPhaseService(phases, uow, opts...)}
}

func (s *transferService) Export(ctx context.Context, projectID string) (doc *transfer.Document, err error) {
	fields := map[string]any{"project": projectID}
	defer track(ctx, s.engine.observer, "export", fields)(&err)

	tree, err := s.engine.phases.ListDescendants(ctx, projectID, true)
	if err != nil {
		return nil, err
	}

	// Pre-order with siblings in position order, so appending each node
	// to its parent's list reproduces the ordering.
	nodes := make(map[string]*transfer.Node, len(tree))
	var root *transfer.Node
	for _, p := range tree {
		n := &transfer.Node{Title: p.Title, Start: p.Start.Format(domain.DateLayout)}
		nodes[p.ID] = n
		if root == nil {
			root = n
		}
	}
	for i := len(tree) - 1; i > 0; i-- {
		p := tree[i]
		parent := nodes[*p.ParentID]
		parent.Phases = append([]transfer.Node{*nodes[p.ID]}, parent.Phases...)
	}
	fields["nodes"] = len(tree)
	return &transfer.Document{Version: transfer.CurrentVersion, Project: *root}, nil
}

// Import creates the document's tree as a new project in one transaction.
func (s *transferService) Import(ctx context.Context, doc *transfer.Document) (project *domain.Phase, err error) {
	fields := map[string]any{}
	defer track(ctx, s.engine.observer, "import", fields)(&err)

	if errs := transfer.Validate(doc); len(errs) > 0 {
		return nil, fmt.Errorf("invalid document: %w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	fields["nodes"] = doc.Project.Count()

	err = s.engine.mutate(ctx, fields, func(ctx context.Context, tx db.DBTX) error {
		type pending struct {
			parentID *string
			node     transfer.Node
		}
		stack := []pending{{node: doc.Project}}
		project = nil
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			start, _ := time.Parse(domain.DateLayout, cur.node.Start)
			p, err := s.engine.createInTx(ctx, tx, cur.parentID, cur.node.Title, start)
			if err != nil {
				return err
			}
			if project == nil {
				project = p
			}
			for i := len(cur.node.Phases) - 1; i >= 0; i-- {
				stack = append(stack, pending{parentID: &p.ID, node: cur.node.Phases[i]})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["project"] = project.ID
	return project, nil
}
