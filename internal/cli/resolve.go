package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/phaseboard/timeline/internal/domain"
)

// allPhases returns every phase, projects in position order, each project
// followed by its subtree in pre-order.
func allPhases(ctx context.Context, app *App) ([]*domain.Phase, error) {
	projects, err := app.Phases.ListChildren(ctx, nil)
	if err != nil {
		return nil, err
	}
	var out []*domain.Phase
	for _, p := range projects {
		tree, err := app.Phases.ListDescendants(ctx, p.ID, true)
		if err != nil {
			return nil, err
		}
		out = append(out, tree...)
	}
	return out, nil
}

// resolvePhaseID accepts a full ID or an unambiguous ID prefix.
func resolvePhaseID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("phase ID is required")
	}
	if p, err := app.Phases.GetNode(ctx, input); err == nil {
		return p.ID, nil
	}

	phases, err := allPhases(ctx, app)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, p := range phases {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("phase %q: %w", input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("phase ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveProjectID is resolvePhaseID restricted to projects.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	id, err := resolvePhaseID(ctx, app, input)
	if err != nil {
		return "", err
	}
	p, err := app.Phases.GetNode(ctx, id)
	if err != nil {
		return "", err
	}
	if !p.IsProject() {
		return "", fmt.Errorf("%s is a phase, not a project: %w", p.Title, domain.ErrInvalidParent)
	}
	return p.ID, nil
}
