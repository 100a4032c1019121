package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/repository"
	"github.com/phaseboard/timeline/internal/testutil"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

func setupPhaseService(t *testing.T, opts ...PhaseServiceOption) (PhaseService, *repository.SQLitePhaseRepo, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLitePhaseRepo(database)
	opts = append([]PhaseServiceOption{WithRetryPolicy(fastRetry)}, opts...)
	return NewPhaseService(repo, testutil.NewTestUoW(database), opts...), repo, database
}

func ptr[T any](v T) *T { return &v }

func mustCreate(t *testing.T, svc PhaseService, parentID *string, title string) *domain.Phase {
	t.Helper()
	p, err := svc.CreateNode(context.Background(), parentID, title, testutil.Date(2024, 1, 1))
	require.NoError(t, err)
	return p
}

func childTitles(t *testing.T, svc PhaseService, parentID *string) []string {
	t.Helper()
	kids, err := svc.ListChildren(context.Background(), parentID)
	require.NoError(t, err)
	return testutil.Titles(kids)
}

// snapshot returns every phase, projects first, each tree in pre-order.
func snapshot(t *testing.T, svc PhaseService) []*domain.Phase {
	t.Helper()
	ctx := context.Background()
	projects, err := svc.ListChildren(ctx, nil)
	require.NoError(t, err)
	var all []*domain.Phase
	for _, p := range projects {
		tree, err := svc.ListDescendants(ctx, p.ID, true)
		require.NoError(t, err)
		all = append(all, tree...)
	}
	return all
}

// requireContiguous checks that every sibling group holds positions 0..n-1.
func requireContiguous(t *testing.T, svc PhaseService) {
	t.Helper()
	groups := make(map[string][]int)
	for _, p := range snapshot(t, svc) {
		key := domain.GroupKey(p.ParentID)
		groups[key] = append(groups[key], p.Position)
	}
	for key, positions := range groups {
		require.Equal(t, testutil.Contiguous(len(positions)), positions, "group %s", key)
	}
}
