package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/repository"
	"github.com/phaseboard/timeline/internal/testutil"
	"github.com/phaseboard/timeline/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTransfer(t *testing.T) (PhaseService, TransferService) {
	t.Helper()
	svc, repo, database := setupPhaseService(t)
	return svc, NewTransferService(repo, testutil.NewTestUoW(database), WithRetryPolicy(fastRetry))
}

func TestExport_PreservesOrderAndDates(t *testing.T) {
	svc, xfer := setupTransfer(t)
	ctx := context.Background()

	project := createAt(t, svc, nil, "Bridge", 1)
	createAt(t, svc, &project.ID, "Survey", 1)
	design := createAt(t, svc, &project.ID, "Design", 10)
	createAt(t, svc, &design.ID, "Preliminary", 10)
	final := createAt(t, svc, &design.ID, "Final", 20)
	require.NoError(t, svc.MoveUp(ctx, final.ID))

	doc, err := xfer.Export(ctx, project.ID)
	require.NoError(t, err)

	want := &transfer.Document{
		Version: transfer.CurrentVersion,
		Project: transfer.Node{Title: "Bridge", Start: "2024-03-01", Phases: []transfer.Node{
			{Title: "Survey", Start: "2024-03-01"},
			{Title: "Design", Start: "2024-03-10", Phases: []transfer.Node{
				{Title: "Final", Start: "2024-03-20"},
				{Title: "Preliminary", Start: "2024-03-10"},
			}},
		}},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	svc, xfer := setupTransfer(t)
	ctx := context.Background()

	mustCreate(t, svc, nil, "Existing")
	doc := &transfer.Document{Version: 1, Project: transfer.Node{Title: "House", Start: "2024-06-01", Phases: []transfer.Node{
		{Title: "Foundations", Start: "2024-06-01", Phases: []transfer.Node{{Title: "Dig", Start: "2024-06-02"}}},
		{Title: "Walls", Start: "2024-07-01"},
	}}}

	project, err := xfer.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, project.Position)
	assert.True(t, project.IsProject())

	tree, err := svc.ListDescendants(ctx, project.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"House", "Foundations", "Dig", "Walls"}, testutil.Titles(tree))
	requireContiguous(t, svc)

	again, err := xfer.Export(ctx, project.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, again); diff != "" {
		t.Fatalf("round trip mismatch (-imported +exported):\n%s", diff)
	}
}

func TestImport_InvalidDocument(t *testing.T) {
	svc, xfer := setupTransfer(t)

	_, err := xfer.Import(context.Background(), &transfer.Document{Project: transfer.Node{Title: "", Start: "soon"}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "project.title is required")
	assert.Empty(t, snapshot(t, svc))
}

func TestImport_RollsBackOnFailure(t *testing.T) {
	svc, _, database := setupPhaseService(t)
	repo := repository.NewSQLitePhaseRepo(database)
	// One exec per created phase; the third create fails.
	xfer := NewTransferService(repo, &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: errInjected})

	doc := &transfer.Document{Project: transfer.Node{Title: "House", Start: "2024-06-01", Phases: []transfer.Node{
		{Title: "a", Start: "2024-06-01"},
		{Title: "b", Start: "2024-06-02"},
	}}}
	_, err := xfer.Import(context.Background(), doc)
	require.ErrorIs(t, err, errInjected)
	assert.Empty(t, snapshot(t, svc))
}

func TestExport_NotFound(t *testing.T) {
	_, xfer := setupTransfer(t)
	_, err := xfer.Export(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
