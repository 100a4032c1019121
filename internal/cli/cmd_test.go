package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phaseboard/timeline/internal/config"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/repository"
	"github.com/phaseboard/timeline/internal/service"
	"github.com/phaseboard/timeline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T, extra ...service.PhaseServiceOption) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLitePhaseRepo(database)
	uow := testutil.NewTestUoW(database)
	opts := []service.PhaseServiceOption{
		service.WithSuite([]string{"Survey", "Design", "Build"}),
		service.WithClock(func() time.Time { return fixedNow }),
	}
	opts = append(opts, extra...)
	cfg := config.DefaultConfig()

	return &App{
		Phases:   service.NewPhaseService(repo, uow, opts...),
		Transfer: service.NewTransferService(repo, uow, opts...),
		Config:   &cfg,
		Now:      func() time.Time { return fixedNow },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func seedProject(t *testing.T, app *App, title string, phases ...string) (*domain.Phase, []*domain.Phase) {
	t.Helper()
	ctx := context.Background()
	p, err := app.Phases.CreateProject(ctx, title, fixedNow.Truncate(24*time.Hour), false)
	require.NoError(t, err)
	var kids []*domain.Phase
	for _, title := range phases {
		k, err := app.Phases.CreateNode(ctx, &p.ID, title, p.Start)
		require.NoError(t, err)
		kids = append(kids, k)
	}
	return p, kids
}

func childTitles(t *testing.T, app *App, parentID *string) []string {
	t.Helper()
	kids, err := app.Phases.ListChildren(context.Background(), parentID)
	require.NoError(t, err)
	return testutil.Titles(kids)
}

// --- project ---

func TestProjectAdd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "add", "--title", "Villa Rossi", "--start", "2024-04-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Villa Rossi")

	projects, err := app.Phases.ListChildren(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "2024-04-02", projects[0].Start.Format(domain.DateLayout))
}

func TestProjectAdd_DefaultsStartToToday(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "add", "--title", "Bridge")
	require.NoError(t, err)

	projects, err := app.Phases.ListChildren(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "2024-03-15", projects[0].Start.Format(domain.DateLayout))
}

func TestProjectAdd_WithSuite(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "add", "--title", "Bridge", "--suite")
	require.NoError(t, err)

	projects, err := app.Phases.ListChildren(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, []string{"Survey", "Design", "Build"}, childTitles(t, app, &projects[0].ID))
}

func TestProjectAdd_SuiteFailureStillReportsProject(t *testing.T) {
	app := testApp(t, service.WithSuite([]string{"Survey", " "}))

	out, err := executeCmd(t, app, "project", "add", "--title", "Bridge", "--suite")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, out, "Created project Bridge")

	projects, err := app.Phases.ListChildren(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, []string{"Survey"}, childTitles(t, app, &projects[0].ID))
}

func TestProjectAdd_TitleRequiredWithoutTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--title is required")
}

func TestProjectAdd_RejectsBadDate(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "add", "--title", "X", "--start", "02/04/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestProjectList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")

	seedProject(t, app, "Alpha")
	seedProject(t, app, "Beta")

	out, err = executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Beta"))
}

func TestProjectShow(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "Survey", "Build")
	_, err := app.Phases.CreateNode(context.Background(), &kids[1].ID, "Foundations", p.Start)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "project", "show", p.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "├─ Survey")
	assert.Contains(t, out, "└─ Build")
	assert.Contains(t, out, "   └─ Foundations")
}

func TestProjectShow_RejectsPhase(t *testing.T) {
	app := testApp(t)
	_, kids := seedProject(t, app, "Alpha", "Survey")

	_, err := executeCmd(t, app, "project", "show", kids[0].ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParent)
}

func TestProjectSuite(t *testing.T) {
	app := testApp(t)
	p, _ := seedProject(t, app, "Alpha", "Kickoff")

	out, err := executeCmd(t, app, "project", "suite", p.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 3 phases: Survey, Design, Build")
	assert.Equal(t, []string{"Kickoff", "Survey", "Design", "Build"}, childTitles(t, app, &p.ID))
}

func TestProjectExportImport(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "Survey", "Build")
	_, err := app.Phases.CreateNode(context.Background(), &kids[0].ID, "Soil tests", p.Start)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "alpha.yaml")
	out, err := executeCmd(t, app, "project", "export", p.ID, "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 4 phases")

	out, err = executeCmd(t, app, "project", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported project Alpha")
	assert.Contains(t, out, "with 3 phases")

	projects, err := app.Phases.ListChildren(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, []string{"Survey", "Build"}, childTitles(t, app, &projects[1].ID))
}

func TestProjectExport_Stdout(t *testing.T) {
	app := testApp(t)
	p, _ := seedProject(t, app, "Alpha", "Survey")

	out, err := executeCmd(t, app, "project", "export", p.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "title: Survey")
}

func TestProjectImport_InvalidDocument(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nproject:\n  title: \"\"\n  start: 2024-01-01\n"), 0o644))

	_, err := executeCmd(t, app, "project", "import", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// --- phase ---

func TestPhaseAdd_AppendsAndInheritsStart(t *testing.T) {
	app := testApp(t)
	p, _ := seedProject(t, app, "Alpha", "Survey")

	out, err := executeCmd(t, app, "phase", "add", "--parent", p.ID, "--title", "Build")
	require.NoError(t, err)
	assert.Contains(t, out, "at position 1")

	kids, err := app.Phases.ListChildren(context.Background(), &p.ID)
	require.NoError(t, err)
	require.Len(t, kids, 2)
	assert.Equal(t, p.Start, kids[1].Start)
}

func TestPhaseAdd_UnknownParent(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "phase", "add", "--parent", "nope", "--title", "Build")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPhaseMove(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "A", "B", "C")

	out, err := executeCmd(t, app, "phase", "up", kids[2].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "C is now at position 1")
	assert.Equal(t, []string{"A", "C", "B"}, childTitles(t, app, &p.ID))

	out, err = executeCmd(t, app, "phase", "down", kids[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "A is now at position 1")
	assert.Equal(t, []string{"C", "A", "B"}, childTitles(t, app, &p.ID))
}

func TestPhaseMove_BoundaryIsNoop(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "A", "B")

	out, err := executeCmd(t, app, "phase", "up", kids[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "A is now at position 0")
	assert.Equal(t, []string{"A", "B"}, childTitles(t, app, &p.ID))
}

func TestPhaseEdit_Reparent(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "A", "B", "C")

	out, err := executeCmd(t, app, "phase", "edit", kids[0].ID, "--parent", kids[2].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "position 0")
	assert.Equal(t, []string{"B", "C"}, childTitles(t, app, &p.ID))
	assert.Equal(t, []string{"A"}, childTitles(t, app, &kids[2].ID))
}

func TestPhaseEdit_Root(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "A", "B")

	_, err := executeCmd(t, app, "phase", "edit", kids[0].ID, "--root")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, childTitles(t, app, &p.ID))
	assert.Equal(t, []string{"Alpha", "A"}, childTitles(t, app, nil))
}

func TestPhaseEdit_CycleRejected(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "A")

	_, err := executeCmd(t, app, "phase", "edit", p.ID, "--parent", kids[0].ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParent)
}

func TestPhaseEdit_TitleAndStart(t *testing.T) {
	app := testApp(t)
	_, kids := seedProject(t, app, "Alpha", "A")

	_, err := executeCmd(t, app, "phase", "edit", kids[0].ID, "--title", "Survey", "--start", "2024-05-01")
	require.NoError(t, err)

	got, err := app.Phases.GetNode(context.Background(), kids[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Survey", got.Title)
	assert.Equal(t, "2024-05-01", got.Start.Format(domain.DateLayout))
}

func TestPhaseEdit_RequiresAChange(t *testing.T) {
	app := testApp(t)
	_, kids := seedProject(t, app, "Alpha", "A")

	_, err := executeCmd(t, app, "phase", "edit", kids[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	_, err = executeCmd(t, app, "phase", "edit", kids[0].ID, "--root", "--parent", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestPhaseRemove(t *testing.T) {
	app := testApp(t)
	p, kids := seedProject(t, app, "Alpha", "A", "B", "C")
	_, err := app.Phases.CreateNode(context.Background(), &kids[1].ID, "B1", p.Start)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "phase", "rm", kids[1].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted B and 1 descendant(s)")

	rest, err := app.Phases.ListChildren(context.Background(), &p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, testutil.Titles(rest))
	assert.Equal(t, []int{0, 1}, testutil.Positions(rest))
}

func TestPhaseShow(t *testing.T) {
	app := testApp(t)
	_, kids := seedProject(t, app, "Alpha", "Survey")

	out, err := executeCmd(t, app, "phase", "show", kids[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "SURVEY")
	assert.Contains(t, out, kids[0].ID)
}

func TestResolvePhaseID_Prefix(t *testing.T) {
	app := testApp(t)
	_, kids := seedProject(t, app, "Alpha", "Survey")
	ctx := context.Background()

	id, err := resolvePhaseID(ctx, app, kids[0].ID[:6])
	require.NoError(t, err)
	assert.Equal(t, kids[0].ID, id)

	_, err = resolvePhaseID(ctx, app, "zzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = resolvePhaseID(ctx, app, "")
	assert.Error(t, err)
}

// --- month / chart ---

func TestMonth_RollsOver(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "month", "2024", "13")
	require.NoError(t, err)
	assert.Contains(t, out, "JANUARY 2025")

	out, err = executeCmd(t, app, "month", "2024", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "DECEMBER 2023")
}

func TestMonth_DefaultsToNow(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "month")
	require.NoError(t, err)
	assert.Contains(t, out, "MARCH 2024")
}

func TestMonth_BadArgs(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "month", "2024")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "month", "2024", "march")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid month")
}

func TestChart(t *testing.T) {
	app := testApp(t)
	p, _ := seedProject(t, app, "Alpha", "Survey")
	seedProject(t, app, "Beta")

	out, err := executeCmd(t, app, "chart", p.ID, "--year", "2024", "--month", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "MARCH 2024")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "  Survey")
	assert.NotContains(t, out, "Beta")

	out, err = executeCmd(t, app, "chart")
	require.NoError(t, err)
	assert.Contains(t, out, "Beta")
}

func TestChart_HidesOtherMonths(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, "Alpha", "Survey")

	out, err := executeCmd(t, app, "chart", "--year", "2023", "--month", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No phases in this month.")

	out, err = executeCmd(t, app, "chart", "--year", "2023", "--month", "1", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
}

// --- view / serve / config ---

func TestView_RequiresTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "view")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a terminal")
}

func TestServe_RequiresHandler(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestConfigInit(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "conf", config.FileName)

	out, err := executeCmd(t, app, "config", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSuite, cfg.Suite)

	_, err = executeCmd(t, app, "config", "init", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCmd(t, app, "config", "init", "--path", path, "--force")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	app := testApp(t)
	app.Config.HTTP.Addr = "0.0.0.0:9999"

	out, err := executeCmd(t, app, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "addr: 0.0.0.0:9999")
	assert.Contains(t, out, "max_retries: 3")
}
