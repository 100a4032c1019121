package access

import (
	"context"
	"testing"

	"github.com/phaseboard/timeline/internal/repository"
	"github.com/phaseboard/timeline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_CreatesManagerGroupOnce(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	created, err := Bootstrap(ctx, uow)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = Bootstrap(ctx, uow)
	require.NoError(t, err)
	assert.False(t, created)

	perms, err := repository.NewSQLiteAccessRepo(database).GroupPermissions(ctx, ManagerGroup)
	require.NoError(t, err)
	assert.Equal(t, []string{"add_phase", "change_phase", "delete_phase", "view_phase"}, perms)
}

func TestBootstrap_KeepsRevokedPermissions(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	_, err := Bootstrap(ctx, uow)
	require.NoError(t, err)
	_, err = database.ExecContext(ctx,
		`DELETE FROM access_group_permissions WHERE group_name = ? AND permission = ?`,
		ManagerGroup, string(DeletePhase))
	require.NoError(t, err)

	_, err = Bootstrap(ctx, uow)
	require.NoError(t, err)

	checker := NewChecker(repository.NewSQLiteAccessRepo(database))
	ok, err := checker.Allowed(ctx, ManagerGroup, DeletePhase)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChecker_Allowed(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	_, err := Bootstrap(ctx, testutil.NewTestUoW(database))
	require.NoError(t, err)

	checker := NewChecker(repository.NewSQLiteAccessRepo(database))
	for _, perm := range All() {
		ok, err := checker.Allowed(ctx, ManagerGroup, perm)
		require.NoError(t, err)
		assert.True(t, ok, "manager should hold %s", perm)
	}

	ok, err := checker.Allowed(ctx, "Visitors", ViewPhase)
	require.NoError(t, err)
	assert.False(t, ok)
}
