package access

import (
	"context"
	"fmt"
	"slices"

	"github.com/phaseboard/timeline/internal/db"
	"github.com/phaseboard/timeline/internal/repository"
)

// Permission names an action on phases.
type Permission string

const (
	ViewPhase   Permission = "view_phase"
	AddPhase    Permission = "add_phase"
	ChangePhase Permission = "change_phase"
	DeletePhase Permission = "delete_phase"
)

// ManagerGroup holds every timeline permission.
const ManagerGroup = "Timeline Manager"

// All returns every timeline permission.
func All() []Permission {
	return []Permission{ViewPhase, AddPhase, ChangePhase, DeletePhase}
}

// Bootstrap creates the manager group on first run. A group that already
// exists is left as is, so permissions revoked by an administrator stay
// revoked. Reports whether the group was created.
func Bootstrap(ctx context.Context, uow db.UnitOfWork) (bool, error) {
	perms := make([]string, 0, len(All()))
	for _, p := range All() {
		perms = append(perms, string(p))
	}

	var created bool
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		created, err = repository.NewSQLiteAccessRepo(tx).EnsureGroup(ctx, ManagerGroup, perms)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("bootstrapping %s: %w", ManagerGroup, err)
	}
	return created, nil
}

// Checker answers permission questions for a group.
type Checker struct {
	groups repository.AccessRepo
}

func NewChecker(groups repository.AccessRepo) *Checker {
	return &Checker{groups: groups}
}

// Allowed reports whether group holds perm. Unknown groups hold nothing.
func (c *Checker) Allowed(ctx context.Context, group string, perm Permission) (bool, error) {
	perms, err := c.groups.GroupPermissions(ctx, group)
	if err != nil {
		return false, err
	}
	return slices.Contains(perms, string(perm)), nil
}
