package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/phaseboard/timeline/internal/db"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendInTx allocates the next position under parentID and inserts a phase
// there, all inside one write transaction.
func appendInTx(ctx context.Context, uow db.UnitOfWork, parentID *string, title string) error {
	return uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		pos, err := NewSQLitePositionRepo(tx).NextPosition(ctx, parentID)
		if err != nil {
			return err
		}
		opts := []testutil.PhaseOption{testutil.WithPosition(pos)}
		if parentID != nil {
			opts = append(opts, testutil.WithParentID(*parentID))
		}
		return NewSQLitePhaseRepo(tx).Create(ctx, testutil.NewTestPhase(title, opts...))
	})
}

func retryContention(fn func() error) error {
	const maxRetries = 10
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = fn(); !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 5 * time.Millisecond)
	}
	return err
}

func requireSequence(t *testing.T, phases []*domain.Phase) {
	t.Helper()
	require.Equal(t, testutil.Contiguous(len(phases)), testutil.Positions(phases))
}

// Concurrent appends to one sibling group must still hand out 0..n-1.
func TestConcurrentAccess_AppendsStayContiguous(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	uow := db.NewSQLiteUnitOfWork(database)
	repo := NewSQLitePhaseRepo(database)
	ctx := context.Background()

	project := testutil.SeedChildren(t, repo, nil, "Project")[0]

	const writers, perWriter = 8, 5
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				title := fmt.Sprintf("w%d-%d", w, i)
				if err := retryContention(func() error { return appendInTx(ctx, uow, &project.ID, title) }); err != nil {
					t.Errorf("writer %d: %v", w, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	kids, err := repo.ListChildren(ctx, &project.ID)
	require.NoError(t, err)
	assert.Len(t, kids, writers*perWriter)
	requireSequence(t, kids)
}

// Readers running during appends only ever see a gap-free prefix.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	uow := db.NewSQLiteUnitOfWork(database)
	repo := NewSQLitePhaseRepo(database)
	ctx := context.Background()

	project := testutil.SeedChildren(t, repo, nil, "Project")[0]

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if err := retryContention(func() error { return appendInTx(ctx, uow, &project.ID, fmt.Sprintf("P%d", i)) }); err != nil {
				t.Errorf("writer: phase %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				kids, err := repo.ListChildren(ctx, &project.ID)
				if err != nil {
					t.Errorf("reader %d: %v", reader, err)
					return
				}
				if !slices.Equal(testutil.Contiguous(len(kids)), testutil.Positions(kids)) {
					t.Errorf("reader %d: positions %v", reader, testutil.Positions(kids))
				}
			}
		}(r)
	}

	wg.Wait()

	kids, err := repo.ListChildren(ctx, &project.ID)
	require.NoError(t, err)
	assert.Len(t, kids, 20)
}

// A swap is two updates; readers must never observe the halfway state.
func TestConcurrentAccess_SwapIsAtomicForReaders(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	uow := db.NewSQLiteUnitOfWork(database)
	repo := NewSQLitePhaseRepo(database)
	ctx := context.Background()

	project := testutil.SeedChildren(t, repo, nil, "Project")[0]
	pair := testutil.SeedChildren(t, repo, &project.ID, "A", "B")

	swap := func() error {
		return uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			positions := NewSQLitePositionRepo(tx)
			a, err := NewSQLitePhaseRepo(tx).GetByID(ctx, pair[0].ID)
			if err != nil {
				return err
			}
			if err := positions.SetPosition(ctx, pair[0].ID, 1-a.Position, time.Now()); err != nil {
				return err
			}
			return positions.SetPosition(ctx, pair[1].ID, a.Position, time.Now())
		})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 30; i++ {
			if err := retryContention(swap); err != nil {
				t.Errorf("swap %d: %v", i, err)
				return
			}
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				kids, err := repo.ListChildren(ctx, &project.ID)
				if err != nil {
					t.Errorf("reader %d: %v", reader, err)
					return
				}
				if !slices.Equal([]int{0, 1}, testutil.Positions(kids)) {
					t.Errorf("reader %d: saw positions %v", reader, testutil.Positions(kids))
				}
			}
		}(r)
	}
	wg.Wait()

	kids, err := repo.ListChildren(ctx, &project.ID)
	require.NoError(t, err)
	// 30 swaps is an even number.
	assert.Equal(t, []string{"A", "B"}, testutil.Titles(kids))
}

