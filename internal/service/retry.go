package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phaseboard/timeline/internal/domain"
)

// RetryPolicy bounds how often a mutation is re-run after losing a sibling
// group to a concurrent writer.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy retries a conflicting transaction twice.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 25 * time.Millisecond}

// run executes fn until it succeeds, fails with anything other than
// domain.ErrConcurrentModification, or runs out of attempts. It returns the
// number of attempts made.
func (p RetryPolicy) run(ctx context.Context, fn func() error) (int, error) {
	attempts := max(p.Attempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConcurrentModification) {
			return i, err
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return i, fmt.Errorf("%w (retry cancelled: %v)", err, ctx.Err())
		case <-time.After(p.Backoff * time.Duration(i)):
		}
	}
	return attempts, fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}
