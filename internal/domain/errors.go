package domain

import "errors"

var (
	// ErrNotFound indicates a referenced phase does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParent indicates a parent assignment that would make a phase
	// its own ancestor.
	ErrInvalidParent = errors.New("invalid parent")

	// ErrInvalidInput indicates a request the core refuses before touching
	// the store, such as an empty title.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConcurrentModification indicates the store rejected a write because
	// another transaction held the sibling group.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrStoreUnavailable indicates the store could not start or finish a
	// transaction for reasons other than contention.
	ErrStoreUnavailable = errors.New("store unavailable")
)
