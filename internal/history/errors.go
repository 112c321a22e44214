package history

import "errors"

var (
	// ErrNoPreviousVersion is returned by Undo on an empty past.
	ErrNoPreviousVersion = errors.New("no previous version")
	// ErrNoFutureVersion is returned by Redo on an empty future.
	ErrNoFutureVersion = errors.New("no future version")
	// ErrConflict is returned when the base version or stack revision moved.
	ErrConflict = errors.New("history changed concurrently")
	// ErrNotFound is returned when a version does not exist.
	ErrNotFound = errors.New("version not found")
)
