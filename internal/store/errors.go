package store

import "errors"

var (
	// ErrLocked indicates another process holds the data directory.
	ErrLocked = errors.New("cinelist data directory is in use by another process")
	// ErrInvalidState indicates a state that breaks list exclusivity or
	// suggestion uniqueness.
	ErrInvalidState = errors.New("invalid state")
)
