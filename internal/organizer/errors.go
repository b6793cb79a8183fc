package organizer

import "errors"

// Common errors returned by the organizer package.
var (
	// ErrTimeout is returned when the optimization pipeline exceeds its
	// overall time bound.
	ErrTimeout = errors.New("workload optimization timed out")

	// ErrInvalidUserID is returned when an operation receives a nil user
	// identifier.
	ErrInvalidUserID = errors.New("invalid user ID")
)
