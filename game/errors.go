package game

import "errors"

var (
	// ErrSessionNotFound is returned when no running session has the given ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the session manager is at capacity.
	ErrTooManySessions = errors.New("too many sessions")
)
