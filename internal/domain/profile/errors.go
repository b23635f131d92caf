package profile

import "errors"

// Sentinel kinds for profiler errors.
var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrInvalidSignal = errors.New("invalid signal")
	ErrNoItems       = errors.New("session has no items")
)
