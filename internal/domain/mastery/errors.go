package mastery

import "errors"

// Sentinel kinds for mastery errors.
var (
	ErrUnknownSubject = errors.New("unknown subject")
	ErrEmptySession   = errors.New("session has no items")
)
