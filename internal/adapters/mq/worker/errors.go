package worker

import "errors"

// Sentinel errors returned by the Client.
var (
	ErrTimeout       = errors.New("simulator did not respond in time")
	ErrUnavailable   = errors.New("simulator unavailable")
	ErrSimulator     = errors.New("simulator error")
	ErrUnexpectedAck = errors.New("unexpected simulator status")
)
