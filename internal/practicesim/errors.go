package practicesim

import "errors"

var (
	// ErrInvalidConfig is returned when the run parameters are unusable.
	ErrInvalidConfig = errors.New("invalid practice-sim config")
	// ErrUnexpectedStatus is returned when the service answers with a status the call does not accept.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrNoSubjects is returned when the service exposes no subjects to practice.
	ErrNoSubjects = errors.New("service exposes no subjects")
	// ErrInvariant is returned when a prediction or ingestion result breaks an invariant.
	ErrInvariant = errors.New("invariant violated")
)
