package predict

import "errors"

var (
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid simulator config")
	// ErrNoSnapshot is returned when a prediction is requested without data.
	ErrNoSnapshot = errors.New("prediction snapshot missing")
)
