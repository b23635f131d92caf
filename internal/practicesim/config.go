// Package practicesim drives a running prepscore service with a synthetic
// candidate: it posts practice sessions and mini-game rounds, replays some of
// them to exercise idempotency, then asks for predictions and checks the
// answers against the invariants every prediction must hold.
package practicesim

import (
	"fmt"
	"runtime"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:9080"
	DefaultSessions      = 200
	DefaultGames         = 50
	DefaultItems         = 20
	DefaultPredictions   = 5
	DefaultDuplicateRate = 0.1
	DefaultTimeout       = 30 * time.Second
	DefaultMaxMarks      = 200
	workerMultiplier     = 2
)

// Config holds the run parameters.
type Config struct {
	BaseURL       string        // Base URL of the service
	Sessions      int           // Practice sessions to submit
	Games         int           // Mini-game rounds to submit
	Items         int           // Questions per session
	Predictions   int           // Predictions to request after ingestion
	DuplicateRate float64       // Share of submissions replayed with the same id
	Workers       int           // Concurrent submitters
	Timeout       time.Duration // Per-request timeout
	Seed          int64         // Generator seed; 0 picks one from the clock
	MaxMarks      float64       // Top of the score scale the service uses
	Reset         bool          // Wipe candidate state before the run
	Skill         float64       // Probability a generated answer is correct
}

// DefaultConfig returns a config with every field populated.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Sessions:      DefaultSessions,
		Games:         DefaultGames,
		Items:         DefaultItems,
		Predictions:   DefaultPredictions,
		DuplicateRate: DefaultDuplicateRate,
		Workers:       runtime.NumCPU() * workerMultiplier,
		Timeout:       DefaultTimeout,
		MaxMarks:      DefaultMaxMarks,
		Skill:         0.65,
	}
}

// Validate checks the config for values the runner cannot work with.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url must not be empty", ErrInvalidConfig)
	case c.Sessions < 0 || c.Games < 0 || c.Predictions < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidConfig)
	case c.Items <= 0:
		return fmt.Errorf("%w: items must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.DuplicateRate < 0 || c.DuplicateRate > 1:
		return fmt.Errorf("%w: duplicate rate must be within [0,1]", ErrInvalidConfig)
	case c.Skill < 0 || c.Skill > 1:
		return fmt.Errorf("%w: skill must be within [0,1]", ErrInvalidConfig)
	case c.MaxMarks <= 0:
		return fmt.Errorf("%w: max marks must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	SessionsGenerated int
	GamesGenerated    int
	Submitted         int
	Created           int
	Duplicates        int
	Replayed          int
	Failed            int
	Predictions       int
	Violations        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
