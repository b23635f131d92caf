// Package config defines service configuration structures and loading hooks.
//
// Keys are flat snake_case at the top level; the simulator and profiler
// blocks nest one level. New returns the defaults, Load layers a YAML file
// and PREPSCORE_* environment variables on top.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/predict"
	"github.com/okian/prepscore/internal/domain/profile"
	"github.com/okian/prepscore/internal/domain/taxonomy"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the simulator request queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of simulator workers.
	WorkerCount int `koanf:"worker_count"`
	// SimulatorTimeout bounds one prediction round trip.
	SimulatorTimeout time.Duration `koanf:"simulator_timeout"`
	// PingTimeout bounds the simulator health check.
	PingTimeout time.Duration `koanf:"ping_timeout"`

	// DedupeSize sets the size of the telemetry id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreDriver picks the persistence backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`
	// StorePath is the sqlite database file.
	StorePath string `koanf:"store_path"`
	// CandidateID keys the persisted behavioral profile.
	CandidateID string `koanf:"candidate_id"`

	Simulator predict.Config `koanf:"simulator"`
	Profiler  Profiler       `koanf:"profiler"`

	// Subjects overrides the built-in taxonomy when non-empty.
	Subjects []model.SubjectDefinition `koanf:"subjects"`
}

// Profiler holds the behavioral profiler learning constants.
type Profiler struct {
	PassiveRate     float64 `koanf:"passive_rate"`
	ActiveRate      float64 `koanf:"active_rate"`
	IdleDecayFactor float64 `koanf:"idle_decay_factor"`
	ConfidenceStep  float64 `koanf:"confidence_step"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      runtime.NumCPU(),
		SimulatorTimeout: 10 * time.Second,
		PingTimeout:      time.Second,
		DedupeSize:       100_000,
		StoreDriver:      StoreMemory,
		StorePath:        "data/prepscore.db",
		CandidateID:      "default",
		Simulator:        predict.DefaultConfig(),
		Profiler: Profiler{
			PassiveRate:     profile.DefaultPassiveRate,
			ActiveRate:      profile.DefaultActiveRate,
			IdleDecayFactor: profile.DefaultIdleDecayFactor,
			ConfidenceStep:  profile.DefaultConfidenceStep,
		},
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.SimulatorTimeout <= 0 || c.PingTimeout <= 0:
		return fmt.Errorf("%w: simulator timeouts must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StoreSQLite && c.StorePath == "":
		return fmt.Errorf("%w: store_path is required for sqlite", ErrInvalidConfig)
	case c.CandidateID == "":
		return fmt.Errorf("%w: candidate_id must not be empty", ErrInvalidConfig)
	case !unit(c.Profiler.PassiveRate) || !unit(c.Profiler.ActiveRate):
		return fmt.Errorf("%w: profiler rates must be within (0,1]", ErrInvalidConfig)
	case c.Profiler.IdleDecayFactor <= 0 || c.Profiler.IdleDecayFactor >= 1:
		return fmt.Errorf("%w: idle_decay_factor must be within (0,1)", ErrInvalidConfig)
	case c.Profiler.ConfidenceStep <= 0 || c.Profiler.ConfidenceStep >= 1:
		return fmt.Errorf("%w: confidence_step must be within (0,1)", ErrInvalidConfig)
	}
	if err := c.Simulator.Validate(); err != nil {
		return fmt.Errorf("%w: simulator: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Taxonomy(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Taxonomy builds the subject taxonomy: the configured subjects, or the built-in set.
func (c *Config) Taxonomy() (*taxonomy.Taxonomy, error) {
	if len(c.Subjects) == 0 {
		return taxonomy.New(taxonomy.Default())
	}
	return taxonomy.New(c.Subjects)
}

func unit(v float64) bool {
	return v > 0 && v <= 1
}
