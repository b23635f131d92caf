package service

import (
	"time"

	"github.com/okian/prepscore/internal/adapters/repository"
	"github.com/okian/prepscore/internal/domain/predict"
	"github.com/okian/prepscore/internal/domain/profile"
	"github.com/okian/prepscore/internal/domain/taxonomy"
	"github.com/okian/prepscore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of simulator workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the simulator request queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the telemetry id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the persistence backend. The service closes it on Stop.
func WithStore(store repository.Store, driver string) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.storeDriver = driver
		}
	}
}

// WithTaxonomy replaces the built-in subject taxonomy.
func WithTaxonomy(tx *taxonomy.Taxonomy) Option {
	return func(s *Service) {
		if tx != nil {
			s.taxonomy = tx
		}
	}
}

// WithSimulatorConfig sets the prediction engine configuration.
func WithSimulatorConfig(cfg predict.Config) Option {
	return func(s *Service) {
		s.simulatorConfig = cfg
	}
}

// WithSimulatorTimeouts sets the prediction and health check deadlines.
func WithSimulatorTimeouts(predictTimeout, pingTimeout time.Duration) Option {
	return func(s *Service) {
		if predictTimeout > 0 {
			s.simulatorTimeout = predictTimeout
		}
		if pingTimeout > 0 {
			s.pingTimeout = pingTimeout
		}
	}
}

// WithProfilerOptions passes learning constants to the behavioral profiler.
func WithProfilerOptions(opts ...profile.Option) Option {
	return func(s *Service) {
		s.profilerOpts = append(s.profilerOpts, opts...)
	}
}

// WithCandidateID sets the key the behavioral profile is stored under.
func WithCandidateID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.candidateID = id
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
