// Package service coordinates the candidate state (mastery tracker and
// behavioral profiler), its persistence, and the simulator worker pool.
// It implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/prepscore/internal/adapters/mq/queue"
	"github.com/okian/prepscore/internal/adapters/mq/worker"
	"github.com/okian/prepscore/internal/adapters/repository"
	"github.com/okian/prepscore/internal/domain/dedupe"
	"github.com/okian/prepscore/internal/domain/mastery"
	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/predict"
	"github.com/okian/prepscore/internal/domain/profile"
	"github.com/okian/prepscore/internal/domain/taxonomy"
	"github.com/okian/prepscore/pkg/logger"
	"github.com/okian/prepscore/pkg/metrics"
)

// Service owns one candidate's state and the simulator that scores it.
type Service struct {
	mu sync.RWMutex

	// state serializes every read-modify-write of tracker and profiler.
	state    sync.Mutex
	tracker  *mastery.Tracker
	profiler *profile.Profiler

	// Core components
	taxonomy *taxonomy.Taxonomy
	store    repository.Store
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	engine   *predict.Engine
	client   *worker.Client
	pool     *worker.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	candidateID      string
	storeDriver      string
	simulatorConfig  predict.Config
	simulatorTimeout time.Duration
	pingTimeout      time.Duration
	profilerOpts     []profile.Option
	now              func() time.Time

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSize:        1024,
		dedupeSize:       100_000,
		candidateID:      "default",
		storeDriver:      "memory",
		simulatorConfig:  predict.DefaultConfig(),
		simulatorTimeout: 10 * time.Second,
		pingTimeout:      time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.taxonomy == nil {
		s.taxonomy = taxonomy.MustDefault()
	}
	s.tracker = mastery.NewTracker(s.taxonomy)
	s.profiler = profile.New(s.profilerOpts...)
	return s
}

// Start loads persisted state and starts the simulator workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting prepscore service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if err := s.load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.engine = predict.NewEngine(predict.WithConfig(s.simulatorConfig))
	s.client = worker.NewClient(s.queue,
		worker.WithTimeout(s.simulatorTimeout),
		worker.WithPingTimeout(s.pingTimeout),
	)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.engine, s.client)

	// Workers outlive the request that started the service.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "prepscore service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("candidate", s.candidateID),
	)
	return nil
}

// Stop drains the workers and closes the store.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping prepscore service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "prepscore service stopped")
}

// Started reports whether Start has completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// load restores tracker and profiler from the store. Entries that cannot be
// decoded or refer to unknown subjects are skipped with a warning.
func (s *Service) load(ctx context.Context) error {
	records, skipped, err := repository.GetAllJSON[model.MasteryRecord](ctx, s.store, repository.BucketMastery)
	if err != nil {
		return err
	}
	list := make([]model.MasteryRecord, 0, len(records))
	for key, rec := range records {
		if rec.SubjectID == "" {
			rec.SubjectID = key
		}
		list = append(list, rec)
	}

	prof, err := repository.GetJSON[model.BehavioralProfile](ctx, s.store, repository.BucketProfile, s.candidateID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		prof = model.NewBehavioralProfile()
	case err != nil:
		s.logger.Warn(ctx, "stored profile unreadable, starting from prior", logger.Error(err))
		prof = model.NewBehavioralProfile()
	}

	s.state.Lock()
	dropped := s.tracker.Load(list)
	s.profiler.Load(prof)
	tracked := len(s.tracker.Records())
	s.state.Unlock()

	if len(skipped)+len(dropped) > 0 {
		s.logger.Warn(ctx, "skipped stored mastery records",
			logger.Any("undecodable", skipped),
			logger.Any("unknownSubjects", dropped),
		)
	}
	metrics.UpdateTrackedSubjects(tracked)
	s.logger.Info(ctx, "state loaded", logger.Int("subjects", tracked))
	return nil
}
