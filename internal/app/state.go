package service

import (
	"context"
	"fmt"

	"github.com/okian/prepscore/internal/adapters/repository"
	"github.com/okian/prepscore/internal/domain/mastery"
	"github.com/okian/prepscore/internal/domain/types"
	"github.com/okian/prepscore/pkg/logger"
	"github.com/okian/prepscore/pkg/metrics"
)

// Mastery returns every taxonomy subject with its decayed record.
func (s *Service) Mastery(_ context.Context) []types.SubjectMastery {
	now := s.now()

	s.state.Lock()
	defer s.state.Unlock()

	defs := s.taxonomy.All()
	out := make([]types.SubjectMastery, 0, len(defs))
	for _, def := range defs {
		rec, _ := s.tracker.Record(def.ID)
		rec = mastery.ApplyDecay(rec, def, now)
		out = append(out, types.SubjectMastery{
			SubjectID:       def.ID,
			ExamWeight:      def.ExamWeight,
			Gating:          def.Gating,
			Proficiency:     rec.Proficiency,
			Confidence:      rec.Confidence,
			Exposure:        rec.Exposure,
			TotalAttempts:   rec.TotalAttempts,
			Streak:          rec.Streak,
			LastPracticedAt: rec.LastPracticedAt,
		})
	}
	return out
}

// Profile returns the behavioral profile with its modifiers and archetype.
func (s *Service) Profile(_ context.Context) types.ProfileView {
	s.state.Lock()
	defer s.state.Unlock()

	p := s.profiler.Profile()
	return types.ProfileView{
		Traits:        p.Traits,
		Modifiers:     s.profiler.Modifiers(),
		Archetype:     s.profiler.Archetype(),
		TotalSessions: p.TotalSessions,
		LastUpdatedAt: p.LastUpdatedAt,
	}
}

// BlindSpots lists heavily weighted subjects that have barely been practiced.
func (s *Service) BlindSpots(_ context.Context) []types.BlindSpot {
	s.state.Lock()
	spots := s.tracker.BlindSpots()
	s.state.Unlock()

	out := make([]types.BlindSpot, len(spots))
	for i, b := range spots {
		out[i] = types.BlindSpot{SubjectID: b.SubjectID, ExamWeight: b.ExamWeight, Exposure: b.Exposure}
	}
	metrics.UpdateBlindSpots(len(out))
	return out
}

// Reset wipes mastery, profile, seen telemetry ids and the persisted copies.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.running(); err != nil {
		return err
	}

	s.state.Lock()
	defer s.state.Unlock()

	for _, bucket := range []string{repository.BucketMastery, repository.BucketProfile} {
		if err := s.store.Clear(ctx, bucket); err != nil {
			metrics.RecordErrorByComponent("service", "reset")
			return fmt.Errorf("clear %s: %w", bucket, err)
		}
	}
	s.tracker.Reset()
	s.profiler.Reset()
	s.deduper.Reset()

	metrics.UpdateTrackedSubjects(0)
	metrics.UpdateBlindSpots(len(s.tracker.BlindSpots()))
	s.logger.Info(ctx, "candidate state reset", logger.String("candidate", s.candidateID))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(_ context.Context) types.Stats {
	s.mu.RLock()
	started, startedAt := s.started, s.startedAt
	s.mu.RUnlock()

	s.state.Lock()
	prof := s.profiler.Profile()
	stats := types.Stats{
		TrackedSubjects: len(s.tracker.Records()),
		HistoryDepth:    s.tracker.HistoryDepth(),
		TotalSessions:   prof.TotalSessions,
		BlindSpots:      len(s.tracker.BlindSpots()),
		Archetype:       s.profiler.Archetype(),
		StoreDriver:     s.storeDriver,
	}
	s.state.Unlock()

	if started {
		stats.QueueLength = s.queue.Len()
		stats.QueueCapacity = s.queue.Capacity()
		stats.Workers = s.pool.Size()
		stats.PendingRequests = s.client.Pending()
		stats.DedupeSize = s.deduper.Size()
		stats.UptimeSeconds = s.now().Sub(startedAt).Seconds()
		metrics.UpdateQueueSize(stats.QueueLength)
	}
	return stats
}
