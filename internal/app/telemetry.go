package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/prepscore/internal/adapters/repository"
	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/profile"
	"github.com/okian/prepscore/pkg/logger"
	"github.com/okian/prepscore/pkg/metrics"
)

// SessionSubmission is one completed practice session for a single subject.
type SessionSubmission struct {
	// SessionID makes the submission idempotent when set.
	SessionID   string                  `json:"session_id,omitempty"`
	SubjectID   string                  `json:"subject_id"`
	Items       []model.SessionItem     `json:"items"`
	Telemetry   *model.PassiveTelemetry `json:"telemetry,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

// SessionResult reports the state after a session was merged.
type SessionResult struct {
	Duplicate bool                `json:"duplicate"`
	Mastery   model.MasteryRecord `json:"mastery"`
	Archetype string              `json:"archetype"`
}

// GameSubmission is one finished mini-game round.
type GameSubmission struct {
	// RoundID makes the submission idempotent when set.
	RoundID  string             `json:"round_id,omitempty"`
	Signal   model.ActiveSignal `json:"signal"`
	PlayedAt *time.Time         `json:"played_at,omitempty"`
}

// GameResult reports the profile after a game was merged.
type GameResult struct {
	Duplicate bool                    `json:"duplicate"`
	Profile   model.BehavioralProfile `json:"profile"`
	Archetype string                  `json:"archetype"`
}

// RecordSession merges a practice session into the mastery tracker and, when
// telemetry is attached, into the behavioral profile. Both are persisted.
func (s *Service) RecordSession(ctx context.Context, sub SessionSubmission) (SessionResult, error) { //nolint:gocritic // hugeParam: submissions travel by value
	if err := s.running(); err != nil {
		return SessionResult{}, err
	}
	if sub.SubjectID == "" {
		metrics.RecordTelemetryRejected("missing_subject")
		return SessionResult{}, fmt.Errorf("%w: subject_id is required", ErrInvalid)
	}

	dedupeKey := ""
	if sub.SessionID != "" {
		dedupeKey = "session:" + sub.SessionID
		if s.deduper.SeenAndRecord(ctx, dedupeKey) {
			metrics.RecordTelemetryDuplicate()
			s.logger.Debug(ctx, "duplicate session, skipping", logger.String("sessionID", sub.SessionID))
			return s.currentSession(sub.SubjectID, true), nil
		}
	}

	at := s.timestamp(sub.CompletedAt)

	s.state.Lock()
	rec, err := s.tracker.RecordSession(sub.SubjectID, sub.Items, at)
	if err != nil {
		s.state.Unlock()
		s.forget(ctx, dedupeKey)
		metrics.RecordTelemetryRejected("session")
		return SessionResult{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	prof := s.profiler.Profile()
	if sub.Telemetry != nil {
		outcomes := make([]model.Outcome, len(sub.Items))
		for i, item := range sub.Items {
			outcomes[i] = item.Outcome
		}
		if prof, err = s.profiler.UpdateFromPassive(*sub.Telemetry, outcomes, at); err != nil {
			s.logger.Warn(ctx, "passive telemetry ignored", logger.Error(err))
		}
	}
	archetype := s.profiler.Archetype()
	tracked := len(s.tracker.Records())
	blind := len(s.tracker.BlindSpots())
	s.state.Unlock()

	if err := s.persistSession(ctx, rec, prof, sub.Telemetry != nil); err != nil {
		return SessionResult{}, err
	}

	metrics.RecordSessionRecorded()
	metrics.UpdateTrackedSubjects(tracked)
	metrics.UpdateBlindSpots(blind)
	s.logger.Debug(ctx, "session recorded",
		logger.String("subject", rec.SubjectID),
		logger.Float64("proficiency", rec.Proficiency),
		logger.Float64("confidence", rec.Confidence),
		logger.Int("items", len(sub.Items)),
	)
	return SessionResult{Mastery: rec, Archetype: archetype}, nil
}

// RecordGame merges a mini-game result into the behavioral profile.
func (s *Service) RecordGame(ctx context.Context, sub GameSubmission) (GameResult, error) {
	if err := s.running(); err != nil {
		return GameResult{}, err
	}

	dedupeKey := ""
	if sub.RoundID != "" {
		dedupeKey = "game:" + sub.RoundID
		if s.deduper.SeenAndRecord(ctx, dedupeKey) {
			metrics.RecordTelemetryDuplicate()
			s.state.Lock()
			res := GameResult{Duplicate: true, Profile: s.profiler.Profile(), Archetype: s.profiler.Archetype()}
			s.state.Unlock()
			return res, nil
		}
	}

	at := s.timestamp(sub.PlayedAt)

	s.state.Lock()
	prof, err := s.profiler.UpdateFromActive(sub.Signal, at)
	archetype := s.profiler.Archetype()
	s.state.Unlock()
	if err != nil {
		s.forget(ctx, dedupeKey)
		reason := "invalid_signal"
		if errors.Is(err, profile.ErrUnknownGame) {
			reason = "unknown_game"
		}
		metrics.RecordTelemetryRejected(reason)
		return GameResult{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := repository.PutJSON(ctx, s.store, repository.BucketProfile, s.candidateID, prof); err != nil {
		metrics.RecordErrorByComponent("service", "persist_profile")
		return GameResult{}, fmt.Errorf("persist profile: %w", err)
	}

	metrics.RecordGameRecorded(sub.Signal.GameID)
	return GameResult{Profile: prof, Archetype: archetype}, nil
}

func (s *Service) persistSession(ctx context.Context, rec model.MasteryRecord, prof model.BehavioralProfile, profileChanged bool) error { //nolint:gocritic // hugeParam: records travel by value
	if err := repository.PutJSON(ctx, s.store, repository.BucketMastery, rec.SubjectID, rec); err != nil {
		metrics.RecordErrorByComponent("service", "persist_mastery")
		return fmt.Errorf("persist mastery: %w", err)
	}
	if !profileChanged {
		return nil
	}
	if err := repository.PutJSON(ctx, s.store, repository.BucketProfile, s.candidateID, prof); err != nil {
		metrics.RecordErrorByComponent("service", "persist_profile")
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}

func (s *Service) currentSession(subjectID string, duplicate bool) SessionResult {
	s.state.Lock()
	defer s.state.Unlock()
	rec, _ := s.tracker.Record(subjectID)
	return SessionResult{Duplicate: duplicate, Mastery: rec, Archetype: s.profiler.Archetype()}
}

func (s *Service) forget(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Unrecord(ctx, key)
	}
}

func (s *Service) timestamp(at *time.Time) time.Time {
	if at == nil || at.IsZero() {
		return s.now()
	}
	return *at
}
