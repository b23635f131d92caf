// Package types contains the view shapes returned by the HTTP API.
package types

import (
	"time"

	"github.com/okian/prepscore/internal/domain/model"
)

// SubjectMastery is one row of the mastery view: the decayed record joined
// with its taxonomy entry.
type SubjectMastery struct {
	SubjectID       string     `json:"subject_id"`
	ExamWeight      float64    `json:"exam_weight"`
	Gating          bool       `json:"gating"`
	Proficiency     float64    `json:"proficiency"`
	Confidence      float64    `json:"confidence"`
	Exposure        float64    `json:"exposure"`
	TotalAttempts   int        `json:"total_attempts"`
	Streak          int        `json:"streak"`
	LastPracticedAt *time.Time `json:"last_practiced_at,omitempty"`
}

// ProfileView is the behavioral profile with its derived outputs.
type ProfileView struct {
	Traits        map[model.Trait]model.TraitState `json:"traits"`
	Modifiers     model.Modifiers                  `json:"modifiers"`
	Archetype     string                           `json:"archetype"`
	TotalSessions int                              `json:"total_sessions"`
	LastUpdatedAt *time.Time                       `json:"last_updated_at,omitempty"`
}

// BlindSpot is a heavily weighted subject that has barely been practiced.
type BlindSpot struct {
	SubjectID  string  `json:"subject_id"`
	ExamWeight float64 `json:"exam_weight"`
	Exposure   float64 `json:"exposure"`
}

// Stats summarizes the service state.
type Stats struct {
	TrackedSubjects int     `json:"tracked_subjects"`
	HistoryDepth    int     `json:"history_depth"`
	TotalSessions   int     `json:"total_sessions"`
	BlindSpots      int     `json:"blind_spots"`
	QueueLength     int     `json:"queue_length"`
	QueueCapacity   int     `json:"queue_capacity"`
	Workers         int     `json:"workers"`
	PendingRequests int     `json:"pending_requests"`
	DedupeSize      int64   `json:"dedupe_size"`
	Archetype       string  `json:"archetype"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	StoreDriver     string  `json:"store_driver"`
}
