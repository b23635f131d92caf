package model

import "time"

// AttemptCounts tallies answered items per difficulty tier.
type AttemptCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Total returns the number of attempts across all tiers.
func (a AttemptCounts) Total() int {
	return a.Easy + a.Medium + a.Hard
}

// MasteryRecord is the belief state for one subject.
type MasteryRecord struct {
	SubjectID       string        `json:"subject_id"`
	Proficiency     float64       `json:"proficiency"` // 0-100
	Confidence      float64       `json:"confidence"`  // 0-1, never decayed
	LastPracticedAt *time.Time    `json:"last_practiced_at,omitempty"`
	Attempts        AttemptCounts `json:"attempts"`
	TotalAttempts   int           `json:"total_attempts"`
	Streak          int           `json:"streak"`
	Exposure        float64       `json:"exposure"` // saturating coverage density, 0-1
}

// NewMasteryRecord returns the zero-valued record used on first contact with a subject.
func NewMasteryRecord(subjectID string) MasteryRecord {
	return MasteryRecord{SubjectID: subjectID}
}

// Clone returns a copy that shares no pointers with r.
func (r MasteryRecord) Clone() MasteryRecord {
	out := r
	if r.LastPracticedAt != nil {
		t := *r.LastPracticedAt
		out.LastPracticedAt = &t
	}
	return out
}
