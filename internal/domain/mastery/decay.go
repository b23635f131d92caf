// Package mastery tracks per-subject proficiency beliefs and their decay.
package mastery

import (
	"math"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
)

const (
	hoursPerDay    = 24.0
	maxProficiency = 100.0
)

// DaysSince returns the fractional number of days between from and now.
// It is zero when from is nil or in the future.
func DaysSince(from *time.Time, now time.Time) float64 {
	if from == nil || now.Before(*from) {
		return 0
	}
	return now.Sub(*from).Hours() / hoursPerDay
}

// ApplyDecay erodes proficiency along the subject's forgetting curve.
// Nothing changes until a full day has passed; confidence is never decayed.
func ApplyDecay(rec model.MasteryRecord, def model.SubjectDefinition, now time.Time) model.MasteryRecord {
	out := sanitize(rec.Clone())
	days := DaysSince(out.LastPracticedAt, now)
	if days < 1 || def.DailyDecayRate <= 0 || def.DailyDecayRate >= 1 {
		return out
	}
	out.Proficiency = clamp(out.Proficiency*math.Pow(1-def.DailyDecayRate, days), 0, maxProficiency)
	return out
}

// sanitize replaces non-finite or out-of-range fields with safe values.
func sanitize(rec model.MasteryRecord) model.MasteryRecord {
	rec.Proficiency = clamp(finite(rec.Proficiency), 0, maxProficiency)
	rec.Confidence = clamp(finite(rec.Confidence), 0, 1)
	rec.Exposure = clamp(finite(rec.Exposure), 0, 1)
	if rec.TotalAttempts < 0 {
		rec.TotalAttempts = 0
	}
	if rec.Streak < 0 {
		rec.Streak = 0
	}
	return rec
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
