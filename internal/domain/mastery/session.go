package mastery

import (
	"math"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
)

// Difficulty multipliers for the weighted mastery index.
const (
	easyMultiplier   = 1.0
	mediumMultiplier = 1.5
	hardMultiplier   = 2.5
)

// Belief update and coverage constants.
const (
	saturationAttempts = 100.0
	baseUpdateWeight   = 0.5
	updateWeightDamp   = 0.4
	exposurePerItem    = 0.005
	streakBreakDays    = 2.0
)

// DifficultyMultiplier returns the weight of a tier. Unknown tiers count as easy.
func DifficultyMultiplier(d model.Difficulty) float64 {
	switch d {
	case model.DifficultyHard:
		return hardMultiplier
	case model.DifficultyMedium:
		return mediumMultiplier
	default:
		return easyMultiplier
	}
}

// WeightedMasteryIndex scores a session on a 0-100 scale, giving harder
// items more weight. Skipped items count as incorrect. Empty sessions score 0.
func WeightedMasteryIndex(items []model.SessionItem) float64 {
	var correct, total float64
	for _, it := range items {
		w := DifficultyMultiplier(it.Difficulty)
		total += w
		if it.Outcome == model.OutcomeCorrect {
			correct += w
		}
	}
	if total <= 0 {
		return 0
	}
	return correct / total * maxProficiency
}

// DataConfidence maps accumulated attempts to a 0-1 evidence level.
func DataConfidence(totalAttempts int) float64 {
	return math.Min(1, float64(totalAttempts)/saturationAttempts)
}

// UpdateWeight is how far a fresh session pulls the old proficiency.
// Low-volume subjects move fast (0.5), saturated ones slowly (0.1).
func UpdateWeight(dataConfidence float64) float64 {
	return baseUpdateWeight - updateWeightDamp*clamp(dataConfidence, 0, 1)
}

// RecordSession decays the record to now and blends the session's performance in.
// A session without items only applies the decay.
func RecordSession(rec model.MasteryRecord, items []model.SessionItem, def model.SubjectDefinition, now time.Time) model.MasteryRecord {
	gap := DaysSince(rec.LastPracticedAt, now)
	out := ApplyDecay(rec, def, now)
	if len(items) == 0 {
		return out
	}

	wmi := WeightedMasteryIndex(items)
	out.TotalAttempts += len(items)
	dc := DataConfidence(out.TotalAttempts)
	out.Proficiency = clamp(out.Proficiency+(wmi-out.Proficiency)*UpdateWeight(dc), 0, maxProficiency)
	out.Confidence = math.Max(out.Confidence, dc)

	for _, it := range items {
		switch it.Difficulty {
		case model.DifficultyHard:
			out.Attempts.Hard++
		case model.DifficultyMedium:
			out.Attempts.Medium++
		default:
			out.Attempts.Easy++
		}
		if it.Answered() {
			out.Exposure = math.Min(1, out.Exposure+exposurePerItem)
		}
	}

	if out.LastPracticedAt != nil && gap >= streakBreakDays {
		out.Streak = 1
	} else {
		out.Streak++
	}
	stamp := now
	out.LastPracticedAt = &stamp
	return out
}
