package mastery

import (
	"sort"

	"github.com/okian/prepscore/internal/domain/model"
)

// Coverage thresholds for blind-spot detection.
const (
	MaterialWeight = 0.10
	MinExposure    = 0.10
)

// BlindSpot is a heavily weighted subject the candidate has barely touched.
type BlindSpot struct {
	SubjectID  string  `json:"subject_id"`
	ExamWeight float64 `json:"exam_weight"`
	Exposure   float64 `json:"exposure"`
}

// BlindSpots lists subjects whose weight is material but whose exposure is low,
// heaviest first. Subjects without a record have zero exposure.
func BlindSpots(defs []model.SubjectDefinition, records map[string]model.MasteryRecord) []BlindSpot {
	var out []BlindSpot
	for _, d := range defs {
		if d.ExamWeight <= MaterialWeight {
			continue
		}
		exposure := 0.0
		if rec, ok := records[d.ID]; ok {
			exposure = clamp(finite(rec.Exposure), 0, 1)
		}
		if exposure < MinExposure {
			out = append(out, BlindSpot{SubjectID: d.ID, ExamWeight: d.ExamWeight, Exposure: exposure})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExamWeight > out[j].ExamWeight })
	return out
}
