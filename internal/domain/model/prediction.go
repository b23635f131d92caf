package model

// Flag is a named risk signal attached to a prediction.
// Consumers must ignore flags they do not recognize.
type Flag string

const (
	FlagNewRecruit       Flag = "NEW_RECRUIT"
	FlagGamblerRisk      Flag = "GAMBLER_RISK"
	FlagFatigueRisk      Flag = "FATIGUE_RISK"
	FlagPanicProne       Flag = "PANIC_PRONE"
	FlagCSATCriticalFail Flag = "CSAT_CRITICAL_FAIL"
)

// SubjectSnapshot is the per-subject slice of a prediction snapshot.
type SubjectSnapshot struct {
	SubjectID   string  `json:"subject_id"`
	Proficiency float64 `json:"proficiency"`
	Confidence  float64 `json:"confidence"`
	ExamWeight  float64 `json:"exam_weight"`
}

// Snapshot is everything the simulator needs for one prediction.
type Snapshot struct {
	Subjects     []SubjectSnapshot `json:"subjects"`
	Gating       []SubjectSnapshot `json:"gating,omitempty"`
	Modifiers    Modifiers         `json:"modifiers"`
	HistoryDepth int               `json:"history_depth"`
}

// Clone deep-copies the snapshot so it can cross into another execution context.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Subjects = append([]SubjectSnapshot(nil), s.Subjects...)
	out.Gating = append([]SubjectSnapshot(nil), s.Gating...)
	return out
}

// ScoreRange bounds the predicted score.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CurvePoint is one sample of the display distribution.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Breakdown exposes each ensemble member's output.
type Breakdown struct {
	Simulated float64 `json:"simulated"`
	Bayesian  float64 `json:"bayesian"`
	Pattern   float64 `json:"pattern"`
}

// PredictionResult is the simulator's answer to a PREDICT request.
type PredictionResult struct {
	Score      float64      `json:"score"`
	Range      ScoreRange   `json:"range"`
	Confidence float64      `json:"confidence"`
	Flags      []Flag       `json:"flags"`
	Curve      []CurvePoint `json:"distribution_curve"`
	Breakdown  Breakdown    `json:"breakdown"`
}
