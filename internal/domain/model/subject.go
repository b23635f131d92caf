// Package model contains domain models passed between layers.
package model

// ComplexityClass describes how demanding a subject's items usually are.
type ComplexityClass string

const (
	ComplexityFactual    ComplexityClass = "factual"
	ComplexityConceptual ComplexityClass = "conceptual"
	ComplexityAnalytical ComplexityClass = "analytical"
)

// SubjectDefinition is the static taxonomy entry for one knowledge area.
type SubjectDefinition struct {
	ID              string          `json:"id" koanf:"id"`
	ExamWeight      float64         `json:"exam_weight" koanf:"exam_weight"`           // share of the paper, 0-1
	DailyDecayRate  float64         `json:"daily_decay_rate" koanf:"daily_decay_rate"` // forgetting per idle day, 0-1
	ComplexityClass ComplexityClass `json:"complexity_class" koanf:"complexity_class"`
	Gating          bool            `json:"gating" koanf:"gating"` // qualifying paper, excluded from the primary score
}

// Difficulty is the tier of a practice item.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Outcome is how a candidate finished a single question.
type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
	OutcomeSkipped Outcome = "skipped"
)

// SessionItem is one answered (or skipped) question inside a practice session.
type SessionItem struct {
	Difficulty Difficulty `json:"difficulty"`
	Outcome    Outcome    `json:"outcome"`
}

// Answered reports whether the item was attempted rather than skipped.
func (i SessionItem) Answered() bool {
	return i.Outcome == OutcomeCorrect || i.Outcome == OutcomeWrong
}
