package profile

import (
	"math"

	"github.com/okian/prepscore/internal/domain/model"
)

// Modifier shaping constants.
const (
	mistakeFloor      = 0.85
	mistakeSpan       = 0.30
	panicCalmCutoff   = 0.4
	fatigueCutoff     = 0.4
	shortfallSlope    = 0.5
	guessTimidBelow   = 0.2
	guessSweetLow     = 0.35
	guessSweetHigh    = 0.65
	guessRecklessOver = 0.8
	guessTimid        = 0.97
	guessSweet        = 1.02
	guessReckless     = 0.95
	riskAppetiteBase  = 0.5
)

// PredictionModifiers turns trait values into the simulator's multipliers.
// Missing or malformed traits behave like the 0.5 prior, which is neutral.
func PredictionModifiers(p model.BehavioralProfile) model.Modifiers {
	v := func(t model.Trait) float64 {
		st, ok := p.Traits[t]
		if !ok {
			return 0.5
		}
		return sanitizeState(st).Value
	}

	focus, precision := v(model.TraitFocus), v(model.TraitPrecision)
	calm, endurance, risk := v(model.TraitCalm), v(model.TraitEndurance), v(model.TraitRisk)

	mods := model.NeutralModifiers()
	mods.Mistake = mistakeFloor + mistakeSpan*(focus+precision)/2
	if calm < panicCalmCutoff {
		mods.Panic = 1 - shortfallSlope*(panicCalmCutoff-calm)
	}
	if endurance < fatigueCutoff {
		mods.Fatigue = 1 - shortfallSlope*(fatigueCutoff-endurance)
	}
	mods.Guessing = guessingMultiplier(risk)
	mods.Risk = riskAppetiteBase + risk
	return mods
}

// guessingMultiplier is an inverted U: both timid and reckless guessing cost
// marks, a moderate appetite earns a small bonus.
func guessingMultiplier(risk float64) float64 {
	switch {
	case risk < guessTimidBelow:
		return guessTimid
	case risk > guessRecklessOver:
		return guessReckless
	case risk >= guessSweetLow && risk <= guessSweetHigh:
		return guessSweet
	default:
		return 1
	}
}

// SanitizeModifiers replaces non-positive or non-finite multipliers with 1.
func SanitizeModifiers(m model.Modifiers) model.Modifiers {
	fix := func(x float64) float64 {
		if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
			return 1
		}
		return x
	}
	return model.Modifiers{
		Mistake:  fix(m.Mistake),
		Panic:    fix(m.Panic),
		Fatigue:  fix(m.Fatigue),
		Guessing: fix(m.Guessing),
		Risk:     fix(m.Risk),
	}
}
