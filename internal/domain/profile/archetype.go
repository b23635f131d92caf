package profile

import "github.com/okian/prepscore/internal/domain/model"

// DefaultArchetype is returned when no rule matches.
const DefaultArchetype = "Balanced Aspirant"

type archetypeRule struct {
	label string
	match func(v func(model.Trait) float64) bool
}

// archetypes is evaluated top to bottom; the first match wins.
var archetypes = []archetypeRule{ //nolint:gochecknoglobals // static decision table
	{"Steady Strategist", func(v func(model.Trait) float64) bool {
		return v(model.TraitFocus) >= 0.7 && v(model.TraitCalm) >= 0.7 && v(model.TraitPrecision) >= 0.6
	}},
	{"Bold Sprinter", func(v func(model.Trait) float64) bool {
		return v(model.TraitRisk) >= 0.7 && v(model.TraitSpeed) >= 0.6
	}},
	{"Anxious Perfectionist", func(v func(model.Trait) float64) bool {
		return v(model.TraitCalm) < 0.35 && v(model.TraitPrecision) >= 0.6
	}},
	{"Pressure Sensitive", func(v func(model.Trait) float64) bool {
		return v(model.TraitCalm) < 0.35
	}},
	{"Marathoner", func(v func(model.Trait) float64) bool {
		return v(model.TraitEndurance) >= 0.7
	}},
	{"Cautious Planner", func(v func(model.Trait) float64) bool {
		return v(model.TraitRisk) <= 0.3
	}},
	{"Adaptive Learner", func(v func(model.Trait) float64) bool {
		return v(model.TraitAdaptability) >= 0.7
	}},
}

// Archetype labels the profile for display. It is not used for scoring.
func Archetype(p model.BehavioralProfile) string {
	v := func(t model.Trait) float64 {
		st, ok := p.Traits[t]
		if !ok {
			return 0.5
		}
		return sanitizeState(st).Value
	}
	for _, r := range archetypes {
		if r.match(v) {
			return r.label
		}
	}
	return DefaultArchetype
}
