package model

import "time"

// Trait names a behavioral dimension tracked by the profiler.
type Trait string

const (
	TraitFocus        Trait = "focus"
	TraitCalm         Trait = "calm"
	TraitRisk         Trait = "risk"
	TraitSpeed        Trait = "speed"
	TraitPrecision    Trait = "precision"
	TraitEndurance    Trait = "endurance"
	TraitAdaptability Trait = "adaptability"
)

// AllTraits is the closed set of traits, in display order.
var AllTraits = []Trait{ //nolint:gochecknoglobals // fixed enumeration
	TraitFocus,
	TraitCalm,
	TraitRisk,
	TraitSpeed,
	TraitPrecision,
	TraitEndurance,
	TraitAdaptability,
}

// TraitState is a normalized trait value and the evidence behind it.
type TraitState struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// BehavioralProfile is the per-candidate trait map.
type BehavioralProfile struct {
	Traits        map[Trait]TraitState `json:"traits"`
	LastUpdatedAt *time.Time           `json:"last_updated_at,omitempty"`
	TotalSessions int                  `json:"total_sessions"`
}

// NewBehavioralProfile returns the maximally uncertain prior.
func NewBehavioralProfile() BehavioralProfile {
	p := BehavioralProfile{Traits: make(map[Trait]TraitState, len(AllTraits))}
	for _, t := range AllTraits {
		p.Traits[t] = TraitState{Value: 0.5}
	}
	return p
}

// Clone deep-copies the profile. Missing traits are filled with the prior.
func (p BehavioralProfile) Clone() BehavioralProfile {
	out := BehavioralProfile{
		Traits:        make(map[Trait]TraitState, len(AllTraits)),
		TotalSessions: p.TotalSessions,
	}
	for _, t := range AllTraits {
		st, ok := p.Traits[t]
		if !ok {
			st = TraitState{Value: 0.5}
		}
		out.Traits[t] = st
	}
	if p.LastUpdatedAt != nil {
		ts := *p.LastUpdatedAt
		out.LastUpdatedAt = &ts
	}
	return out
}

// Modifiers are the scalar multipliers the simulator consumes. 1.0 is neutral.
type Modifiers struct {
	Mistake  float64 `json:"mistake"`
	Panic    float64 `json:"panic"`
	Fatigue  float64 `json:"fatigue"`
	Guessing float64 `json:"guessing"`
	Risk     float64 `json:"risk"`
}

// NeutralModifiers returns modifiers that leave every model untouched.
func NeutralModifiers() Modifiers {
	return Modifiers{Mistake: 1, Panic: 1, Fatigue: 1, Guessing: 1, Risk: 1}
}
