package profile

import (
	"fmt"
	"math"

	"github.com/okian/prepscore/internal/domain/model"
)

// Mini-game identifiers.
const (
	GameReaction  = "reaction"
	GameStress    = "stress"
	GameRisk      = "risk"
	GameMemory    = "memory"
	GameVigilance = "vigilance"
)

// Auxiliary metric keys.
const (
	AuxReactionMs  = "reaction_ms"
	AuxFlexibility = "flexibility"
)

const (
	fastReactionMs = 200.0
	slowReactionMs = 1000.0
)

type auxMapping struct {
	trait     model.Trait
	transform func(float64) float64
}

type gameMapping struct {
	primary model.Trait
	aux     map[string]auxMapping
}

// games is the fixed game -> trait table.
var games = map[string]gameMapping{ //nolint:gochecknoglobals // static lookup table
	GameReaction: {primary: model.TraitFocus},
	GameStress: {
		primary: model.TraitCalm,
		aux:     map[string]auxMapping{AuxReactionMs: {trait: model.TraitSpeed, transform: reactionSpeed}},
	},
	GameRisk: {primary: model.TraitRisk},
	GameMemory: {
		primary: model.TraitPrecision,
		aux:     map[string]auxMapping{AuxFlexibility: {trait: model.TraitAdaptability, transform: clamp01}},
	},
	GameVigilance: {primary: model.TraitEndurance},
}

// KnownGames lists the game ids the profiler accepts.
func KnownGames() []string {
	return []string{GameReaction, GameStress, GameRisk, GameMemory, GameVigilance}
}

// ActiveSignals maps a mini-game result to trait signals.
func ActiveSignals(sig model.ActiveSignal) (map[model.Trait]float64, error) {
	m, ok := games[sig.GameID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, sig.GameID)
	}
	if math.IsNaN(sig.Score) || math.IsInf(sig.Score, 0) {
		return nil, fmt.Errorf("%w: score for %s", ErrInvalidSignal, sig.GameID)
	}
	out := map[model.Trait]float64{m.primary: clamp01(sig.Score)}
	for key, am := range m.aux {
		v, ok := sig.Aux[key]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[am.trait] = am.transform(v)
	}
	return out, nil
}

func reactionSpeed(ms float64) float64 {
	ms = math.Min(slowReactionMs, math.Max(fastReactionMs, ms))
	return 1 - (ms-fastReactionMs)/(slowReactionMs-fastReactionMs)
}
