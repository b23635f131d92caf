package predict

import (
	"math"

	"github.com/okian/prepscore/internal/domain/model"
)

// Rule is one named penalty in the pattern engine. Penalty returns the marks
// to subtract; a non-positive value means the rule does not apply.
type Rule struct {
	Flag    model.Flag
	Penalty func(snap model.Snapshot, cfg Config) float64
}

// Patterns is the outcome of the rule engine.
type Patterns struct {
	Score float64
	Flags []model.Flag
}

// DefaultRules returns the built-in penalty rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Flag: model.FlagGamblerRisk, Penalty: gamblerPenalty},
		{Flag: model.FlagFatigueRisk, Penalty: fatiguePenalty},
		{Flag: model.FlagPanicProne, Penalty: panicPenalty},
	}
}

// DetectPatterns applies the rules to the simulated average. Every applicable
// penalty is subtracted; only material ones raise their flag. The gating
// check flags without touching the score.
func DetectPatterns(avg float64, snap model.Snapshot, rules []Rule, cfg Config) Patterns {
	out := Patterns{Score: avg, Flags: []model.Flag{}}
	for _, r := range rules {
		p := r.Penalty(snap, cfg)
		if p <= 0 || math.IsNaN(p) {
			continue
		}
		out.Score -= p
		if p >= cfg.MaterialityThreshold {
			out.Flags = append(out.Flags, r.Flag)
		}
	}
	if len(snap.Gating) > 0 && GatingEstimate(snap.Gating) < cfg.GatingPassMark {
		out.Flags = append(out.Flags, model.FlagCSATCriticalFail)
	}
	out.Score = math.Max(0, out.Score)
	return out
}

// GatingEstimate scores the qualifying group on its own scale.
func GatingEstimate(gating []model.SubjectSnapshot) float64 {
	var total float64
	for _, s := range gating {
		total += 2 * s.ExamWeight * s.Proficiency
	}
	return total
}

// gamblerPenalty compounds a high risk appetite with an elevated error rate.
func gamblerPenalty(snap model.Snapshot, cfg Config) float64 {
	riskExcess := snap.Modifiers.Risk - 1
	mistakeExcess := 1 - snap.Modifiers.Mistake
	if riskExcess <= 0 || mistakeExcess <= 0 {
		return 0
	}
	return riskExcess * mistakeExcess * cfg.GamblerPenaltyScale
}

func fatiguePenalty(snap model.Snapshot, cfg Config) float64 {
	shortfall := 1 - snap.Modifiers.Fatigue
	if shortfall <= 0 {
		return 0
	}
	return math.Max(cfg.FatiguePenaltyFloor, shortfall*cfg.FatiguePenaltyScale)
}

func panicPenalty(snap model.Snapshot, cfg Config) float64 {
	shortfall := 1 - snap.Modifiers.Panic
	if shortfall <= 0 {
		return 0
	}
	return shortfall * cfg.PanicPenaltyScale
}
