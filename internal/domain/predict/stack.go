package predict

import (
	"math"

	"github.com/okian/prepscore/internal/domain/model"
)

// Stack combines the three model outputs as a normalized weighted average.
// Weights that are unusable fall back to an equal split.
func Stack(w model.Weights, out model.Breakdown) float64 {
	if !validWeights(w) {
		w = model.Weights{Simulated: 1, Bayesian: 1, Pattern: 1}
	}
	sum := w.Simulated + w.Bayesian + w.Pattern
	return (w.Simulated*out.Simulated + w.Bayesian*out.Bayesian + w.Pattern*out.Pattern) / sum
}

// AdaptiveWeights picks stacking weights from the practice history depth.
func AdaptiveWeights(historyDepth int, cfg Config) model.Weights {
	switch {
	case historyDepth > cfg.DeepHistory:
		return cfg.DeepWeights
	case historyDepth < cfg.ShallowHistory:
		return cfg.ShallowWeights
	default:
		return cfg.BalancedWeights
	}
}

// ResolveWeights returns the override when usable, otherwise the adaptive weights.
func ResolveWeights(override *model.Weights, historyDepth int, cfg Config) model.Weights {
	if override != nil && validWeights(*override) {
		return *override
	}
	return AdaptiveWeights(historyDepth, cfg)
}

func validWeights(w model.Weights) bool {
	for _, v := range []float64{w.Simulated, w.Bayesian, w.Pattern} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return w.Simulated+w.Bayesian+w.Pattern > 0
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
