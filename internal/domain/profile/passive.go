package profile

import (
	"math"

	"github.com/okian/prepscore/internal/domain/model"
)

// Passive derivation constants.
const (
	impulseWeight      = 0.5
	switchWeight       = 0.2
	calmSwitchPenalty  = 0.15
	minEnduranceItems  = 8
	enduranceLow       = 0.3
	enduranceHigh      = 0.8
	enduranceSteady    = 0.6
	enduranceUnknown   = 0.5
	riskAverseSkipRate = 0.4
	recklessWrongRate  = 0.3
	recklessMaxSkip    = 0.1
	riskAverse         = 0.2
	riskReckless       = 0.8
	riskBalanced       = 0.5
	fastItemMs         = 10_000.0
	slowItemMs         = 120_000.0
)

// PassiveSignals derives trait signals from one quiz session. outcomes is the
// per-question result in presentation order and defines the item count;
// telemetry slices that are shorter are padded with neutral values.
func PassiveSignals(tel model.PassiveTelemetry, outcomes []model.Outcome) map[model.Trait]float64 {
	n := len(outcomes)
	if n == 0 {
		return nil
	}
	fn := float64(n)

	var switches, switchesOnWrong, wrong, skipped int
	for i, o := range outcomes {
		s := 0
		if i < len(tel.Switches) && tel.Switches[i] > 0 {
			s = tel.Switches[i]
		}
		switches += s
		switch o {
		case model.OutcomeWrong:
			wrong++
			switchesOnWrong += s
		case model.OutcomeSkipped:
			skipped++
		}
	}

	impulseRate := 0.0
	if tel.ImpulseClicks > 0 {
		impulseRate = math.Min(1, float64(tel.ImpulseClicks)/fn)
	}
	switchRate := float64(switches) / fn

	signals := map[model.Trait]float64{
		model.TraitFocus:     math.Max(0, 1-impulseWeight*impulseRate-switchWeight*switchRate),
		model.TraitEndurance: enduranceSignal(outcomes),
		model.TraitRisk:      riskSignal(float64(skipped)/fn, float64(wrong)/fn),
	}

	avgWrongSwitches := 0.0
	if wrong > 0 {
		avgWrongSwitches = float64(switchesOnWrong) / float64(wrong)
	}
	signals[model.TraitCalm] = math.Max(0, 1-calmSwitchPenalty*avgWrongSwitches)

	if speed, ok := speedSignal(tel.DurationsMs, n); ok {
		signals[model.TraitSpeed] = speed
	}
	return signals
}

// enduranceSignal compares mistakes in the first and last quarter.
func enduranceSignal(outcomes []model.Outcome) float64 {
	n := len(outcomes)
	if n < minEnduranceItems {
		return enduranceUnknown
	}
	q := n / 4
	early := countWrong(outcomes[:q])
	late := countWrong(outcomes[n-q:])
	switch {
	case late > early:
		return enduranceLow
	case late < early:
		return enduranceHigh
	default:
		return enduranceSteady
	}
}

func riskSignal(skipRate, wrongRate float64) float64 {
	switch {
	case skipRate > riskAverseSkipRate:
		return riskAverse
	case wrongRate > recklessWrongRate && skipRate < recklessMaxSkip:
		return riskReckless
	default:
		return riskBalanced
	}
}

// speedSignal maps the mean time per item onto 0 (slow) .. 1 (fast).
func speedSignal(durations []float64, n int) (float64, bool) {
	var sum float64
	var count int
	for i, d := range durations {
		if i >= n {
			break
		}
		if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		sum += d
		count++
	}
	if count == 0 {
		return 0, false
	}
	mean := math.Min(slowItemMs, math.Max(fastItemMs, sum/float64(count)))
	return 1 - (mean-fastItemMs)/(slowItemMs-fastItemMs), true
}

func countWrong(outcomes []model.Outcome) int {
	c := 0
	for _, o := range outcomes {
		if o == model.OutcomeWrong {
			c++
		}
	}
	return c
}
