package profile

import (
	"math"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
)

// Default learning constants.
const (
	DefaultPassiveRate     = 0.30
	DefaultActiveRate      = 0.15
	DefaultIdleDecayFactor = 0.98
	DefaultConfidenceStep  = 0.05
	stabilityDamping       = 0.5
	hoursPerDay            = 24.0
)

// UpdateTrait moves a trait toward signal. Confident traits move less, and
// confidence approaches 1 with diminishing steps without reaching it.
func UpdateTrait(st model.TraitState, signal, baseRate, confidenceStep float64) model.TraitState {
	st = sanitizeState(st)
	signal = clamp01(signal)
	rate := baseRate * (1 - stabilityDamping*st.Confidence)
	st.Value = clamp01(st.Value + (signal-st.Value)*rate)
	st.Confidence = clamp01(st.Confidence + confidenceStep*(1-st.Confidence))
	return st
}

// ApplyIdleDecay lowers every trait's confidence once more than a day has
// passed since the last update. Values are left alone. The timestamp moves
// to now so the same idle span is never charged twice.
func ApplyIdleDecay(p model.BehavioralProfile, factor float64, now time.Time) model.BehavioralProfile {
	out := p.Clone()
	if out.LastUpdatedAt == nil || now.Before(*out.LastUpdatedAt) {
		return out
	}
	days := now.Sub(*out.LastUpdatedAt).Hours() / hoursPerDay
	if days <= 1 || factor <= 0 || factor >= 1 {
		return out
	}
	mult := math.Pow(factor, days)
	for t, st := range out.Traits {
		st = sanitizeState(st)
		st.Confidence = clamp01(st.Confidence * mult)
		out.Traits[t] = st
	}
	stamp := now
	out.LastUpdatedAt = &stamp
	return out
}

// applySignals runs UpdateTrait for each derived signal and stamps the profile.
func applySignals(p model.BehavioralProfile, signals map[model.Trait]float64, baseRate, step float64, now time.Time) model.BehavioralProfile {
	out := p.Clone()
	for _, t := range model.AllTraits {
		sig, ok := signals[t]
		if !ok || math.IsNaN(sig) || math.IsInf(sig, 0) {
			continue
		}
		out.Traits[t] = UpdateTrait(out.Traits[t], sig, baseRate, step)
	}
	out.TotalSessions++
	stamp := now
	out.LastUpdatedAt = &stamp
	return out
}

func sanitizeState(st model.TraitState) model.TraitState {
	if math.IsNaN(st.Value) || math.IsInf(st.Value, 0) {
		st.Value = 0.5
	}
	if math.IsNaN(st.Confidence) || math.IsInf(st.Confidence, 0) {
		st.Confidence = 0
	}
	st.Value = clamp01(st.Value)
	st.Confidence = clamp01(st.Confidence)
	return st
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
