// Package profile maintains the candidate's behavioral trait beliefs.
package profile

import (
	"fmt"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
)

// Option applies a configuration option to the Profiler.
type Option func(*Profiler)

// WithPassiveRate sets the base learning rate for quiz telemetry.
func WithPassiveRate(rate float64) Option {
	return func(p *Profiler) {
		if rate > 0 && rate <= 1 {
			p.passiveRate = rate
		}
	}
}

// WithActiveRate sets the base learning rate for mini-game signals.
func WithActiveRate(rate float64) Option {
	return func(p *Profiler) {
		if rate > 0 && rate <= 1 {
			p.activeRate = rate
		}
	}
}

// WithIdleDecayFactor sets the per-day confidence retention.
func WithIdleDecayFactor(factor float64) Option {
	return func(p *Profiler) {
		if factor > 0 && factor < 1 {
			p.idleDecay = factor
		}
	}
}

// WithConfidenceStep sets how much of the remaining confidence gap each update closes.
func WithConfidenceStep(step float64) Option {
	return func(p *Profiler) {
		if step > 0 && step < 1 {
			p.confidenceStep = step
		}
	}
}

// Profiler owns one candidate's behavioral profile.
// It is not safe for concurrent use; the coordinating service serializes access.
type Profiler struct {
	profile        model.BehavioralProfile
	passiveRate    float64
	activeRate     float64
	idleDecay      float64
	confidenceStep float64
}

// New creates a profiler holding the uncertain prior.
func New(opts ...Option) *Profiler {
	p := &Profiler{
		profile:        model.NewBehavioralProfile(),
		passiveRate:    DefaultPassiveRate,
		activeRate:     DefaultActiveRate,
		idleDecay:      DefaultIdleDecayFactor,
		confidenceStep: DefaultConfidenceStep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load replaces the current profile with a stored one.
func (p *Profiler) Load(profile model.BehavioralProfile) {
	p.profile = profile.Clone()
	for t, st := range p.profile.Traits {
		p.profile.Traits[t] = sanitizeState(st)
	}
}

// Profile returns a copy of the current profile.
func (p *Profiler) Profile() model.BehavioralProfile {
	return p.profile.Clone()
}

// ApplyIdleDecay charges elapsed idle time against trait confidence.
func (p *Profiler) ApplyIdleDecay(now time.Time) model.BehavioralProfile {
	p.profile = ApplyIdleDecay(p.profile, p.idleDecay, now)
	return p.Profile()
}

// UpdateFromPassive folds one quiz session's telemetry into the profile.
func (p *Profiler) UpdateFromPassive(tel model.PassiveTelemetry, outcomes []model.Outcome, now time.Time) (model.BehavioralProfile, error) {
	signals := PassiveSignals(tel, outcomes)
	if signals == nil {
		return p.Profile(), ErrNoItems
	}
	decayed := ApplyIdleDecay(p.profile, p.idleDecay, now)
	p.profile = applySignals(decayed, signals, p.passiveRate, p.confidenceStep, now)
	return p.Profile(), nil
}

// UpdateFromActive folds one mini-game result into the profile.
func (p *Profiler) UpdateFromActive(sig model.ActiveSignal, now time.Time) (model.BehavioralProfile, error) {
	signals, err := ActiveSignals(sig)
	if err != nil {
		return p.Profile(), fmt.Errorf("active signal: %w", err)
	}
	decayed := ApplyIdleDecay(p.profile, p.idleDecay, now)
	p.profile = applySignals(decayed, signals, p.activeRate, p.confidenceStep, now)
	return p.Profile(), nil
}

// Modifiers returns the simulator multipliers for the current profile.
func (p *Profiler) Modifiers() model.Modifiers {
	return PredictionModifiers(p.profile)
}

// Archetype returns the display label for the current profile.
func (p *Profiler) Archetype() string {
	return Archetype(p.profile)
}

// Reset restores the uncertain prior.
func (p *Profiler) Reset() {
	p.profile = model.NewBehavioralProfile()
}
