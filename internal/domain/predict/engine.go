// Package predict implements the ensemble score simulator: a stratified
// Monte Carlo model, a Bayesian shrinkage model and a rule-based pattern
// model, stacked into one prediction.
package predict

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/profile"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig replaces the engine configuration. Invalid configs are ignored.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.Validate() == nil {
			e.cfg = cfg
		}
	}
}

// WithRules replaces the pattern rules.
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		e.rules = append([]Rule(nil), rules...)
	}
}

// WithSeedSource sets where seeds come from when neither the request nor the
// config fixes one.
func WithSeedSource(fn func() int64) Option {
	return func(e *Engine) {
		if fn != nil {
			e.seeds = fn
		}
	}
}

// Engine produces predictions. It holds no per-candidate state and is safe
// for concurrent use.
type Engine struct {
	cfg   Config
	rules []Rule
	seeds func() int64
}

// NewEngine creates an engine with the default configuration.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cfg:   DefaultConfig(),
		rules: DefaultRules(),
		seeds: func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Predict runs the ensemble over snap.
func (e *Engine) Predict(ctx context.Context, snap model.Snapshot, opts model.PredictOptions) (model.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return model.PredictionResult{}, fmt.Errorf("predict: %w", err)
	}
	cfg := e.cfg
	snap = sanitizeSnapshot(snap)
	if IsEmpty(snap) {
		return EmptyResult(cfg), nil
	}

	runs := cfg.RunCount
	if opts.RunCount > 0 {
		runs = min(opts.RunCount, cfg.MaxRunCount)
	}
	rng := rand.New(rand.NewSource(e.seed(opts))) //nolint:gosec // simulation, not security

	sim := MonteCarlo(snap.Subjects, snap.Modifiers, cfg, runs, rng)
	if err := ctx.Err(); err != nil {
		return model.PredictionResult{}, fmt.Errorf("predict: %w", err)
	}
	bayes := Bayesian(sim.Average, snap.Subjects, cfg)
	patterns := DetectPatterns(sim.Average, snap, e.rules, cfg)

	breakdown := model.Breakdown{Simulated: sim.Average, Bayesian: bayes, Pattern: patterns.Score}
	weights := ResolveWeights(opts.Weights, snap.HistoryDepth, cfg)
	final := math.Max(0, math.Min(cfg.MaxMarks, Stack(weights, breakdown)))

	return model.PredictionResult{
		Score: Round(final, cfg.Precision),
		Range: model.ScoreRange{
			Min: Round(math.Max(0, final-(sim.Average-sim.Min)), cfg.Precision),
			Max: Round(math.Min(cfg.MaxMarks, final+(sim.Max-sim.Average)), cfg.Precision),
		},
		Confidence: GlobalConfidence(snap.Subjects, cfg),
		Flags:      patterns.Flags,
		Curve:      Curve(final, sim.Min, sim.Max, cfg),
		Breakdown: model.Breakdown{
			Simulated: Round(breakdown.Simulated, cfg.Precision),
			Bayesian:  Round(breakdown.Bayesian, cfg.Precision),
			Pattern:   Round(breakdown.Pattern, cfg.Precision),
		},
	}, nil
}

func (e *Engine) seed(opts model.PredictOptions) int64 {
	switch {
	case opts.Seed != 0:
		return opts.Seed
	case e.cfg.Seed != 0:
		return e.cfg.Seed
	default:
		return e.seeds()
	}
}

// IsEmpty reports whether no primary subject has any recorded proficiency.
func IsEmpty(snap model.Snapshot) bool {
	for _, s := range snap.Subjects {
		if s.Proficiency > 0 {
			return false
		}
	}
	return true
}

// EmptyResult is the neutral answer for a candidate with no practice data.
func EmptyResult(cfg Config) model.PredictionResult {
	return model.PredictionResult{
		Range: model.ScoreRange{Min: 0, Max: cfg.MaxMarks},
		Flags: []model.Flag{model.FlagNewRecruit},
		Curve: FlatCurve(cfg),
	}
}

// sanitizeSnapshot clamps every numeric field into range and neutralizes
// malformed modifiers.
func sanitizeSnapshot(snap model.Snapshot) model.Snapshot {
	out := snap.Clone()
	for i := range out.Subjects {
		out.Subjects[i] = sanitizeSubject(out.Subjects[i])
	}
	for i := range out.Gating {
		out.Gating[i] = sanitizeSubject(out.Gating[i])
	}
	out.Modifiers = profile.SanitizeModifiers(out.Modifiers)
	if out.HistoryDepth < 0 {
		out.HistoryDepth = 0
	}
	return out
}

func sanitizeSubject(s model.SubjectSnapshot) model.SubjectSnapshot {
	s.Proficiency = clampFinite(s.Proficiency, 0, 100)
	s.Confidence = clampFinite(s.Confidence, 0, 1)
	s.ExamWeight = clampFinite(s.ExamWeight, 0, 1)
	return s
}

func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
