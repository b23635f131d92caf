package predict

import (
	"fmt"

	"github.com/okian/prepscore/internal/domain/model"
)

// Config lists every option the simulator recognizes. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// RunCount is the number of Monte Carlo runs per prediction.
	RunCount int `json:"run_count" koanf:"run_count"`
	// MaxRunCount caps per-request run counts.
	MaxRunCount int `json:"max_run_count" koanf:"max_run_count"`
	// MaxMarks is the top of the score scale.
	MaxMarks float64 `json:"max_marks" koanf:"max_marks"`
	// NoiseScale converts a volatility-weighted deviate into marks.
	NoiseScale float64 `json:"noise_scale" koanf:"noise_scale"`
	// SubjectShare is the weight of a subject's own deviate; the rest is day luck.
	SubjectShare float64 `json:"subject_share" koanf:"subject_share"`
	// DeviateClamp bounds every standard-normal draw to ±DeviateClamp.
	DeviateClamp float64 `json:"deviate_clamp" koanf:"deviate_clamp"`
	// PanicThreshold is the blended deviate below which the panic multiplier applies.
	PanicThreshold float64 `json:"panic_threshold" koanf:"panic_threshold"`

	// ConservativeBaseline is the typical safe score low-confidence predictions shrink toward.
	ConservativeBaseline float64 `json:"conservative_baseline" koanf:"conservative_baseline"`
	// ConfidencePrior is the global confidence used when no subject qualifies.
	ConfidencePrior float64 `json:"confidence_prior" koanf:"confidence_prior"`

	// MaterialityThreshold is the smallest penalty that raises a flag.
	MaterialityThreshold float64 `json:"materiality_threshold" koanf:"materiality_threshold"`
	GamblerPenaltyScale  float64 `json:"gambler_penalty_scale" koanf:"gambler_penalty_scale"`
	FatiguePenaltyScale  float64 `json:"fatigue_penalty_scale" koanf:"fatigue_penalty_scale"`
	FatiguePenaltyFloor  float64 `json:"fatigue_penalty_floor" koanf:"fatigue_penalty_floor"`
	PanicPenaltyScale    float64 `json:"panic_penalty_scale" koanf:"panic_penalty_scale"`
	// GatingPassMark is the qualifying score the gating group must reach.
	GatingPassMark float64 `json:"gating_pass_mark" koanf:"gating_pass_mark"`

	// DeepHistory and ShallowHistory pick the adaptive stacking weights.
	DeepHistory     int           `json:"deep_history" koanf:"deep_history"`
	ShallowHistory  int           `json:"shallow_history" koanf:"shallow_history"`
	DeepWeights     model.Weights `json:"deep_weights" koanf:"deep_weights"`
	ShallowWeights  model.Weights `json:"shallow_weights" koanf:"shallow_weights"`
	BalancedWeights model.Weights `json:"balanced_weights" koanf:"balanced_weights"`

	// Precision is the number of decimals the final score is rounded to.
	Precision int `json:"precision" koanf:"precision"`
	// CurvePoints and MinSigma shape the display distribution.
	CurvePoints int     `json:"curve_points" koanf:"curve_points"`
	MinSigma    float64 `json:"min_sigma" koanf:"min_sigma"`

	// Seed fixes the random source when non-zero. Per-request seeds take precedence.
	Seed int64 `json:"seed" koanf:"seed"`
}

// DefaultConfig returns the stock simulator settings.
func DefaultConfig() Config {
	return Config{
		RunCount:             500,
		MaxRunCount:          20000,
		MaxMarks:             200,
		NoiseScale:           5,
		SubjectShare:         0.7,
		DeviateClamp:         3.5,
		PanicThreshold:       -1.0,
		ConservativeBaseline: 80,
		ConfidencePrior:      0.1,
		MaterialityThreshold: 1.0,
		GamblerPenaltyScale:  400,
		FatiguePenaltyScale:  60,
		FatiguePenaltyFloor:  2,
		PanicPenaltyScale:    60,
		GatingPassMark:       66,
		DeepHistory:          500,
		ShallowHistory:       50,
		DeepWeights:          model.Weights{Simulated: 0.2, Bayesian: 0.5, Pattern: 0.3},
		ShallowWeights:       model.Weights{Simulated: 0.5, Bayesian: 0.2, Pattern: 0.3},
		BalancedWeights:      model.Weights{Simulated: 0.34, Bayesian: 0.33, Pattern: 0.33},
		Precision:            1,
		CurvePoints:          20,
		MinSigma:             5,
	}
}

// Validate reports the first setting that would make predictions meaningless.
func (c Config) Validate() error {
	switch {
	case c.RunCount <= 0:
		return fmt.Errorf("%w: run_count must be positive", ErrInvalidConfig)
	case c.MaxRunCount < c.RunCount:
		return fmt.Errorf("%w: max_run_count below run_count", ErrInvalidConfig)
	case c.MaxMarks <= 0:
		return fmt.Errorf("%w: max_marks must be positive", ErrInvalidConfig)
	case c.NoiseScale < 0:
		return fmt.Errorf("%w: noise_scale must not be negative", ErrInvalidConfig)
	case c.SubjectShare < 0 || c.SubjectShare > 1:
		return fmt.Errorf("%w: subject_share must be within [0,1]", ErrInvalidConfig)
	case c.DeviateClamp <= 0:
		return fmt.Errorf("%w: deviate_clamp must be positive", ErrInvalidConfig)
	case c.ConfidencePrior < 0 || c.ConfidencePrior > 1:
		return fmt.Errorf("%w: confidence_prior must be within [0,1]", ErrInvalidConfig)
	case c.ShallowHistory > c.DeepHistory:
		return fmt.Errorf("%w: shallow_history above deep_history", ErrInvalidConfig)
	case !validWeights(c.DeepWeights) || !validWeights(c.ShallowWeights) || !validWeights(c.BalancedWeights):
		return fmt.Errorf("%w: adaptive weights must be non-negative with a positive sum", ErrInvalidConfig)
	case c.Precision < 0 || c.Precision > 6:
		return fmt.Errorf("%w: precision must be within [0,6]", ErrInvalidConfig)
	case c.CurvePoints < 2:
		return fmt.Errorf("%w: curve_points must be at least 2", ErrInvalidConfig)
	case c.MinSigma <= 0:
		return fmt.Errorf("%w: min_sigma must be positive", ErrInvalidConfig)
	}
	return nil
}
