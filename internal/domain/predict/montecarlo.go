package predict

import (
	"math"
	"math/rand"

	"github.com/okian/prepscore/internal/domain/model"
)

// uniformEpsilon keeps Box-Muller inputs away from the log singularity at 0.
const uniformEpsilon = 1e-9

// Simulation is the outcome of the Monte Carlo model.
type Simulation struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// BoxMuller maps two uniforms to a standard-normal deviate clamped to ±limit.
func BoxMuller(u1, u2, limit float64) float64 {
	u1 = math.Min(1-uniformEpsilon, math.Max(uniformEpsilon, u1))
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return math.Max(-limit, math.Min(limit, z))
}

// MonteCarlo runs the stratified simulation over the primary subjects.
// Each subject walks the runs through its own shuffled strata order, so
// every percentile band is visited exactly once per subject while subjects
// stay uncorrelated apart from the shared day-luck deviate. The result is
// deterministic for a given rng state.
func MonteCarlo(subjects []model.SubjectSnapshot, mods model.Modifiers, cfg Config, runs int, rng *rand.Rand) Simulation {
	if runs <= 0 {
		runs = 1
	}
	strata := make([][]int, len(subjects))
	for i := range subjects {
		strata[i] = rng.Perm(runs)
	}

	globalShare := 1 - cfg.SubjectShare
	sim := Simulation{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for run := 0; run < runs; run++ {
		dayLuck := BoxMuller(rng.Float64(), rng.Float64(), cfg.DeviateClamp)
		var total float64
		for i, s := range subjects {
			percentile := (float64(strata[i][run]) + 0.5) / float64(runs)
			own := BoxMuller(percentile, rng.Float64(), cfg.DeviateClamp)
			z := cfg.SubjectShare*own + globalShare*dayLuck
			total += subjectPoints(s, z, mods, cfg)
		}
		total = math.Max(0, math.Min(cfg.MaxMarks, total))
		sum += total
		sim.Min = math.Min(sim.Min, total)
		sim.Max = math.Max(sim.Max, total)
	}
	sim.Average = sum / float64(runs)
	return sim
}

// subjectPoints scores one subject for one run.
func subjectPoints(s model.SubjectSnapshot, z float64, mods model.Modifiers, cfg Config) float64 {
	base := 2 * s.ExamWeight * s.Proficiency
	volatility := (1 - s.Confidence) + 0.1
	noise := volatility * z * cfg.NoiseScale
	points := math.Max(0, (base+noise)*mods.Mistake*mods.Guessing)
	if z < cfg.PanicThreshold {
		points *= mods.Panic
	}
	return points
}
