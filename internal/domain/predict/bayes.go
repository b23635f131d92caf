package predict

import "github.com/okian/prepscore/internal/domain/model"

// GlobalConfidence is the mean confidence over weighted subjects, or the
// configured prior when none qualify.
func GlobalConfidence(subjects []model.SubjectSnapshot, cfg Config) float64 {
	var sum float64
	var n int
	for _, s := range subjects {
		if s.ExamWeight <= 0 {
			continue
		}
		sum += s.Confidence
		n++
	}
	if n == 0 {
		return cfg.ConfidencePrior
	}
	return sum / float64(n)
}

// Bayesian shrinks the simulated average toward the conservative baseline by
// how little evidence backs it.
func Bayesian(avg float64, subjects []model.SubjectSnapshot, cfg Config) float64 {
	g := GlobalConfidence(subjects, cfg)
	return avg*g + cfg.ConservativeBaseline*(1-g)
}
