package predict

import (
	"math"

	"github.com/okian/prepscore/internal/domain/model"
)

// Curve samples a Gaussian density around final for display.
func Curve(final, minScore, maxScore float64, cfg Config) []model.CurvePoint {
	sigma := math.Max(cfg.MinSigma, (maxScore-minScore)/4)
	lo := math.Max(0, final-3*sigma)
	hi := math.Min(cfg.MaxMarks, final+3*sigma)
	n := cfg.CurvePoints
	step := (hi - lo) / float64(n-1)
	norm := 1 / (sigma * math.Sqrt(2*math.Pi))

	points := make([]model.CurvePoint, n)
	for i := range points {
		x := lo + float64(i)*step
		d := (x - final) / sigma
		points[i] = model.CurvePoint{X: Round(x, 2), Y: norm * math.Exp(-0.5*d*d)}
	}
	return points
}

// FlatCurve is the placeholder shown before any practice data exists.
func FlatCurve(cfg Config) []model.CurvePoint {
	n := cfg.CurvePoints
	step := cfg.MaxMarks / float64(n-1)
	points := make([]model.CurvePoint, n)
	for i := range points {
		points[i] = model.CurvePoint{X: Round(float64(i)*step, 2), Y: 1 / cfg.MaxMarks}
	}
	return points
}
