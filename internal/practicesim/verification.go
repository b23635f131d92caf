package practicesim

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/types"
)

// verifyPrediction lists every invariant res breaks. practiced reports
// whether any non-gating subject currently has proficiency above zero.
func verifyPrediction(res model.PredictionResult, maxMarks float64, practiced bool) []string {
	var out []string
	within := func(name string, v, lo, hi float64) {
		if math.IsNaN(v) || v < lo || v > hi {
			out = append(out, fmt.Sprintf("%s %.4f outside [%g, %g]", name, v, lo, hi))
		}
	}

	within("score", res.Score, 0, maxMarks)
	within("range.min", res.Range.Min, 0, maxMarks)
	within("range.max", res.Range.Max, 0, maxMarks)
	within("confidence", res.Confidence, 0, 1)
	if res.Range.Min > res.Range.Max {
		out = append(out, fmt.Sprintf("range min %.4f above max %.4f", res.Range.Min, res.Range.Max))
	}
	if len(res.Curve) == 0 {
		out = append(out, "empty distribution curve")
	}
	for i, p := range res.Curve {
		within(fmt.Sprintf("curve[%d].x", i), p.X, 0, maxMarks)
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) || p.Y < 0 {
			out = append(out, fmt.Sprintf("curve[%d].y %.4f is not a density", i, p.Y))
		}
	}

	recruit := slices.Contains(res.Flags, model.FlagNewRecruit)
	switch {
	case recruit && practiced:
		out = append(out, "NEW_RECRUIT raised for a candidate with practiced subjects")
	case !recruit && !practiced:
		out = append(out, "NEW_RECRUIT missing for a candidate without practice")
	case recruit && (res.Score != 0 || res.Confidence != 0 || res.Range.Min != 0 || res.Range.Max != maxMarks):
		out = append(out, "NEW_RECRUIT result is not the neutral empty-state answer")
	}
	return out
}

// hasPractice reports whether any non-gating subject has proficiency above zero.
func hasPractice(rows []types.SubjectMastery) bool {
	for _, r := range rows {
		if !r.Gating && r.Proficiency > 0 {
			return true
		}
	}
	return false
}

// sameResult compares the reproducible parts of two seeded predictions.
func sameResult(a, b model.PredictionResult) bool {
	return a.Score == b.Score &&
		a.Range == b.Range &&
		a.Confidence == b.Confidence &&
		a.Breakdown == b.Breakdown &&
		slices.Equal(a.Flags, b.Flags)
}
