// Package taxonomy holds the static subject definitions of the exam.
package taxonomy

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/okian/prepscore/internal/domain/model"
)

// Sentinel errors for taxonomy lookups and validation.
var (
	ErrUnknownSubject  = errors.New("unknown subject")
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
)

const weightSumTolerance = 1e-6

// Default returns the built-in subject list: the general studies paper plus the
// qualifying aptitude paper used as the gate.
func Default() []model.SubjectDefinition {
	return []model.SubjectDefinition{
		{ID: "history", ExamWeight: 0.16, DailyDecayRate: 0.010, ComplexityClass: model.ComplexityFactual},
		{ID: "geography", ExamWeight: 0.14, DailyDecayRate: 0.010, ComplexityClass: model.ComplexityConceptual},
		{ID: "polity", ExamWeight: 0.15, DailyDecayRate: 0.008, ComplexityClass: model.ComplexityConceptual},
		{ID: "economy", ExamWeight: 0.13, DailyDecayRate: 0.012, ComplexityClass: model.ComplexityAnalytical},
		{ID: "environment", ExamWeight: 0.12, DailyDecayRate: 0.012, ComplexityClass: model.ComplexityFactual},
		{ID: "science_tech", ExamWeight: 0.10, DailyDecayRate: 0.015, ComplexityClass: model.ComplexityFactual},
		{ID: "current_affairs", ExamWeight: 0.20, DailyDecayRate: 0.030, ComplexityClass: model.ComplexityFactual},
		{ID: "csat_quant", ExamWeight: 0.40, DailyDecayRate: 0.005, ComplexityClass: model.ComplexityAnalytical, Gating: true},
		{ID: "csat_reasoning", ExamWeight: 0.30, DailyDecayRate: 0.005, ComplexityClass: model.ComplexityAnalytical, Gating: true},
		{ID: "csat_comprehension", ExamWeight: 0.30, DailyDecayRate: 0.004, ComplexityClass: model.ComplexityConceptual, Gating: true},
	}
}

// Taxonomy is an immutable, indexed set of subject definitions.
type Taxonomy struct {
	byID  map[string]model.SubjectDefinition
	order []string
}

// New indexes defs. Weights of each group (primary, gating) must sum to 1.
func New(defs []model.SubjectDefinition) (*Taxonomy, error) {
	t := &Taxonomy{byID: make(map[string]model.SubjectDefinition, len(defs))}
	var primary, gating float64
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: subject without id", ErrInvalidTaxonomy)
		}
		if _, dup := t.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate subject %q", ErrInvalidTaxonomy, d.ID)
		}
		if d.ExamWeight < 0 || d.ExamWeight > 1 || d.DailyDecayRate < 0 || d.DailyDecayRate >= 1 {
			return nil, fmt.Errorf("%w: subject %q out of range", ErrInvalidTaxonomy, d.ID)
		}
		if d.Gating {
			gating += d.ExamWeight
		} else {
			primary += d.ExamWeight
		}
		t.byID[d.ID] = d
		t.order = append(t.order, d.ID)
	}
	if math.Abs(primary-1) > weightSumTolerance {
		return nil, fmt.Errorf("%w: primary weights sum to %.4f", ErrInvalidTaxonomy, primary)
	}
	if gating != 0 && math.Abs(gating-1) > weightSumTolerance {
		return nil, fmt.Errorf("%w: gating weights sum to %.4f", ErrInvalidTaxonomy, gating)
	}
	return t, nil
}

// MustDefault builds the default taxonomy and panics if it is inconsistent.
func MustDefault() *Taxonomy {
	t, err := New(Default())
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the definition for id.
func (t *Taxonomy) Lookup(id string) (model.SubjectDefinition, error) {
	d, ok := t.byID[id]
	if !ok {
		return model.SubjectDefinition{}, fmt.Errorf("%w: %s", ErrUnknownSubject, id)
	}
	return d, nil
}

// All returns the definitions in declaration order.
func (t *Taxonomy) All() []model.SubjectDefinition {
	out := make([]model.SubjectDefinition, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// IDs returns the sorted subject ids.
func (t *Taxonomy) IDs() []string {
	ids := append([]string(nil), t.order...)
	sort.Strings(ids)
	return ids
}
