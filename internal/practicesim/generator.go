package practicesim

import (
	"math/rand"

	"github.com/google/uuid"

	service "github.com/okian/prepscore/internal/app"
	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/profile"
)

// Generator produces synthetic practice data for one candidate.
type Generator struct {
	rng      *rand.Rand
	subjects []string
	items    int
	skill    float64
}

// NewGenerator creates a generator over the given subjects. The same seed
// and subjects always yield the same submissions apart from their ids.
func NewGenerator(seed int64, subjects []string, items int, skill float64) *Generator {
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // synthetic data
		subjects: append([]string(nil), subjects...),
		items:    items,
		skill:    skill,
	}
}

// Sessions returns n practice sessions spread across the subjects.
func (g *Generator) Sessions(n int) []service.SessionSubmission {
	out := make([]service.SessionSubmission, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.session())
	}
	return out
}

func (g *Generator) session() service.SessionSubmission {
	subject := g.subjects[g.rng.Intn(len(g.subjects))]
	items := make([]model.SessionItem, g.items)
	tel := &model.PassiveTelemetry{
		Switches:    make([]int, g.items),
		DurationsMs: make([]float64, g.items),
	}
	for i := range items {
		items[i] = model.SessionItem{Difficulty: g.difficulty(), Outcome: g.outcome()}
		tel.Switches[i] = g.rng.Intn(3)
		tel.DurationsMs[i] = 15_000 + g.rng.Float64()*90_000
	}
	tel.ImpulseClicks = g.rng.Intn(g.items/4 + 1)
	return service.SessionSubmission{
		SessionID: uuid.NewString(),
		SubjectID: subject,
		Items:     items,
		Telemetry: tel,
	}
}

func (g *Generator) difficulty() model.Difficulty {
	switch r := g.rng.Float64(); {
	case r < 0.4:
		return model.DifficultyEasy
	case r < 0.8:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

func (g *Generator) outcome() model.Outcome {
	r := g.rng.Float64()
	switch {
	case r < 0.05:
		return model.OutcomeSkipped
	case r < 0.05+0.95*g.skill:
		return model.OutcomeCorrect
	default:
		return model.OutcomeWrong
	}
}

// Games returns n mini-game rounds cycling through every known game.
func (g *Generator) Games(n int) []service.GameSubmission {
	games := profile.KnownGames()
	out := make([]service.GameSubmission, 0, n)
	for i := 0; i < n; i++ {
		id := games[i%len(games)]
		sig := model.ActiveSignal{GameID: id, Score: g.rng.Float64()}
		switch id {
		case profile.GameStress:
			sig.Aux = map[string]float64{profile.AuxReactionMs: 200 + g.rng.Float64()*800}
		case profile.GameMemory:
			sig.Aux = map[string]float64{profile.AuxFlexibility: g.rng.Float64()}
		}
		out = append(out, service.GameSubmission{RoundID: uuid.NewString(), Signal: sig})
	}
	return out
}

// Pick returns share*n distinct indexes in [0,n) to replay.
func (g *Generator) Pick(n int, share float64) []int {
	k := int(float64(n) * share)
	if k <= 0 {
		return nil
	}
	return g.rng.Perm(n)[:k]
}
