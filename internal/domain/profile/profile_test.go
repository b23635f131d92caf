package profile_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func repeat(o model.Outcome, n int) []model.Outcome {
	out := make([]model.Outcome, n)
	for i := range out {
		out[i] = o
	}
	return out
}

func withTraits(values map[model.Trait]float64) model.BehavioralProfile {
	p := model.NewBehavioralProfile()
	for t, v := range values {
		p.Traits[t] = model.TraitState{Value: v, Confidence: 0.5}
	}
	return p
}

func TestUpdateTrait(t *testing.T) {
	Convey("Given the uncertain prior", t, func() {
		st := model.TraitState{Value: 0.5}

		Convey("When a single high signal arrives", func() {
			got := profile.UpdateTrait(st, 1, 0.3, 0.05)
			So(got.Value, ShouldAlmostEqual, 0.65, 1e-12)
			So(got.Confidence, ShouldAlmostEqual, 0.05, 1e-12)
		})

		Convey("When identical updates repeat a hundred times", func() {
			for i := 0; i < 100; i++ {
				st = profile.UpdateTrait(st, 0.9, 0.3, 0.05)
			}
			Convey("Then confidence saturates without reaching one", func() {
				So(st.Confidence, ShouldBeGreaterThan, 0.99)
				So(st.Confidence, ShouldBeLessThan, 1.0)
				So(st.Value, ShouldAlmostEqual, 0.9, 1e-3)
			})
		})
	})

	Convey("Given a confident trait", t, func() {
		st := model.TraitState{Value: 0.5, Confidence: 1}
		got := profile.UpdateTrait(st, 1, 0.3, 0.05)
		So(got.Value, ShouldAlmostEqual, 0.575, 1e-12)
	})

	Convey("Given out of range input", t, func() {
		got := profile.UpdateTrait(model.TraitState{Value: math.NaN(), Confidence: -3}, 7, 0.3, 0.05)
		So(got.Value, ShouldBeBetweenOrEqual, 0, 1)
		So(got.Confidence, ShouldBeBetweenOrEqual, 0, 1)
	})
}

func TestApplyIdleDecay(t *testing.T) {
	Convey("Given a profile last updated at epoch", t, func() {
		p := withTraits(map[model.Trait]float64{model.TraitFocus: 0.9})
		p.LastUpdatedAt = &epoch

		Convey("When less than a day passes", func() {
			got := profile.ApplyIdleDecay(p, 0.98, epoch.Add(20*time.Hour))
			So(got.Traits[model.TraitFocus].Confidence, ShouldEqual, 0.5)
		})

		Convey("When ten days pass", func() {
			got := profile.ApplyIdleDecay(p, 0.98, epoch.Add(240*time.Hour))
			So(got.Traits[model.TraitFocus].Confidence, ShouldAlmostEqual, 0.5*math.Pow(0.98, 10), 1e-9)
			So(got.Traits[model.TraitFocus].Value, ShouldEqual, 0.9)

			Convey("Then decaying again at the same instant is a no-op", func() {
				again := profile.ApplyIdleDecay(got, 0.98, epoch.Add(240*time.Hour))
				So(again.Traits[model.TraitFocus].Confidence, ShouldEqual, got.Traits[model.TraitFocus].Confidence)
			})
		})
	})
}

func TestPassiveSignals(t *testing.T) {
	Convey("Given a calm, steady session", t, func() {
		outcomes := repeat(model.OutcomeCorrect, 10)
		sig := profile.PassiveSignals(model.PassiveTelemetry{DurationsMs: []float64{65_000}}, outcomes)

		So(sig[model.TraitFocus], ShouldEqual, 1)
		So(sig[model.TraitCalm], ShouldEqual, 1)
		So(sig[model.TraitEndurance], ShouldEqual, 0.6)
		So(sig[model.TraitRisk], ShouldEqual, 0.5)
		So(sig[model.TraitSpeed], ShouldAlmostEqual, 0.5, 1e-9)
	})

	Convey("Given impulsive clicks and answer switching", t, func() {
		outcomes := repeat(model.OutcomeCorrect, 4)
		tel := model.PassiveTelemetry{ImpulseClicks: 2, Switches: []int{1, 1, 0, 2}}
		sig := profile.PassiveSignals(tel, outcomes)
		So(sig[model.TraitFocus], ShouldAlmostEqual, 1-0.5*0.5-0.2*1.0, 1e-12)
	})

	Convey("Given a session that falls apart at the end", t, func() {
		outcomes := append(repeat(model.OutcomeCorrect, 6), repeat(model.OutcomeWrong, 2)...)
		sig := profile.PassiveSignals(model.PassiveTelemetry{}, outcomes)
		So(sig[model.TraitEndurance], ShouldEqual, 0.3)
	})

	Convey("Given a session with a shaky start", t, func() {
		outcomes := append(repeat(model.OutcomeWrong, 2), repeat(model.OutcomeCorrect, 6)...)
		sig := profile.PassiveSignals(model.PassiveTelemetry{}, outcomes)
		So(sig[model.TraitEndurance], ShouldEqual, 0.8)
	})

	Convey("Given too few items for an endurance read", t, func() {
		sig := profile.PassiveSignals(model.PassiveTelemetry{}, repeat(model.OutcomeWrong, 5))
		So(sig[model.TraitEndurance], ShouldEqual, 0.5)
	})

	Convey("Given many skips", t, func() {
		outcomes := append(repeat(model.OutcomeSkipped, 5), repeat(model.OutcomeCorrect, 5)...)
		sig := profile.PassiveSignals(model.PassiveTelemetry{}, outcomes)
		So(sig[model.TraitRisk], ShouldEqual, 0.2)
	})

	Convey("Given many wrong answers and no skips", t, func() {
		outcomes := append(repeat(model.OutcomeWrong, 5), repeat(model.OutcomeCorrect, 5)...)
		sig := profile.PassiveSignals(model.PassiveTelemetry{}, outcomes)
		So(sig[model.TraitRisk], ShouldEqual, 0.8)
	})

	Convey("Given second guessing on wrong answers", t, func() {
		outcomes := []model.Outcome{model.OutcomeWrong, model.OutcomeWrong, model.OutcomeCorrect}
		tel := model.PassiveTelemetry{Switches: []int{4, 2, 9}}
		sig := profile.PassiveSignals(tel, outcomes)
		So(sig[model.TraitCalm], ShouldAlmostEqual, 1-0.15*3, 1e-12)
	})

	Convey("Given durations outside the band", t, func() {
		fast := profile.PassiveSignals(model.PassiveTelemetry{DurationsMs: []float64{1000, 2000}}, repeat(model.OutcomeCorrect, 2))
		slow := profile.PassiveSignals(model.PassiveTelemetry{DurationsMs: []float64{500_000}}, repeat(model.OutcomeCorrect, 1))
		So(fast[model.TraitSpeed], ShouldEqual, 1)
		So(slow[model.TraitSpeed], ShouldEqual, 0)
	})

	Convey("Given no usable durations", t, func() {
		sig := profile.PassiveSignals(model.PassiveTelemetry{DurationsMs: []float64{math.NaN(), -4}}, repeat(model.OutcomeCorrect, 2))
		_, ok := sig[model.TraitSpeed]
		So(ok, ShouldBeFalse)
	})

	Convey("Given an empty session", t, func() {
		So(profile.PassiveSignals(model.PassiveTelemetry{ImpulseClicks: 3}, nil), ShouldBeNil)
	})
}

func TestActiveSignals(t *testing.T) {
	Convey("Given the stress game with a reaction time", t, func() {
		sig, err := profile.ActiveSignals(model.ActiveSignal{
			GameID: profile.GameStress,
			Score:  0.7,
			Aux:    map[string]float64{profile.AuxReactionMs: 600},
		})
		So(err, ShouldBeNil)
		So(sig[model.TraitCalm], ShouldEqual, 0.7)
		So(sig[model.TraitSpeed], ShouldAlmostEqual, 0.5, 1e-12)
	})

	Convey("Given the memory game with flexibility", t, func() {
		sig, err := profile.ActiveSignals(model.ActiveSignal{
			GameID: profile.GameMemory,
			Score:  1.4,
			Aux:    map[string]float64{profile.AuxFlexibility: 0.25},
		})
		So(err, ShouldBeNil)
		So(sig[model.TraitPrecision], ShouldEqual, 1)
		So(sig[model.TraitAdaptability], ShouldEqual, 0.25)
	})

	Convey("Given each known game", t, func() {
		for _, g := range profile.KnownGames() {
			sig, err := profile.ActiveSignals(model.ActiveSignal{GameID: g, Score: 0.5})
			So(err, ShouldBeNil)
			So(len(sig), ShouldEqual, 1)
		}
	})

	Convey("Given an unknown game", t, func() {
		_, err := profile.ActiveSignals(model.ActiveSignal{GameID: "tetris", Score: 0.5})
		So(errors.Is(err, profile.ErrUnknownGame), ShouldBeTrue)
	})

	Convey("Given a NaN score", t, func() {
		_, err := profile.ActiveSignals(model.ActiveSignal{GameID: profile.GameRisk, Score: math.NaN()})
		So(errors.Is(err, profile.ErrInvalidSignal), ShouldBeTrue)
	})
}

func TestPredictionModifiers(t *testing.T) {
	Convey("Given the prior profile", t, func() {
		mods := profile.PredictionModifiers(model.NewBehavioralProfile())
		So(mods.Mistake, ShouldAlmostEqual, 1, 1e-12)
		So(mods.Panic, ShouldEqual, 1)
		So(mods.Fatigue, ShouldEqual, 1)
		So(mods.Risk, ShouldAlmostEqual, 1, 1e-12)
		So(mods.Guessing, ShouldEqual, 1.02)
	})

	Convey("Given a nervous, tired, reckless profile", t, func() {
		mods := profile.PredictionModifiers(withTraits(map[model.Trait]float64{
			model.TraitCalm:      0.1,
			model.TraitEndurance: 0.2,
			model.TraitRisk:      0.9,
			model.TraitFocus:     0.2,
			model.TraitPrecision: 0.2,
		}))
		So(mods.Panic, ShouldAlmostEqual, 0.85, 1e-12)
		So(mods.Fatigue, ShouldAlmostEqual, 0.9, 1e-12)
		So(mods.Mistake, ShouldAlmostEqual, 0.91, 1e-12)
		So(mods.Risk, ShouldAlmostEqual, 1.4, 1e-12)
		So(mods.Guessing, ShouldEqual, 0.95)
	})

	Convey("Given a very timid profile", t, func() {
		mods := profile.PredictionModifiers(withTraits(map[model.Trait]float64{model.TraitRisk: 0.1}))
		So(mods.Guessing, ShouldEqual, 0.97)
	})

	Convey("Given an empty trait map", t, func() {
		mods := profile.PredictionModifiers(model.BehavioralProfile{})
		So(mods.Panic, ShouldEqual, 1)
		So(mods.Mistake, ShouldAlmostEqual, 1, 1e-12)
	})

	Convey("Given malformed modifiers", t, func() {
		got := profile.SanitizeModifiers(model.Modifiers{Mistake: math.NaN(), Panic: -1, Fatigue: 0.9})
		So(got, ShouldResemble, model.Modifiers{Mistake: 1, Panic: 1, Fatigue: 0.9, Guessing: 1, Risk: 1})
	})
}

func TestArchetype(t *testing.T) {
	Convey("Given the prior profile", t, func() {
		So(profile.Archetype(model.NewBehavioralProfile()), ShouldEqual, profile.DefaultArchetype)
	})

	Convey("Given a composed, precise profile", t, func() {
		p := withTraits(map[model.Trait]float64{model.TraitFocus: 0.8, model.TraitCalm: 0.8, model.TraitPrecision: 0.7})
		So(profile.Archetype(p), ShouldEqual, "Steady Strategist")
	})

	Convey("Given a precise but anxious profile", t, func() {
		p := withTraits(map[model.Trait]float64{model.TraitCalm: 0.2, model.TraitPrecision: 0.8})
		So(profile.Archetype(p), ShouldEqual, "Anxious Perfectionist")
	})

	Convey("Given a cautious profile", t, func() {
		p := withTraits(map[model.Trait]float64{model.TraitRisk: 0.2})
		So(profile.Archetype(p), ShouldEqual, "Cautious Planner")
	})
}

func TestProfiler(t *testing.T) {
	Convey("Given a profiler", t, func() {
		p := profile.New()

		Convey("When a passive session is recorded", func() {
			got, err := p.UpdateFromPassive(model.PassiveTelemetry{}, repeat(model.OutcomeCorrect, 10), epoch)
			So(err, ShouldBeNil)
			So(got.TotalSessions, ShouldEqual, 1)
			So(got.LastUpdatedAt.Equal(epoch), ShouldBeTrue)
			So(got.Traits[model.TraitFocus].Value, ShouldAlmostEqual, 0.65, 1e-12)
			// precision has no passive signal
			So(got.Traits[model.TraitPrecision], ShouldResemble, model.TraitState{Value: 0.5})
		})

		Convey("Then passive updates move further than active ones", func() {
			passive := profile.New()
			active := profile.New()
			a, _ := passive.UpdateFromPassive(model.PassiveTelemetry{}, repeat(model.OutcomeCorrect, 4), epoch)
			b, _ := active.UpdateFromActive(model.ActiveSignal{GameID: profile.GameReaction, Score: 1}, epoch)
			So(a.Traits[model.TraitFocus].Value, ShouldBeGreaterThan, b.Traits[model.TraitFocus].Value)
		})

		Convey("When an empty session is recorded", func() {
			_, err := p.UpdateFromPassive(model.PassiveTelemetry{}, nil, epoch)
			So(errors.Is(err, profile.ErrNoItems), ShouldBeTrue)
			So(p.Profile().TotalSessions, ShouldEqual, 0)
		})

		Convey("When an unknown game is recorded", func() {
			_, err := p.UpdateFromActive(model.ActiveSignal{GameID: "pong", Score: 1}, epoch)
			So(errors.Is(err, profile.ErrUnknownGame), ShouldBeTrue)
			So(p.Profile(), ShouldResemble, model.NewBehavioralProfile())
		})

		Convey("When a stored profile is loaded and reset", func() {
			stored := withTraits(map[model.Trait]float64{model.TraitCalm: 0.1})
			p.Load(stored)
			So(p.Modifiers().Panic, ShouldBeLessThan, 1)
			p.Reset()
			So(p.Modifiers().Panic, ShouldEqual, 1)
		})
	})

	Convey("Given custom rates", t, func() {
		p := profile.New(profile.WithPassiveRate(0.5), profile.WithActiveRate(2))
		got, _ := p.UpdateFromActive(model.ActiveSignal{GameID: profile.GameReaction, Score: 1}, epoch)
		// the invalid active rate is ignored
		So(got.Traits[model.TraitFocus].Value, ShouldAlmostEqual, 0.5+0.5*profile.DefaultActiveRate, 1e-12)
	})
}
