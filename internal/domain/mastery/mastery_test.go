package mastery_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/prepscore/internal/domain/mastery"
	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func practiced(prof float64, at time.Time) model.MasteryRecord {
	return model.MasteryRecord{SubjectID: "history", Proficiency: prof, Confidence: 0.4, LastPracticedAt: &at}
}

func items(outcomes ...model.Outcome) []model.SessionItem {
	out := make([]model.SessionItem, len(outcomes))
	for i, o := range outcomes {
		out[i] = model.SessionItem{Difficulty: model.DifficultyMedium, Outcome: o}
	}
	return out
}

func TestApplyDecay(t *testing.T) {
	Convey("Given a subject with a positive decay rate", t, func() {
		def := model.SubjectDefinition{ID: "history", ExamWeight: 0.16, DailyDecayRate: 0.02}
		rec := practiced(80, epoch)

		Convey("When less than a day has passed", func() {
			got := mastery.ApplyDecay(rec, def, epoch.Add(23*time.Hour))
			So(got.Proficiency, ShouldEqual, 80)
		})

		Convey("When several days have passed", func() {
			got := mastery.ApplyDecay(rec, def, epoch.Add(72*time.Hour))
			So(got.Proficiency, ShouldAlmostEqual, 80*math.Pow(0.98, 3), 1e-9)
			So(got.Confidence, ShouldEqual, rec.Confidence)
		})

		Convey("Then proficiency strictly decreases as elapsed time grows", func() {
			prev := 80.0
			for d := 1; d <= 30; d++ {
				got := mastery.ApplyDecay(rec, def, epoch.Add(time.Duration(d)*24*time.Hour+time.Hour))
				So(got.Proficiency, ShouldBeLessThan, prev)
				prev = got.Proficiency
			}
		})

		Convey("Then the input record is not mutated", func() {
			_ = mastery.ApplyDecay(rec, def, epoch.Add(240*time.Hour))
			So(rec.Proficiency, ShouldEqual, 80)
		})
	})

	Convey("Given a record that was never practiced", t, func() {
		def := model.SubjectDefinition{ID: "history", DailyDecayRate: 0.5}
		got := mastery.ApplyDecay(model.MasteryRecord{SubjectID: "history", Proficiency: 40}, def, epoch)
		So(got.Proficiency, ShouldEqual, 40)
	})

	Convey("Given a malformed record", t, func() {
		def := model.SubjectDefinition{ID: "history", DailyDecayRate: 0.01}
		got := mastery.ApplyDecay(model.MasteryRecord{Proficiency: math.NaN(), Confidence: 7}, def, epoch)
		So(got.Proficiency, ShouldEqual, 0)
		So(got.Confidence, ShouldEqual, 1)
	})
}

func TestWeightedMasteryIndex(t *testing.T) {
	Convey("Given a mix of difficulties", t, func() {
		session := []model.SessionItem{
			{Difficulty: model.DifficultyEasy, Outcome: model.OutcomeCorrect},
			{Difficulty: model.DifficultyMedium, Outcome: model.OutcomeWrong},
			{Difficulty: model.DifficultyHard, Outcome: model.OutcomeCorrect},
		}
		So(mastery.WeightedMasteryIndex(session), ShouldAlmostEqual, 3.5/5.0*100, 1e-9)
	})

	Convey("Given no items", t, func() {
		So(mastery.WeightedMasteryIndex(nil), ShouldEqual, 0)
	})

	Convey("Given only skipped items", t, func() {
		So(mastery.WeightedMasteryIndex(items(model.OutcomeSkipped, model.OutcomeSkipped)), ShouldEqual, 0)
	})
}

func TestRecordSession(t *testing.T) {
	def := model.SubjectDefinition{ID: "history", ExamWeight: 0.16, DailyDecayRate: 0.01}

	Convey("Given a brand new subject", t, func() {
		rec := model.NewMasteryRecord("history")

		Convey("When a perfect session is recorded", func() {
			got := mastery.RecordSession(rec, items(model.OutcomeCorrect, model.OutcomeCorrect), def, epoch)

			Convey("Then proficiency moves about halfway to the session score", func() {
				// two attempts => confidence 0.02 => weight 0.492
				So(got.Proficiency, ShouldAlmostEqual, 100*(0.5-0.4*0.02), 1e-9)
				So(got.Confidence, ShouldAlmostEqual, 0.02, 1e-12)
				So(got.TotalAttempts, ShouldEqual, 2)
				So(got.Attempts.Medium, ShouldEqual, 2)
				So(got.Streak, ShouldEqual, 1)
				So(*got.LastPracticedAt, ShouldEqual, epoch)
				So(got.Exposure, ShouldAlmostEqual, 0.01, 1e-12)
			})
		})
	})

	Convey("Given a well exercised subject", t, func() {
		rec := practiced(60, epoch)
		rec.TotalAttempts = 200

		Convey("Then a fresh session only nudges proficiency", func() {
			got := mastery.RecordSession(rec, items(model.OutcomeCorrect), def, epoch.Add(time.Hour))
			So(got.Proficiency, ShouldAlmostEqual, 60+(100-60)*0.1, 1e-9)
			So(got.Confidence, ShouldEqual, 1)
		})
	})

	Convey("Given a lapsed subject", t, func() {
		rec := practiced(90, epoch)
		rec.Streak = 5
		later := epoch.Add(10 * 24 * time.Hour)

		Convey("Then the blend starts from the decayed baseline", func() {
			got := mastery.RecordSession(rec, items(model.OutcomeWrong), def, later)
			decayed := 90 * math.Pow(0.99, 10)
			So(got.Proficiency, ShouldAlmostEqual, decayed+(0-decayed)*mastery.UpdateWeight(0.01), 1e-9)
			So(got.Streak, ShouldEqual, 1)
		})
	})

	Convey("Given extreme session scores", t, func() {
		Convey("Then proficiency stays within bounds", func() {
			rec := practiced(100, epoch)
			for i := 0; i < 50; i++ {
				rec = mastery.RecordSession(rec, items(model.OutcomeCorrect, model.OutcomeCorrect, model.OutcomeCorrect), def, epoch)
				So(rec.Proficiency, ShouldBeBetweenOrEqual, 0, 100)
			}
			for i := 0; i < 50; i++ {
				rec = mastery.RecordSession(rec, items(model.OutcomeWrong), def, epoch)
				So(rec.Proficiency, ShouldBeBetweenOrEqual, 0, 100)
			}
		})
	})

	Convey("Given an empty session", t, func() {
		rec := practiced(50, epoch)
		got := mastery.RecordSession(rec, nil, def, epoch.Add(time.Hour))
		So(got.Proficiency, ShouldEqual, 50)
		So(got.TotalAttempts, ShouldEqual, 0)
	})
}

func TestBlindSpots(t *testing.T) {
	Convey("Given material and minor subjects", t, func() {
		defs := []model.SubjectDefinition{
			{ID: "heavy", ExamWeight: 0.3},
			{ID: "covered", ExamWeight: 0.5},
			{ID: "minor", ExamWeight: 0.05},
			{ID: "edge", ExamWeight: 0.10},
		}
		records := map[string]model.MasteryRecord{
			"covered": {SubjectID: "covered", Exposure: 0.4},
			"heavy":   {SubjectID: "heavy", Exposure: 0.02},
		}

		Convey("Then only material, under-exposed subjects are reported", func() {
			got := mastery.BlindSpots(defs, records)
			So(len(got), ShouldEqual, 1)
			So(got[0].SubjectID, ShouldEqual, "heavy")
		})
	})
}

func TestTracker(t *testing.T) {
	Convey("Given a tracker over the default taxonomy", t, func() {
		tr := mastery.NewTracker(taxonomy.MustDefault())

		Convey("When recording a session for an unknown subject", func() {
			_, err := tr.RecordSession("astrology", items(model.OutcomeCorrect), epoch)
			So(errors.Is(err, mastery.ErrUnknownSubject), ShouldBeTrue)
		})

		Convey("When recording an empty session", func() {
			_, err := tr.RecordSession("history", nil, epoch)
			So(errors.Is(err, mastery.ErrEmptySession), ShouldBeTrue)
		})

		Convey("When recording sessions", func() {
			_, err := tr.RecordSession("history", items(model.OutcomeCorrect, model.OutcomeWrong), epoch)
			So(err, ShouldBeNil)
			_, err = tr.RecordSession("csat_quant", items(model.OutcomeCorrect), epoch)
			So(err, ShouldBeNil)

			Convey("Then history depth counts every item", func() {
				So(tr.HistoryDepth(), ShouldEqual, 3)
			})

			Convey("Then the snapshot separates the gating group", func() {
				primary, gating := tr.Snapshot(epoch)
				So(len(primary), ShouldEqual, 7)
				So(len(gating), ShouldEqual, 3)
				for _, s := range gating {
					if s.SubjectID == "csat_quant" {
						So(s.Proficiency, ShouldBeGreaterThan, 0)
					}
				}
			})

			Convey("Then the snapshot is decayed without touching stored state", func() {
				before, _ := tr.Record("history")
				primary, _ := tr.Snapshot(epoch.Add(30 * 24 * time.Hour))
				for _, s := range primary {
					if s.SubjectID == "history" {
						So(s.Proficiency, ShouldBeLessThan, before.Proficiency)
					}
				}
				after, _ := tr.Record("history")
				So(after.Proficiency, ShouldEqual, before.Proficiency)
			})

			Convey("Then records survive a load round trip", func() {
				other := mastery.NewTracker(taxonomy.MustDefault())
				dropped := other.Load(append(tr.Records(), model.MasteryRecord{SubjectID: "astrology"}))
				So(dropped, ShouldResemble, []string{"astrology"})
				So(other.Records(), ShouldResemble, tr.Records())
			})

			Convey("Then reset forgets everything", func() {
				tr.Reset()
				So(tr.HistoryDepth(), ShouldEqual, 0)
				So(tr.Records(), ShouldBeEmpty)
			})
		})
	})
}
