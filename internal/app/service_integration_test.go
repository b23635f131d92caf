package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/prepscore/internal/adapters/repository"
	service "github.com/okian/prepscore/internal/app"
	"github.com/okian/prepscore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration_Persistence(t *testing.T) {
	Convey("Given a service backed by sqlite", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "state.db")

		open := func() *service.Service {
			store, err := repository.NewSQLiteStore(ctx, path)
			So(err, ShouldBeNil)
			svc := newService(service.WithStore(store, "sqlite"), service.WithCandidateID("aspirant-1"))
			So(svc.Start(ctx), ShouldBeNil)
			return svc
		}

		svc := open()
		_, err := svc.RecordSession(ctx, session("s-1", "polity", model.OutcomeCorrect, model.OutcomeCorrect, model.OutcomeWrong))
		So(err, ShouldBeNil)
		_, err = svc.RecordGame(ctx, service.GameSubmission{Signal: model.ActiveSignal{GameID: "stress", Score: 0.2}})
		So(err, ShouldBeNil)
		before := svc.Profile(ctx)
		svc.Stop(ctx)

		Convey("When the service restarts on the same file", func() {
			restarted := open()
			defer restarted.Stop(ctx)

			Convey("Then mastery and profile are restored", func() {
				stats := restarted.GetStats(ctx)
				So(stats.TrackedSubjects, ShouldEqual, 1)
				So(stats.HistoryDepth, ShouldEqual, 3)
				So(stats.StoreDriver, ShouldEqual, "sqlite")
				So(restarted.Profile(ctx).Traits[model.TraitCalm], ShouldResemble, before.Traits[model.TraitCalm])
			})

			Convey("Then a reset survives the next restart", func() {
				So(restarted.Reset(ctx), ShouldBeNil)
				restarted.Stop(ctx)

				again := open()
				defer again.Stop(ctx)
				So(again.GetStats(ctx).TrackedSubjects, ShouldEqual, 0)
				So(again.Profile(ctx).TotalSessions, ShouldEqual, 0)
			})
		})
	})
}

func TestServiceIntegration_Concurrency(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(service.WithWorkerCount(4))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		subjects := []string{"history", "geography", "polity", "economy", "environment", "science_tech", "current_affairs"}

		Convey("When sessions and predictions overlap", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 200)
			for i := 0; i < 70; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					sub := session(fmt.Sprintf("s-%d", i), subjects[i%len(subjects)], model.OutcomeCorrect, model.OutcomeWrong)
					if _, err := svc.RecordSession(ctx, sub); err != nil {
						errs <- err
					}
				}(i)
			}
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					res, err := svc.Predict(ctx, nil)
					if err != nil {
						errs <- err
						return
					}
					if res.Score < 0 || res.Score > 200 {
						errs <- fmt.Errorf("score out of range: %v", res.Score)
					}
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then nothing fails and every session is counted once", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
				So(svc.Snapshot().HistoryDepth, ShouldEqual, 140)
				So(svc.GetStats(ctx).PendingRequests, ShouldEqual, 0)
			})
		})
	})
}
