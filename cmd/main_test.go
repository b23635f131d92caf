package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/prepscore/internal/config"
	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.WorkerCount = 2
	cfg.QueueSize = 32
	cfg.Simulator.Seed = 11
	cfg.Simulator.RunCount = 100
	return cfg
}

func TestNewStore(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		ctx := context.Background()
		cfg := testConfig()

		convey.Convey("When the driver is memory", func() {
			store, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(store, convey.ShouldNotBeNil)
			convey.So(store.Close(), convey.ShouldBeNil)
		})

		convey.Convey("When the driver is sqlite", func() {
			cfg.StoreDriver = config.StoreSQLite
			cfg.StorePath = filepath.Join(t.TempDir(), "nested", "prepscore.db")
			store, err := newStore(ctx, cfg)

			convey.Convey("Then the database is created", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Put(ctx, "mastery", "polity", []byte(`{}`)), convey.ShouldBeNil)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration with an invalid taxonomy", t, func() {
		cfg := testConfig()
		cfg.Subjects = []model.SubjectDefinition{{ID: "maths", ExamWeight: 0.2}}

		_, err := newService(context.Background(), cfg)
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestHTTPWiring(t *testing.T) {
	convey.Convey("Given the application wired end to end", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, testConfig())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()
		client := &http.Client{Timeout: 5 * time.Second}

		post := func(path, body string) *http.Response {
			resp, err := client.Post(srv.URL+path, "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			return resp
		}

		convey.Convey("Then docs and health endpoints are served", func() {
			for _, path := range []string{"/healthz", "/openapi.yaml", "/api-docs", "/ping", "/stats"} {
				resp, err := client.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then a fresh candidate is predicted as a new recruit", func() {
			resp := post("/predict", "")
			defer func() { _ = resp.Body.Close() }()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var res model.PredictionResult
			convey.So(json.NewDecoder(resp.Body).Decode(&res), convey.ShouldBeNil)
			convey.So(res.Flags, convey.ShouldContain, model.FlagNewRecruit)
		})

		convey.Convey("Then sessions flow into predictions", func() {
			for _, subject := range []string{"history", "geography", "polity", "economy", "environment", "science_tech", "current_affairs"} {
				resp := post("/sessions", `{"subject_id":"`+subject+`","items":[{"difficulty":"hard","outcome":"correct"},{"difficulty":"medium","outcome":"correct"}]}`)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
			}

			resp := post("/predict", `{"seed":5}`)
			defer func() { _ = resp.Body.Close() }()
			var res model.PredictionResult
			convey.So(json.NewDecoder(resp.Body).Decode(&res), convey.ShouldBeNil)
			convey.So(res.Score, convey.ShouldBeGreaterThan, 0)
			convey.So(res.Flags, convey.ShouldNotContain, model.FlagNewRecruit)
		})
	})
}

func TestUpdateServiceMetrics(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, testConfig())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)

		convey.Convey("Then updating metrics does not panic", func() {
			convey.So(func() { updateServiceMetrics(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updater returns when the context ends", func() {
			cctx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				startServiceMetricsUpdater(cctx, svc)
				close(done)
			}()
			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
