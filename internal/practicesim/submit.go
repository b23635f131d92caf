package practicesim

import (
	"context"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	service "github.com/okian/prepscore/internal/app"
	"github.com/okian/prepscore/pkg/logger"
)

// counters are shared by the submitting goroutines.
type counters struct {
	submitted  atomic.Int64
	created    atomic.Int64
	duplicates atomic.Int64
	replayed   atomic.Int64
	failed     atomic.Int64
	violations atomic.Int64
}

func (c *counters) into(stats *Stats) {
	stats.Submitted = int(c.submitted.Load())
	stats.Created = int(c.created.Load())
	stats.Duplicates = int(c.duplicates.Load())
	stats.Replayed = int(c.replayed.Load())
	stats.Failed = int(c.failed.Load())
	stats.Violations += int(c.violations.Load())
}

// submission is one POST to the ingestion API.
type submission struct {
	path   string
	body   any
	id     string
	replay bool
}

func sessionSubmissions(subs []service.SessionSubmission) []submission {
	out := make([]submission, 0, len(subs))
	for i := range subs {
		out = append(out, submission{path: "/sessions", body: subs[i], id: subs[i].SessionID})
	}
	return out
}

func gameSubmissions(subs []service.GameSubmission) []submission {
	out := make([]submission, 0, len(subs))
	for i := range subs {
		out = append(out, submission{path: "/games", body: subs[i], id: subs[i].RoundID})
	}
	return out
}

func replays(subs []submission, idx []int) []submission {
	out := make([]submission, 0, len(idx))
	for _, i := range idx {
		r := subs[i]
		r.replay = true
		out = append(out, r)
	}
	return out
}

// ingestionAck is the part of a session or game answer the runner inspects.
type ingestionAck struct {
	Duplicate bool `json:"duplicate"`
}

// submitAll posts every submission with at most workers requests in flight.
// Transport failures are counted, not returned; only cancellation aborts.
func submitAll(ctx context.Context, client *Client, workers int, subs []submission, c *counters) error {
	log := logger.Get().Named("practicesim")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, sub := range subs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			var ack ingestionAck
			c.submitted.Add(1)
			status, err := client.Post(gctx, sub.path, sub.body, &ack, http.StatusOK, http.StatusCreated)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.failed.Add(1)
				log.Debug(gctx, "submission failed", logger.String("path", sub.path), logger.String("id", sub.id), logger.Error(err))
				return nil
			}
			if sub.replay {
				c.replayed.Add(1)
			}
			if ack.Duplicate {
				c.duplicates.Add(1)
			} else {
				c.created.Add(1)
			}
			if violation := checkAck(sub.replay, status, ack); violation != "" {
				c.violations.Add(1)
				log.Warn(gctx, "ingestion invariant violated",
					logger.String("path", sub.path),
					logger.String("id", sub.id),
					logger.String("violation", violation))
			}
			return nil
		})
	}
	return g.Wait()
}

// checkAck returns a description of what is wrong with an ingestion answer,
// or the empty string when it is consistent.
func checkAck(replay bool, status int, ack ingestionAck) string {
	switch {
	case replay && !ack.Duplicate:
		return "replayed id was not reported as duplicate"
	case !replay && ack.Duplicate:
		return "fresh id was reported as duplicate"
	case ack.Duplicate && status != http.StatusOK:
		return "duplicate answered with a status other than 200"
	case !ack.Duplicate && status != http.StatusCreated:
		return "new submission answered with a status other than 201"
	}
	return ""
}
