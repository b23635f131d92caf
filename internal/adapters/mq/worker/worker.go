// Package worker runs the prediction simulator behind a request queue.
//
// Workers only ever see deep copies of requests and answer through a
// Responder, so the simulator shares no mutable state with its callers.
// Every request yields exactly one response, panics included.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/pkg/logger"
	"github.com/okian/prepscore/pkg/metrics"
)

// Predictor runs one prediction.
type Predictor interface {
	Predict(ctx context.Context, snap model.Snapshot, opts model.PredictOptions) (model.PredictionResult, error)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Request
}

// Responder receives every response a worker produces.
type Responder interface {
	Deliver(resp model.Response)
}

// Worker processes simulator requests.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)
	// Shutdown stops the worker after its current request.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	predictor Predictor
	responder Responder
	name      string

	// onHandled is called after each response; the pool uses it for throughput.
	onHandled func()

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, predictor Predictor, responder Responder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		predictor: predictor,
		responder: responder,
		name:      "worker",
		onHandled: func() {},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			w.responder.Deliver(w.Handle(ctx, req))
			w.onHandled()
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Handle answers one request. It never panics.
func (w *InMemoryWorker) Handle(ctx context.Context, req model.Request) (resp model.Response) { //nolint:gocritic // hugeParam: requests travel by value
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSimulatorPanic()
			metrics.RecordErrorByComponent("worker", "panic")
			w.logger.Error(ctx, "simulator panic recovered",
				logger.String("request_id", req.ID),
				logger.Any("panic", r),
			)
			resp = model.Response{
				ID:     req.ID,
				Status: model.StatusError,
				Error:  fmt.Sprintf("simulator panic: %v", r),
				Trace:  string(debug.Stack()),
			}
		}
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	switch req.Command {
	case model.CommandPing:
		return model.Response{ID: req.ID, Status: model.StatusPong}
	case model.CommandPredict:
		return w.predict(ctx, req)
	default:
		return model.Response{
			ID:     req.ID,
			Status: model.StatusError,
			Error:  fmt.Sprintf("unknown command %q", req.Command),
		}
	}
}

func (w *InMemoryWorker) predict(ctx context.Context, req model.Request) model.Response { //nolint:gocritic // hugeParam: requests travel by value
	if req.Snapshot == nil {
		return model.Response{ID: req.ID, Status: model.StatusError, Error: "prediction snapshot missing"}
	}
	snap := *req.Snapshot
	if req.HistoryHint != nil {
		snap.HistoryDepth = *req.HistoryHint
	}
	var opts model.PredictOptions
	if req.Options != nil {
		opts = *req.Options
	}

	result, err := w.predictor.Predict(ctx, snap, opts)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "predict_error")
		w.logger.Warn(ctx, "prediction failed", logger.String("request_id", req.ID), logger.Error(err))
		return model.Response{ID: req.ID, Status: model.StatusError, Error: err.Error()}
	}
	w.logger.Debug(ctx, "prediction served",
		logger.String("request_id", req.ID),
		logger.Float64("score", result.Score),
		logger.Int("flags", len(result.Flags)),
	)
	return model.Response{ID: req.ID, Status: model.StatusSuccess, Result: &result}
}
