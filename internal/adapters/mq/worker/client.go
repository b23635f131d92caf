package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/pkg/logger"
	"github.com/okian/prepscore/pkg/metrics"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultPingTimeout = time.Second
)

// Enqueuer is the producer side of the request queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, r model.Request) error
}

// Client is the caller's side of the simulator. It stamps every request
// with a correlation id and routes each response back to the goroutine
// waiting for it, so overlapping predictions never see each other's answers.
type Client struct {
	queue       Enqueuer
	timeout     time.Duration
	pingTimeout time.Duration
	newID       func() string

	mu      sync.Mutex
	pending map[string]chan model.Response

	logger logger.Logger
}

// NewClient creates a client that submits to q. Wire it as the pool's Responder.
func NewClient(q Enqueuer, opts ...ClientOption) *Client {
	c := &Client{
		queue:       q,
		timeout:     defaultTimeout,
		pingTimeout: defaultPingTimeout,
		newID:       uuid.NewString,
		pending:     make(map[string]chan model.Response),
		logger:      logger.Get().Named("simulator-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliver routes a worker response to its waiting caller. Responses for
// callers that already gave up are dropped.
func (c *Client) Deliver(resp model.Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()

	if !ok {
		metrics.RecordOrphanedResponse()
		c.logger.Debug(context.Background(), "dropping orphaned response", logger.String("request_id", resp.ID))
		return
	}
	ch <- resp
}

// Pending returns the number of requests awaiting a response.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Send submits a raw request and waits for its response. The request id is
// replaced by a fresh correlation id on the wire and restored on the response.
func (c *Client) Send(ctx context.Context, req model.Request) (model.Response, error) { //nolint:gocritic // hugeParam: requests travel by value
	timeout := c.timeout
	if req.Command == model.CommandPing {
		timeout = c.pingTimeout
	}
	callerID := req.ID
	resp, err := c.roundTrip(ctx, req, timeout)
	if err != nil {
		return model.Response{}, err
	}
	resp.ID = callerID
	return resp, nil
}

// Ping checks that the simulator answers within the ping timeout.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, model.Request{Command: model.CommandPing}, c.pingTimeout)
	if err != nil {
		metrics.RecordSimulatorPing("timeout")
		return err
	}
	if resp.Status != model.StatusPong {
		metrics.RecordSimulatorPing("error")
		return fmt.Errorf("%w: %s", ErrUnexpectedAck, resp.Status)
	}
	metrics.RecordSimulatorPing("pong")
	return nil
}

// Predict runs one prediction through the simulator.
func (c *Client) Predict(ctx context.Context, snap model.Snapshot, opts *model.PredictOptions) (model.PredictionResult, error) {
	start := time.Now()
	resp, err := c.roundTrip(ctx, model.Request{Command: model.CommandPredict, Snapshot: &snap, Options: opts}, c.timeout)
	metrics.RecordPredictionLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return model.PredictionResult{}, err
	}

	switch resp.Status {
	case model.StatusSuccess:
		if resp.Result == nil {
			return model.PredictionResult{}, fmt.Errorf("%w: empty result", ErrSimulator)
		}
		return *resp.Result, nil
	case model.StatusError:
		if resp.Trace != "" {
			c.logger.Debug(ctx, "simulator trace", logger.String("trace", resp.Trace))
		}
		return model.PredictionResult{}, fmt.Errorf("%w: %s", ErrSimulator, resp.Error)
	default:
		return model.PredictionResult{}, fmt.Errorf("%w: %s", ErrUnexpectedAck, resp.Status)
	}
}

// roundTrip registers a correlation id, enqueues a private copy of req and
// races the response against ctx and timeout. A request that loses the race
// is orphaned, not cancelled: the worker finishes it and Deliver drops it.
func (c *Client) roundTrip(ctx context.Context, req model.Request, timeout time.Duration) (model.Response, error) { //nolint:gocritic // hugeParam: requests travel by value
	msg := req.Clone()
	msg.ID = c.newID()

	ch := make(chan model.Response, 1)
	c.mu.Lock()
	c.pending[msg.ID] = ch
	c.mu.Unlock()

	if err := c.queue.Enqueue(ctx, msg); err != nil {
		c.forget(msg.ID)
		return model.Response{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return resp, nil
	case <-timer.C:
		c.forget(msg.ID)
		metrics.RecordSimulatorTimeout()
		c.logger.Warn(ctx, "simulator request timed out",
			logger.String("request_id", msg.ID),
			logger.String("command", string(msg.Command)),
			logger.Duration("timeout", timeout),
		)
		return model.Response{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		c.forget(msg.ID)
		return model.Response{}, fmt.Errorf("simulator request: %w", ctx.Err())
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
