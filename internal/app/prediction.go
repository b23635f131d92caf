package service

import (
	"context"
	"fmt"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/predict"
	"github.com/okian/prepscore/pkg/logger"
	"github.com/okian/prepscore/pkg/metrics"
)

// Snapshot assembles the simulator input from the current state: decayed
// mastery split into primary and gating subjects plus profile modifiers.
func (s *Service) Snapshot() model.Snapshot {
	now := s.now()

	s.state.Lock()
	defer s.state.Unlock()

	primary, gating := s.tracker.Snapshot(now)
	return model.Snapshot{
		Subjects:     primary,
		Gating:       gating,
		Modifiers:    s.profiler.Modifiers(),
		HistoryDepth: s.tracker.HistoryDepth(),
	}
}

// Predict scores the current state through the simulator.
func (s *Service) Predict(ctx context.Context, opts *model.PredictOptions) (model.PredictionResult, error) {
	if err := s.running(); err != nil {
		return model.PredictionResult{}, err
	}

	snap := s.Snapshot()
	res, err := s.client.Predict(ctx, snap, opts)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeError, 0)
		metrics.RecordErrorByComponent("simulator", "predict")
		s.logger.Error(ctx, "prediction failed", logger.Error(err))
		return model.PredictionResult{}, fmt.Errorf("predict: %w", err)
	}

	outcome := metrics.OutcomeSuccess
	if predict.IsEmpty(snap) {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordPrediction(outcome, res.Score)
	for _, f := range res.Flags {
		metrics.RecordFlag(string(f))
	}
	s.logger.Debug(ctx, "prediction served",
		logger.Float64("score", res.Score),
		logger.Float64("confidence", res.Confidence),
		logger.Int("historyDepth", snap.HistoryDepth),
		logger.Any("flags", res.Flags),
	)
	return res, nil
}

// Simulate forwards a raw simulator message and returns its response.
// The response id echoes req.ID.
func (s *Service) Simulate(ctx context.Context, req model.Request) (model.Response, error) { //nolint:gocritic // hugeParam: requests travel by value
	if err := s.running(); err != nil {
		return model.Response{}, err
	}
	return s.client.Send(ctx, req)
}

// Ping checks that the simulator workers answer.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.running(); err != nil {
		return err
	}
	return s.client.Ping(ctx)
}
