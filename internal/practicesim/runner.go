package practicesim

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/types"
	"github.com/okian/prepscore/pkg/logger"
)

const percentageMultiplier = 100

// Run executes one complete practice simulation against the service.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if err := cfg.Validate(); err != nil {
		return stats, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = stats.StartTime.UnixNano()
	}
	log := logger.Get().Named("practicesim")
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting practice simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("games", cfg.Games),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
		logger.Bool("reset", cfg.Reset))

	// Step 1: the simulator must answer before anything is sent.
	if _, err := client.Get(ctx, "/ping", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	if cfg.Reset {
		if _, err := client.Post(ctx, "/reset", nil, nil, http.StatusNoContent); err != nil {
			return stats, fmt.Errorf("reset failed: %w", err)
		}
		log.Info(ctx, "candidate state reset")
	}

	// Step 2: discover the subjects the service tracks.
	var rows []types.SubjectMastery
	if _, err := client.Get(ctx, "/mastery", &rows); err != nil {
		return stats, fmt.Errorf("mastery retrieval failed: %w", err)
	}
	subjects := make([]string, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.SubjectID)
	}
	if len(subjects) == 0 {
		return stats, ErrNoSubjects
	}

	// Step 3: generate and submit, then replay a share of the ids.
	gen := NewGenerator(cfg.Seed, subjects, cfg.Items, cfg.Skill)
	subs := append(sessionSubmissions(gen.Sessions(cfg.Sessions)), gameSubmissions(gen.Games(cfg.Games))...)
	stats.SessionsGenerated = cfg.Sessions
	stats.GamesGenerated = cfg.Games

	var c counters
	if err := submitAll(ctx, client, cfg.Workers, subs, &c); err != nil {
		c.into(&stats)
		return stats, fmt.Errorf("submission failed: %w", err)
	}
	if err := submitAll(ctx, client, cfg.Workers, replays(subs, gen.Pick(len(subs), cfg.DuplicateRate)), &c); err != nil {
		c.into(&stats)
		return stats, fmt.Errorf("replay failed: %w", err)
	}
	c.into(&stats)

	// Step 4: predict and verify.
	if err := verifyPredictions(ctx, client, cfg, &stats); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)

	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d violations", ErrInvariant, stats.Violations)
	}
	log.Info(ctx, "practice simulation completed successfully")
	return stats, nil
}

func verifyPredictions(ctx context.Context, client *Client, cfg Config, stats *Stats) error {
	log := logger.Get().Named("practicesim")

	var rows []types.SubjectMastery
	if _, err := client.Get(ctx, "/mastery", &rows); err != nil {
		return fmt.Errorf("mastery retrieval failed: %w", err)
	}
	practiced := hasPractice(rows)

	for i := 0; i < cfg.Predictions; i++ {
		var res model.PredictionResult
		if _, err := client.Post(ctx, "/predict", nil, &res); err != nil {
			return fmt.Errorf("prediction %d failed: %w", i, err)
		}
		stats.Predictions++
		for _, v := range verifyPrediction(res, cfg.MaxMarks, practiced) {
			stats.Violations++
			log.Warn(ctx, "prediction invariant violated", logger.Int("prediction", i), logger.String("violation", v))
		}
		log.Debug(ctx, "prediction",
			logger.Float64("score", res.Score),
			logger.Float64("min", res.Range.Min),
			logger.Float64("max", res.Range.Max),
			logger.Float64("confidence", res.Confidence),
			logger.Any("flags", res.Flags))
	}

	// Seeded predictions over unchanged state must agree. Without a reset,
	// older records keep decaying between the two calls.
	if cfg.Predictions > 0 && cfg.Reset {
		opts := model.PredictOptions{Seed: cfg.Seed}
		var a, b model.PredictionResult
		if _, err := client.Post(ctx, "/predict", opts, &a); err != nil {
			return fmt.Errorf("seeded prediction failed: %w", err)
		}
		if _, err := client.Post(ctx, "/predict", opts, &b); err != nil {
			return fmt.Errorf("seeded prediction failed: %w", err)
		}
		stats.Predictions += 2
		if !sameResult(a, b) {
			stats.Violations++
			log.Warn(ctx, "seeded predictions disagree",
				logger.Float64("first", a.Score),
				logger.Float64("second", b.Score))
		}
	}
	return nil
}

func logStats(ctx context.Context, log logger.Logger, stats Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Submitted-stats.Failed) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("sessionsGenerated", stats.SessionsGenerated),
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("created", stats.Created),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("replayed", stats.Replayed),
		logger.Int("failed", stats.Failed),
		logger.Int("predictions", stats.Predictions),
		logger.Int("violations", stats.Violations),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
