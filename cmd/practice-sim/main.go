package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/prepscore/internal/practicesim"
	"github.com/okian/prepscore/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := practicesim.DefaultConfig()
	var (
		logLevel   string
		logFormat  string
		runTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "practice-sim",
		Short: "Drive a prepscore service with a synthetic candidate",
		Long: `practice-sim posts generated practice sessions and mini-game rounds to a
running prepscore service, replays a share of them to check idempotent
ingestion, then requests predictions and verifies every answer.`,
		Example: `  # Default run against a local service
  practice-sim

  # Larger run from a clean state
  practice-sim --sessions 5000 --games 500 --workers 16 --reset`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
				return err
			}
			if err := logger.SetLevelString(logLevel); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()

			_, err := practicesim.Run(ctx, cfg)
			if err != nil {
				logger.Get().Error(ctx, "practice simulation failed", logger.Error(err))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	f.IntVar(&cfg.Sessions, "sessions", cfg.Sessions, "Practice sessions to submit")
	f.IntVar(&cfg.Games, "games", cfg.Games, "Mini-game rounds to submit")
	f.IntVar(&cfg.Items, "items", cfg.Items, "Questions per session")
	f.IntVar(&cfg.Predictions, "predictions", cfg.Predictions, "Predictions to request after ingestion")
	f.Float64Var(&cfg.DuplicateRate, "duplicate-rate", cfg.DuplicateRate, "Share of submissions replayed with the same id")
	f.Float64Var(&cfg.Skill, "skill", cfg.Skill, "Probability a generated answer is correct")
	f.Float64Var(&cfg.MaxMarks, "max-marks", cfg.MaxMarks, "Top of the score scale the service uses")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	f.Int64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one from the clock)")
	f.BoolVar(&cfg.Reset, "reset", false, "Wipe candidate state before the run")
	f.DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "Overall run deadline")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&logFormat, "log-format", "text", "Log format (text or json)")
	return cmd
}
