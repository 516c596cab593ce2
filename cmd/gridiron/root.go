package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/app"
	"github.com/riskibarqy/gridiron-stats/internal/config"
	"github.com/riskibarqy/gridiron-stats/internal/observability"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type rootOptions struct {
	inMemory bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "gridiron",
		Short:         "NFL play-by-play loader and statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&opts.inMemory, "memory", false, "Keep records in process memory instead of Postgres")

	root.AddCommand(loadCmd(opts))
	root.AddCommand(statusCmd(opts))
	root.AddCommand(leadersCmd(opts))
	root.AddCommand(efficiencyCmd(opts))
	root.AddCommand(featuresCmd(opts))
	return root
}

// runWithApp wires the application for one command and tears it down after.
func runWithApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Build(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTelemetry, err := observability.Start(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	ctx, span := otel.Tracer("github.com/riskibarqy/gridiron-stats/cmd/gridiron").Start(ctx, "gridiron "+cmd.Name())
	defer span.End()

	a, err := app.New(ctx, cfg, logger, app.Options{InMemory: opts.inMemory})
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app failed", "error", err)
		}
	}()

	if err := fn(ctx, a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
