package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/logger"
	"github.com/artie-labs/snowflow/lib/telemetry/metrics"
	"github.com/artie-labs/snowflow/processes/inflow"
)

func main() {
	// Parse args into settings.
	settings, err := config.LoadSettings(os.Args[1:], true)
	if err != nil {
		logger.Fatal("Failed to load settings", slog.Any("err", err))
	}

	// Initialize default logger
	_logger, usingSentry := logger.NewLogger(settings)
	slog.SetDefault(_logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loading Telemetry
	metricsClient := metrics.LoadExporter(settings.Config)

	slog.Info("Config is loaded",
		slog.Int("inflows", len(settings.Config.Inflows)),
		slog.String("existenceStrategy", string(settings.Config.Existence.Strategy)),
		slog.Bool("execute", settings.Execute),
		slog.Bool("force", settings.Force),
		slog.Bool("sentry", usingSentry),
	)

	if err = inflow.StartInflows(ctx, settings, metricsClient); err != nil {
		logger.Fatal("Failed to run inflows", slog.Any("err", err))
	}
}
