package inflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/artie-labs/snowflow/clients/redis"
	"github.com/artie-labs/snowflow/clients/snowflake"
	"github.com/artie-labs/snowflow/lib/awslib"
	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/existence"
	"github.com/artie-labs/snowflow/lib/flow"
	"github.com/artie-labs/snowflow/lib/gcslib"
	"github.com/artie-labs/snowflow/lib/rdsexport"
	"github.com/artie-labs/snowflow/lib/runlog"
	"github.com/artie-labs/snowflow/lib/stringutil"
	"github.com/artie-labs/snowflow/lib/telemetry/metrics/base"
	"github.com/artie-labs/snowflow/lib/typing"
)

type closer func() error

type resources struct {
	closers []closer
}

func (r *resources) add(c closer) {
	r.closers = append(r.closers, c)
}

func (r *resources) close() {
	for _, c := range slices.Backward(r.closers) {
		if err := c(); err != nil {
			slog.Warn("Failed to close resource", slog.Any("err", err))
		}
	}
}

// discover merges the tables found in the RDS export metadata into every inflow that has discovery enabled.
func discover(ctx context.Context, cfg config.Config) (config.Config, error) {
	cfg.Inflows = slices.Clone(cfg.Inflows)
	for i, inflow := range cfg.Inflows {
		if !inflow.Discover {
			continue
		}

		s3Settings := cfg.S3For(inflow)
		awsCfg, err := awslib.LoadConfig(ctx, s3Settings)
		if err != nil {
			return config.Config{}, err
		}

		prefix := stringutil.JoinNonEmpty("/", strings.Trim(s3Settings.Prefix, "/"), strings.Trim(inflow.Path, "/"))
		metadata, err := rdsexport.LoadMetadata(ctx, awslib.NewS3Client(awsCfg), s3Settings.Bucket, prefix)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load export metadata for inflow %q: %w", inflow.Name, err)
		}

		cfg.Inflows[i] = rdsexport.Merge(inflow, metadata)
		slog.Info("Discovered export metadata", slog.String("inflow", inflow.Name), slog.String("prefix", prefix))
	}

	return cfg, nil
}

func loadRunLogStore(ctx context.Context, cfg config.Config, res *resources) (runlog.Store, error) {
	switch cfg.RunLog.Backend {
	case constants.FileBackend:
		return runlog.NewFileStore(cfg.RunLog.Dir)
	case constants.RedisBackend:
		store, err := redis.LoadRedis(ctx, cfg.Redis, cfg.RunLog.KeyPrefix)
		if err != nil {
			return nil, err
		}

		res.add(store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("invalid run log backend: %q", cfg.RunLog.Backend)
	}
}

func loadMarkerStore(ctx context.Context, cfg config.Config, res *resources) (existence.MarkerStore, error) {
	switch cfg.Existence.Path.Scheme {
	case constants.S3:
		var s3Settings config.S3Settings
		if cfg.S3 != nil {
			s3Settings = *cfg.S3
		}

		awsCfg, err := awslib.LoadConfig(ctx, s3Settings)
		if err != nil {
			return nil, err
		}

		return awslib.NewS3Client(awsCfg), nil
	case constants.GCS:
		var gcsSettings config.GCSSettings
		if cfg.GCS != nil {
			gcsSettings = *cfg.GCS
		}

		client, err := gcslib.NewGCSClient(ctx, gcsSettings)
		if err != nil {
			return nil, err
		}

		res.add(client.Close)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid path scheme: %q", cfg.Existence.Path.Scheme)
	}
}

// loadChecker returns the existence checker for the configured strategy and, for the path strategy, the marker to record loaded tables with.
func loadChecker(ctx context.Context, settings *config.Settings, sfStore *snowflake.Store, runLogs runlog.Store, res *resources) (flow.ExistenceChecker, Marker, error) {
	cfg := settings.Config
	var checker flow.ExistenceChecker
	var marker Marker
	switch cfg.Existence.Strategy {
	case constants.DirectQuery:
		if sfStore == nil {
			return nil, nil, fmt.Errorf("query existence strategy requires a snowflake connection")
		}
		checker = sfStore
	case constants.PathProbe:
		store, err := loadMarkerStore(ctx, cfg, res)
		if err != nil {
			return nil, nil, err
		}

		pathChecker, err := existence.NewPathChecker(store, *cfg.Existence.Path)
		if err != nil {
			return nil, nil, err
		}

		checker = pathChecker
		marker = pathChecker
	case constants.RunLog:
		checker = runlog.NewChecker(runLogs)
	default:
		return nil, nil, fmt.Errorf("invalid existence strategy: %q", cfg.Existence.Strategy)
	}

	if settings.Force {
		slog.Info("Force is enabled, writenx objects will be written regardless of whether they exist")
		return existence.NeverExists{}, marker, nil
	}

	if cfg.Existence.MaxChecksPerSecond > 0 {
		checker = existence.NewRateLimitedChecker(checker, cfg.Existence.MaxChecksPerSecond)
	}

	return checker, marker, nil
}

// StartInflows wires the configured stores and existence checker and runs every inflow once.
func StartInflows(ctx context.Context, settings *config.Settings, metricsClient base.Client) error {
	cfg, err := discover(ctx, settings.Config)
	if err != nil {
		return err
	}

	var res resources
	defer res.close()

	var sfStore *snowflake.Store
	if settings.Execute || cfg.Existence.Strategy == constants.DirectQuery {
		sfStore, err = snowflake.LoadSnowflake(*cfg.Snowflake, nil)
		if err != nil {
			return fmt.Errorf("failed to load snowflake: %w", err)
		}
		res.add(sfStore.Close)
	}

	runLogs, err := loadRunLogStore(ctx, cfg, &res)
	if err != nil {
		return fmt.Errorf("failed to load run log store: %w", err)
	}

	checker, marker, err := loadChecker(ctx, settings, sfStore, runLogs, &res)
	if err != nil {
		return fmt.Errorf("failed to load existence checker: %w", err)
	}

	args := Args{
		Config:     cfg,
		Execute:    settings.Execute,
		Force:      settings.Force,
		Checker:    checker,
		TypeMapper: typing.NewTypeMap(),
		RunLogs:    runLogs,
		Marker:     marker,
		Metrics:    metricsClient,
		Output:     os.Stdout,
	}

	// A nil *snowflake.Store would otherwise be a non-nil [Executor].
	if sfStore != nil {
		args.Executor = sfStore
	}

	result, err := Run(ctx, args)
	if err != nil {
		return err
	}

	slog.Info("Inflows finished",
		slog.Bool("execute", settings.Execute),
		slog.Int("operations", result.Plan.Len()),
		slog.Int("statements", result.Statements),
	)
	return nil
}
