package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/artie-labs/snowflow/lib/retry"
)

const (
	maxAttempts     = 3
	sleepIntervalMs = 500
	sleepMaxMs      = 3500
)

type Store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Close() error
}

type storeWrapper struct {
	*sql.DB
	retryCfg retry.RetryConfig
}

func newRetryConfig() retry.RetryConfig {
	return retry.NewRetryConfig(retry.NewRetryConfigArgs{
		JitterBaseMs:   sleepIntervalMs,
		JitterMaxMs:    sleepMaxMs,
		MaxAttempts:    maxAttempts,
		IsRetryableErr: isRetryableError,
	})
}

func (s *storeWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return retry.WithRetries(ctx, s.retryCfg, func(attempt int, _ error) (sql.Result, error) {
		if attempt > 0 {
			slog.Warn("Retrying query", slog.Int("attempt", attempt), slog.String("query", query))
		}
		return s.DB.ExecContext(ctx, query, args...)
	})
}

func (s *storeWrapper) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return retry.WithRetries(ctx, s.retryCfg, func(_ int, _ error) (*sql.Rows, error) {
		return s.DB.QueryContext(ctx, query, args...)
	})
}

func Open(driverName, dsn string) (Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to start a SQL client for driver %q: %w", driverName, err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate the DB connection for driver %q: %w", driverName, err)
	}

	return WithDatabase(db), nil
}

func WithDatabase(db *sql.DB) Store {
	return &storeWrapper{
		DB:       db,
		retryCfg: newRetryConfig(),
	}
}
