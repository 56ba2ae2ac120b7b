package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/retry"
	"github.com/artie-labs/snowflow/lib/runlog"
)

const (
	maxAttempts     = 3
	sleepIntervalMs = 250
	sleepMaxMs      = 2000
)

var retryableNetworkErrors = []error{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	io.EOF,
	syscall.ETIMEDOUT,
}

// isRetryableNetworkError checks for common network errors that are retryable
func isRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}

	// Check for standard network errors
	for _, retryableErr := range retryableNetworkErrors {
		if errors.Is(err, retryableErr) {
			return true
		}
	}

	// Check for net.Error timeout
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if isRetryableNetworkError(err) {
		return true
	}

	errMsg := err.Error()

	// Server busy or loading errors
	if strings.Contains(errMsg, "BUSY") ||
		strings.Contains(errMsg, "TRYAGAIN") ||
		strings.Contains(errMsg, "LOADING") {
		return true
	}

	// Connection pool errors
	if strings.Contains(errMsg, "connection pool timeout") ||
		strings.Contains(errMsg, "i/o timeout") {
		return true
	}

	// Master/replica errors
	if strings.Contains(errMsg, "READONLY") ||
		strings.Contains(errMsg, "MASTERDOWN") {
		return true
	}

	return false
}

func Validate(cfg *config.Redis) error {
	if cfg == nil {
		return fmt.Errorf("redis config is nil")
	}

	if cfg.Addr == "" {
		return fmt.Errorf("redis addr is empty")
	}

	if cfg.Database < 0 {
		return fmt.Errorf("invalid redis database: %d", cfg.Database)
	}

	return nil
}

// Store is a [runlog.Store] that keeps each schema's run log as a JSON string.
type Store struct {
	redisClient *redis.Client
	keyPrefix   string
	retryCfg    retry.RetryConfig
}

func runLogKey(keyPrefix string, key runlog.Key) string {
	return fmt.Sprintf("%s:runlog:%s", keyPrefix, key.String())
}

func (s *Store) Load(ctx context.Context, key runlog.Key) (*runlog.Log, error) {
	bytes, err := retry.WithRetries(ctx, s.retryCfg, func(_ int, _ error) ([]byte, error) {
		return s.redisClient.Get(ctx, runLogKey(s.keyPrefix, key)).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, runlog.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run log %q: %w", key.String(), err)
	}

	return runlog.Unmarshal(bytes)
}

func (s *Store) Save(ctx context.Context, key runlog.Key, log *runlog.Log) error {
	bytes, err := runlog.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}

	err = s.retryCfg.WithRetries(ctx, func(_ int, _ error) error {
		return s.redisClient.Set(ctx, runLogKey(s.keyPrefix, key), bytes, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set run log %q: %w", key.String(), err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.redisClient.Close()
}

func LoadRedis(ctx context.Context, cfg *config.Redis, keyPrefix string) (*Store, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	// Test connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Successfully connected to Redis",
		slog.String("addr", cfg.Addr),
		slog.Int("database", cfg.Database),
	)

	return &Store{
		redisClient: rdb,
		keyPrefix:   keyPrefix,
		retryCfg: retry.NewRetryConfig(retry.NewRetryConfigArgs{
			JitterBaseMs:   sleepIntervalMs,
			JitterMaxMs:    sleepMaxMs,
			MaxAttempts:    maxAttempts,
			IsRetryableErr: IsRetryableError,
		}),
	}, nil
}
