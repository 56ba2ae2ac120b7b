package config

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/stringutil"
)

const (
	defaultParallelism = 1
	maxParallelism     = 32
	defaultKeyPrefix   = "snowflow"
)

func readFileToConfig(pathToConfig string) (*Config, error) {
	bytes, err := os.ReadFile(pathToConfig)
	if err != nil {
		return nil, err
	}

	var config Config
	if err = yaml.Unmarshal(bytes, &config); err != nil {
		return nil, err
	}

	config.setDefaults()
	return &config, nil
}

func defaultRunLogDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "snowflow", "logs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "snowflow", "logs")
	}

	return filepath.Join(home, ".local", "share", "snowflow", "logs")
}

func (c *Config) setDefaults() {
	if c.Existence.Strategy == "" {
		c.Existence.Strategy = constants.RunLog
	}

	if c.Existence.Parallelism == 0 {
		c.Existence.Parallelism = defaultParallelism
	}

	if c.RunLog.Backend == "" {
		c.RunLog.Backend = constants.FileBackend
	}

	if c.RunLog.Dir == "" {
		c.RunLog.Dir = defaultRunLogDir()
	}

	if c.RunLog.KeyPrefix == "" {
		c.RunLog.KeyPrefix = defaultKeyPrefix
	}

	if c.Existence.Path != nil && c.Existence.Path.Scheme == "" {
		c.Existence.Path.Scheme = constants.S3
	}
}

// S3For returns the export location of an inflow, inflow level settings override the top level ones.
func (c Config) S3For(inflow Inflow) S3Settings {
	var settings S3Settings
	if c.S3 != nil {
		settings = *c.S3
	}

	if inflow.S3 != nil {
		settings.Bucket = cmp.Or(inflow.S3.Bucket, settings.Bucket)
		settings.Prefix = cmp.Or(inflow.S3.Prefix, settings.Prefix)
		settings.Region = cmp.Or(inflow.S3.Region, settings.Region)
		settings.AwsAccessKeyID = cmp.Or(inflow.S3.AwsAccessKeyID, settings.AwsAccessKeyID)
		settings.AwsSecretAccessKey = cmp.Or(inflow.S3.AwsSecretAccessKey, settings.AwsSecretAccessKey)
		settings.RoleARN = cmp.Or(inflow.S3.RoleARN, settings.RoleARN)
	}

	return settings
}

func (s Snowflake) Validate() error {
	if stringutil.Empty(s.AccountID, s.Username, s.Warehouse) {
		return fmt.Errorf("one of snowflake settings is empty (account, username, warehouse)")
	}

	if s.Password == "" && s.PathToPrivateKey == "" {
		return fmt.Errorf("one of password or privateKeyPath must be set")
	}

	if s.StorageIntegration == "" {
		return fmt.Errorf("snowflake storage integration is empty")
	}

	return nil
}

func (e Existence) Validate() error {
	if !e.Strategy.IsValid() {
		return fmt.Errorf("invalid existence strategy: %q", e.Strategy)
	}

	if e.Parallelism < 1 || e.Parallelism > maxParallelism {
		return fmt.Errorf("existence parallelism must be between 1 and %d, got: %d", maxParallelism, e.Parallelism)
	}

	if e.MaxChecksPerSecond < 0 {
		return fmt.Errorf("existence maxChecksPerSecond cannot be negative, got: %v", e.MaxChecksPerSecond)
	}

	if e.Strategy == constants.PathProbe {
		if e.Path == nil || e.Path.Bucket == "" {
			return fmt.Errorf("path existence strategy requires path.bucket to be set")
		}

		if e.Path.Scheme != constants.S3 && e.Path.Scheme != constants.GCS {
			return fmt.Errorf("invalid path scheme: %q", e.Path.Scheme)
		}
	}

	return nil
}

// Validate checks the settings that are needed before a flow can be planned.
// The inflow tree itself (commands, filters, duplicate names) is validated when it is built.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if c.Snowflake == nil {
		return fmt.Errorf("snowflake config is nil")
	}

	if err := c.Snowflake.Validate(); err != nil {
		return fmt.Errorf("invalid snowflake config: %w", err)
	}

	if err := c.Existence.Validate(); err != nil {
		return err
	}

	switch c.RunLog.Backend {
	case constants.FileBackend:
	case constants.RedisBackend:
		if c.Redis == nil || c.Redis.Addr == "" {
			return fmt.Errorf("redis run log backend requires redis.addr to be set")
		}
	default:
		return fmt.Errorf("invalid run log backend: %q", c.RunLog.Backend)
	}

	if len(c.Inflows) == 0 {
		return fmt.Errorf("no inflows configured")
	}

	for _, inflow := range c.Inflows {
		if inflow.Name == "" {
			return fmt.Errorf("inflow name is empty")
		}

		if c.S3For(inflow).Bucket == "" {
			return fmt.Errorf("inflow %q has no s3 bucket", inflow.Name)
		}
	}

	return nil
}
