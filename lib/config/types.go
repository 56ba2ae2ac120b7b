package config

import (
	"github.com/artie-labs/snowflow/lib/config/constants"
)

type Sentry struct {
	DSN string `yaml:"dsn"`
}

type Reporting struct {
	Sentry *Sentry `yaml:"sentry"`
}

type Snowflake struct {
	AccountID        string `yaml:"account"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	PathToPrivateKey string `yaml:"privateKeyPath"`
	Warehouse        string `yaml:"warehouse"`
	Role             string `yaml:"role"`
	Region           string `yaml:"region"`
	Host             string `yaml:"host"`
	Application      string `yaml:"application"`
	// StorageIntegration is the Snowflake storage integration that grants access to the export bucket.
	StorageIntegration string `yaml:"storageIntegration"`
}

type S3Settings struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	// Optional, the default credential chain is used when these are not set.
	AwsAccessKeyID     string `yaml:"awsAccessKeyID,omitempty"`
	AwsSecretAccessKey string `yaml:"awsSecretAccessKey,omitempty"`
	RoleARN            string `yaml:"roleARN,omitempty"`
}

type GCSSettings struct {
	ProjectID         string `yaml:"projectID"`
	PathToCredentials string `yaml:"pathToCredentials"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type PathProbeSettings struct {
	Scheme constants.StorageScheme `yaml:"scheme"`
	Bucket string                  `yaml:"bucket"`
	Prefix string                  `yaml:"prefix"`
}

type Existence struct {
	Strategy constants.ExistenceStrategy `yaml:"strategy"`
	// AssumeMissingOnError - when a check fails, writenx objects are treated as missing instead of failing the run.
	AssumeMissingOnError bool `yaml:"assumeMissingOnError"`
	// Parallelism - number of sibling table checks that may be in flight at once.
	Parallelism int `yaml:"parallelism"`
	// MaxChecksPerSecond - rate limit for existence checks, 0 means unlimited.
	MaxChecksPerSecond float64            `yaml:"maxChecksPerSecond,omitempty"`
	Path               *PathProbeSettings `yaml:"path,omitempty"`
}

type RunLogSettings struct {
	Backend   constants.RunLogBackend `yaml:"backend"`
	Dir       string                  `yaml:"dir"`
	KeyPrefix string                  `yaml:"keyPrefix"`
}

type Filter struct {
	Type            constants.FilterMode `yaml:"type"`
	Items           []string             `yaml:"items"`
	CaseInsensitive bool                 `yaml:"caseInsensitive,omitempty"`
}

type Column struct {
	Name string `yaml:"name"`
	// Type is the source type, e.g. "mediumint unsigned".
	Type            string            `yaml:"type"`
	DestinationType string            `yaml:"destinationType,omitempty"`
	Destination     string            `yaml:"destination,omitempty"`
	Command         constants.Command `yaml:"command,omitempty"`
}

type Table struct {
	Name        string            `yaml:"name"`
	Destination string            `yaml:"destination,omitempty"`
	Path        string            `yaml:"path,omitempty"`
	Command     constants.Command `yaml:"command,omitempty"`
	// Filter applies to the table's columns.
	Filter  *Filter  `yaml:"filter,omitempty"`
	Columns []Column `yaml:"columns"`
}

type Schema struct {
	Name        string            `yaml:"name"`
	Destination string            `yaml:"destination,omitempty"`
	Path        string            `yaml:"path,omitempty"`
	Command     constants.Command `yaml:"command,omitempty"`
	// Filter applies to the schema's tables.
	Filter *Filter `yaml:"filter,omitempty"`
	Tables []Table `yaml:"tables"`
}

// Inflow describes a single source database (e.g. an RDS snapshot export) and how it maps into Snowflake.
type Inflow struct {
	Name string               `yaml:"name"`
	Type constants.SourceKind `yaml:"type"`
	// Destination is the Snowflake database, defaults to [Name].
	Destination string            `yaml:"destination,omitempty"`
	Path        string            `yaml:"path,omitempty"`
	Command     constants.Command `yaml:"command,omitempty"`
	// Filter applies to the inflow's schemas.
	Filter *Filter `yaml:"filter,omitempty"`
	// Discover - if enabled, tables and columns are discovered from the export metadata and merged under the configured ones.
	Discover bool        `yaml:"discover,omitempty"`
	S3       *S3Settings `yaml:"s3,omitempty"`
	Schemas  []Schema    `yaml:"schemas"`
}

type Config struct {
	Snowflake *Snowflake   `yaml:"snowflake,omitempty"`
	S3        *S3Settings  `yaml:"s3,omitempty"`
	GCS       *GCSSettings `yaml:"gcs,omitempty"`
	Redis     *Redis       `yaml:"redis,omitempty"`

	Existence Existence      `yaml:"existence"`
	RunLog    RunLogSettings `yaml:"runLog"`
	Inflows   []Inflow       `yaml:"inflows"`

	Reporting Reporting `yaml:"reporting"`
	Telemetry struct {
		Metrics struct {
			Provider constants.ExporterKind `yaml:"provider"`
			Settings map[string]any         `yaml:"settings,omitempty"`
		}
	}
}
