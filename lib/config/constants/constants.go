package constants

// NodeKind is the level of an object within an inflow configuration.
type NodeKind string

const (
	Database NodeKind = "database"
	Schema   NodeKind = "schema"
	Table    NodeKind = "table"
	Column   NodeKind = "column"
)

// ChildKind returns the kind of nodes nested directly under [k].
func (k NodeKind) ChildKind() (NodeKind, bool) {
	switch k {
	case Database:
		return Schema, true
	case Schema:
		return Table, true
	case Table:
		return Column, true
	default:
		return "", false
	}
}

// Command controls whether an object is (re)written.
type Command string

const (
	Write Command = "write"
	// WriteNX - write only if the destination object does not exist yet.
	WriteNX Command = "writenx"
	Skip    Command = "skip"
)

func (c Command) IsValid() bool {
	switch c {
	case Write, WriteNX, Skip:
		return true
	default:
		return false
	}
}

type FilterMode string

const (
	Include FilterMode = "include"
	Exclude FilterMode = "exclude"
)

func (f FilterMode) IsValid() bool {
	return f == Include || f == Exclude
}

// OperationKind is the kind of destination operation emitted into a flow plan.
type OperationKind string

const (
	CreateSchema OperationKind = "create_schema"
	CreateTable  OperationKind = "create_table"
	LoadTable    OperationKind = "load_table"
	SkipObject   OperationKind = "skip"
)

// ExistenceStrategy selects how writenx objects are checked against the destination.
type ExistenceStrategy string

const (
	DirectQuery ExistenceStrategy = "query"
	PathProbe   ExistenceStrategy = "path"
	RunLog      ExistenceStrategy = "log"
)

func (e ExistenceStrategy) IsValid() bool {
	switch e {
	case DirectQuery, PathProbe, RunLog:
		return true
	default:
		return false
	}
}

type StorageScheme string

const (
	S3  StorageScheme = "s3"
	GCS StorageScheme = "gcs"
)

type RunLogBackend string

const (
	FileBackend  RunLogBackend = "file"
	RedisBackend RunLogBackend = "redis"
)

// SourceKind is the engine the exported data originates from, used for type mapping.
type SourceKind string

const (
	MySQL    SourceKind = "mysql"
	Postgres SourceKind = "postgres"
)

// ExporterKind is used for the Telemetry package
type ExporterKind string

const (
	Datadog ExporterKind = "datadog"
)

const (
	DefaultFileFormat = "parquet"
	StageSuffix       = "_SNOWFLOW_STAGE"
)
