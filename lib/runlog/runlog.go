package runlog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/redact"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key identifies the run log of a single destination schema.
type Key struct {
	Database string
	Schema   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s", k.Database, k.Schema)
}

type TableEntry struct {
	Table   string            `json:"table"`
	Command constants.Command `json:"command,omitempty"`
	Start   time.Time         `json:"start"`
	End     *time.Time        `json:"end,omitempty"`
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
}

// Log records the outcome of the latest run of a schema. Table entries of earlier runs are kept
// until the table is written again, so a table that succeeded once is not reloaded.
type Log struct {
	RunID    uuid.UUID  `json:"runID"`
	Database string     `json:"database"`
	Schema   string     `json:"schema"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Success  bool       `json:"success"`
	// SchemaCreated is set once the schema was created by a run, it is kept across later runs.
	SchemaCreated bool                   `json:"schemaCreated"`
	Tables        map[string]*TableEntry `json:"tables"`
}

func NewLog(key Key) *Log {
	return &Log{
		Database: key.Database,
		Schema:   key.Schema,
		Tables:   make(map[string]*TableEntry),
	}
}

// StartRun resets the run level fields, existing table entries are kept.
func (l *Log) StartRun(now time.Time) {
	l.RunID = uuid.New()
	l.Start = now
	l.End = nil
	l.Success = true
	if l.Tables == nil {
		l.Tables = make(map[string]*TableEntry)
	}
}

// RecordTable stores the outcome of writing [table], a non-nil [err] marks the table and the run as failed.
// Credentials and PII are scrubbed from the error message before it is stored.
func (l *Log) RecordTable(table string, command constants.Command, start, end time.Time, err error) {
	entry := &TableEntry{
		Table:   table,
		Command: command,
		Start:   start,
		End:     &end,
		Success: err == nil,
	}

	if err != nil {
		entry.Message = redact.ScrubError(err)
		l.Success = false
	}

	l.Tables[table] = entry
}

func (l *Log) FinishRun(now time.Time) {
	l.End = &now
}

func Marshal(log *Log) ([]byte, error) {
	return json.Marshal(log)
}

func Unmarshal(data []byte) (*Log, error) {
	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run log: %w", err)
	}

	if log.Tables == nil {
		log.Tables = make(map[string]*TableEntry)
	}

	return &log, nil
}
