package runlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
)

type memoryStore struct {
	logs  map[Key]*Log
	err   error
	loads int
}

func (m *memoryStore) Load(_ context.Context, key Key) (*Log, error) {
	m.loads++
	if m.err != nil {
		return nil, m.err
	}

	log, ok := m.logs[key]
	if !ok {
		return nil, ErrNotFound
	}

	return log, nil
}

func (m *memoryStore) Save(_ context.Context, key Key, log *Log) error {
	m.logs[key] = log
	return nil
}

func TestChecker_Exists(t *testing.T) {
	now := time.Now()
	log := NewLog(Key{Database: "prod", Schema: "app"})
	log.StartRun(now)
	log.SchemaCreated = true
	log.RecordTable("users", constants.Write, now, now, nil)
	log.RecordTable("orders", constants.Write, now, now, fmt.Errorf("copy failed"))

	store := &memoryStore{logs: map[Key]*Log{{Database: "prod", Schema: "app"}: log}}
	checker := NewChecker(store)
	{
		exists, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "app"}, constants.Schema)
		assert.NoError(t, err)
		assert.True(t, exists)
	}
	{
		exists, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "app", Table: "users"}, constants.Table)
		assert.NoError(t, err)
		assert.True(t, exists)
	}
	{
		// Failed in a previous run
		_, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "app", Table: "orders"}, constants.Table)
		assert.ErrorIs(t, err, flow.ErrAmbiguousState)
		assert.ErrorContains(t, err, `previous run of "prod.app.orders" failed (copy failed)`)
	}
	{
		// Never written
		exists, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "app", Table: "events"}, constants.Table)
		assert.NoError(t, err)
		assert.False(t, exists)
	}
	// The log is only loaded once.
	assert.Equal(t, 1, store.loads)
	{
		// No log for the schema
		exists, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "billing"}, constants.Schema)
		assert.NoError(t, err)
		assert.False(t, exists)

		exists, err = checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "billing", Table: "invoices"}, constants.Table)
		assert.NoError(t, err)
		assert.False(t, exists)
		assert.Equal(t, 2, store.loads)
	}
	{
		_, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "app", Table: "users"}, constants.Column)
		assert.ErrorContains(t, err, "existence checks are not supported for column nodes")
	}
}

func TestChecker_SchemaNotCreated(t *testing.T) {
	// The previous run failed to create the schema, only its log was saved.
	log := NewLog(Key{Database: "prod", Schema: "app"})
	log.StartRun(time.Now())
	log.Success = false

	checker := NewChecker(&memoryStore{logs: map[Key]*Log{{Database: "prod", Schema: "app"}: log}})
	exists, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "app"}, constants.Schema)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestChecker_StoreError(t *testing.T) {
	checker := NewChecker(&memoryStore{err: fmt.Errorf("disk on fire")})
	_, err := checker.Exists(t.Context(), flow.ObjectPath{Database: "prod", Schema: "app"}, constants.Schema)
	assert.ErrorContains(t, err, "disk on fire")
}
