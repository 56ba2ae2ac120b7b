package inflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
	"github.com/artie-labs/snowflow/lib/mocks"
	"github.com/artie-labs/snowflow/lib/render"
	"github.com/artie-labs/snowflow/lib/runlog"
	"github.com/artie-labs/snowflow/lib/typing"
)

type fakeExecutor struct {
	statements []string
	// failOn fails every statement containing the substring.
	failOn string
}

func (f *fakeExecutor) ExecuteStatement(_ context.Context, statement render.Statement) error {
	if f.failOn != "" && strings.Contains(statement.SQL, f.failOn) {
		return fmt.Errorf("statement failed")
	}

	f.statements = append(f.statements, statement.SQL)
	return nil
}

type memoryStore struct {
	logs map[runlog.Key]*runlog.Log
}

func newMemoryStore() *memoryStore {
	return &memoryStore{logs: make(map[runlog.Key]*runlog.Log)}
}

func (m *memoryStore) Load(_ context.Context, key runlog.Key) (*runlog.Log, error) {
	log, ok := m.logs[key]
	if !ok {
		return nil, runlog.ErrNotFound
	}

	return log, nil
}

func (m *memoryStore) Save(_ context.Context, key runlog.Key, log *runlog.Log) error {
	m.logs[key] = log
	return nil
}

type fakeMarker struct {
	paths []flow.ObjectPath
}

func (f *fakeMarker) MarkLoaded(_ context.Context, path flow.ObjectPath) error {
	f.paths = append(f.paths, path)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Snowflake: &config.Snowflake{StorageIntegration: "S3_INT"},
		S3:        &config.S3Settings{Bucket: "exports", Prefix: "rds"},
		Existence: config.Existence{Strategy: constants.RunLog, Parallelism: 1},
		Inflows: []config.Inflow{
			{
				Name:        "prod",
				Type:        constants.MySQL,
				Destination: "PROD",
				Command:     constants.WriteNX,
				Schemas: []config.Schema{
					{
						Name: "app",
						Tables: []config.Table{
							{Name: "users", Columns: []config.Column{{Name: "id", Type: "int"}}},
							{Name: "orders", Columns: []config.Column{{Name: "id", Type: "bigint"}}},
						},
					},
				},
			},
		},
	}
}

var appKey = runlog.Key{Database: "PROD", Schema: "app"}

func TestArgs_Validate(t *testing.T) {
	{
		// Missing snowflake config
		assert.ErrorContains(t, Args{Output: &bytes.Buffer{}}.Validate(), "snowflake config is nil")
	}
	{
		// Dry run needs an output
		assert.ErrorContains(t, Args{Config: testConfig()}.Validate(), "output is nil")
	}
	{
		// Execute needs an executor and a run log store
		assert.ErrorContains(t, Args{Config: testConfig(), Execute: true}.Validate(), "executor is nil")
		assert.ErrorContains(t, Args{Config: testConfig(), Execute: true, Executor: &fakeExecutor{}}.Validate(), "run log store is nil")
		assert.NoError(t, Args{Config: testConfig(), Execute: true, Executor: &fakeExecutor{}, RunLogs: newMemoryStore()}.Validate())
	}
}

func TestRun_DryRun(t *testing.T) {
	checker := &mocks.FakeExistenceChecker{}
	checker.ExistsCalls(func(_ context.Context, path flow.ObjectPath, _ constants.NodeKind) (bool, error) {
		return path.Table == "orders", nil
	})

	var output bytes.Buffer
	result, err := Run(t.Context(), Args{
		Config:     testConfig(),
		Checker:    checker,
		TypeMapper: typing.NewTypeMap(),
		Output:     &output,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Statements)
	assert.Equal(t, 4, result.Plan.Len())

	printed := output.String()
	assert.Contains(t, printed, `CREATE DATABASE IF NOT EXISTS "PROD";`)
	assert.Contains(t, printed, `CREATE SCHEMA IF NOT EXISTS "PROD"."APP";`)
	assert.Contains(t, printed, "CREATE TABLE IF NOT EXISTS \"PROD\".\"APP\".\"USERS\" (\n  ID INT\n);")
	assert.Contains(t, printed, `URL = 's3://exports/rds/app/users/'`)
	assert.Contains(t, printed, "-- skip PROD.app.orders: already exists")
	assert.NotContains(t, printed, `"ORDERS" (`)
}

func TestRun_PlanError(t *testing.T) {
	checker := &mocks.FakeExistenceChecker{}
	checker.ExistsReturns(false, fmt.Errorf("boom"))

	executor := &fakeExecutor{}
	store := newMemoryStore()
	_, err := Run(t.Context(), Args{
		Config:     testConfig(),
		Execute:    true,
		Checker:    checker,
		TypeMapper: typing.NewTypeMap(),
		Executor:   executor,
		RunLogs:    store,
	})
	assert.ErrorContains(t, err, "failed to plan")
	assert.True(t, flow.IsExistenceCheckError(err))

	// Nothing runs when planning fails.
	assert.Empty(t, executor.statements)
	assert.Empty(t, store.logs)
}

func TestRun_ConfigError(t *testing.T) {
	cfg := testConfig()
	cfg.Inflows[0].Schemas[0].Tables[0].Columns[0].Type = "geometry"

	var output bytes.Buffer
	_, err := Run(t.Context(), Args{
		Config:     cfg,
		Checker:    &mocks.FakeExistenceChecker{},
		TypeMapper: typing.NewTypeMap(),
		Output:     &output,
	})
	assert.ErrorContains(t, err, "invalid inflow config")
	assert.True(t, flow.IsConfigError(err))
	assert.Empty(t, output.String())
}

func TestRun_Execute(t *testing.T) {
	executor := &fakeExecutor{}
	store := newMemoryStore()
	marker := &fakeMarker{}
	result, err := Run(t.Context(), Args{
		Config:     testConfig(),
		Execute:    true,
		Checker:    &mocks.FakeExistenceChecker{},
		TypeMapper: typing.NewTypeMap(),
		Executor:   executor,
		RunLogs:    store,
		Marker:     marker,
	})
	require.NoError(t, err)
	assert.Empty(t, result.FailedTables)
	assert.Equal(t, 8, result.Statements)
	assert.Len(t, executor.statements, 8)
	assert.True(t, strings.HasPrefix(executor.statements[0], "CREATE DATABASE"))
	assert.True(t, strings.HasPrefix(executor.statements[4], "COPY INTO"))

	log, ok := store.logs[appKey]
	require.True(t, ok)
	assert.True(t, log.Success)
	assert.NotNil(t, log.End)
	assert.Len(t, log.Tables, 2)
	assert.True(t, log.Tables["users"].Success)
	assert.True(t, log.Tables["orders"].Success)
	assert.True(t, log.SchemaCreated)
	// Tables are logged with the command they were configured with.
	assert.Equal(t, constants.WriteNX, log.Tables["users"].Command)

	assert.Equal(t, []flow.ObjectPath{
		{Database: "PROD", Schema: "app", Table: "users"},
		{Database: "PROD", Schema: "app", Table: "orders"},
	}, marker.paths)
}

func TestRun_TableFailure(t *testing.T) {
	executor := &fakeExecutor{failOn: `"USERS"`}
	store := newMemoryStore()
	marker := &fakeMarker{}
	result, err := Run(t.Context(), Args{
		Config:     testConfig(),
		Execute:    true,
		Checker:    &mocks.FakeExistenceChecker{},
		TypeMapper: typing.NewTypeMap(),
		Executor:   executor,
		RunLogs:    store,
		Marker:     marker,
	})
	assert.ErrorContains(t, err, "1 table(s) failed to load: PROD.app.users")
	assert.Equal(t, []string{"PROD.app.users"}, result.FailedTables)

	// The next table is still loaded.
	assert.Len(t, executor.statements, 5)
	for _, statement := range executor.statements {
		assert.NotContains(t, statement, "USERS")
	}

	log := store.logs[appKey]
	require.NotNil(t, log)
	assert.False(t, log.Success)
	assert.False(t, log.Tables["users"].Success)
	assert.Equal(t, "statement failed", log.Tables["users"].Message)
	assert.True(t, log.Tables["orders"].Success)
	assert.Equal(t, []flow.ObjectPath{{Database: "PROD", Schema: "app", Table: "orders"}}, marker.paths)
}

func TestRun_SchemaFailure(t *testing.T) {
	executor := &fakeExecutor{failOn: "CREATE SCHEMA"}
	store := newMemoryStore()
	_, err := Run(t.Context(), Args{
		Config:     testConfig(),
		Execute:    true,
		Checker:    &mocks.FakeExistenceChecker{},
		TypeMapper: typing.NewTypeMap(),
		Executor:   executor,
		RunLogs:    store,
	})
	assert.ErrorContains(t, err, `failed to create schema "PROD.app": statement failed`)

	// Only the database was created before the run was aborted.
	assert.Len(t, executor.statements, 1)

	log := store.logs[appKey]
	require.NotNil(t, log)
	assert.False(t, log.Success)
	assert.False(t, log.SchemaCreated)
	assert.Empty(t, log.Tables)
}

func TestRun_ResumeAfterSchemaFailure(t *testing.T) {
	store := newMemoryStore()
	run := func(executor *fakeExecutor) error {
		_, err := Run(t.Context(), Args{
			Config:     testConfig(),
			Execute:    true,
			Checker:    runlog.NewChecker(store),
			TypeMapper: typing.NewTypeMap(),
			Executor:   executor,
			RunLogs:    store,
		})
		return err
	}

	assert.ErrorContains(t, run(&fakeExecutor{failOn: "CREATE SCHEMA"}), "failed to create schema")
	{
		// The schema is created by the next run, even though a log of the failed run exists.
		executor := &fakeExecutor{}
		assert.NoError(t, run(executor))
		require.Len(t, executor.statements, 8)
		assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "PROD"."APP"`, executor.statements[1])
		assert.True(t, store.logs[appKey].SchemaCreated)
	}
	{
		// Everything exists now.
		executor := &fakeExecutor{}
		assert.NoError(t, run(executor))
		assert.Empty(t, executor.statements)
	}
}

func TestRun_Force(t *testing.T) {
	now := time.Now()
	previous := runlog.NewLog(appKey)
	previous.StartRun(now)
	previous.RecordTable("legacy", constants.Write, now, now, nil)

	for _, force := range []bool{false, true} {
		store := newMemoryStore()
		store.logs[appKey] = previous

		_, err := Run(t.Context(), Args{
			Config:     testConfig(),
			Execute:    true,
			Force:      force,
			Checker:    &mocks.FakeExistenceChecker{},
			TypeMapper: typing.NewTypeMap(),
			Executor:   &fakeExecutor{},
			RunLogs:    store,
		})
		require.NoError(t, err)

		_, kept := store.logs[appKey].Tables["legacy"]
		assert.Equal(t, !force, kept, force)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Run(ctx, Args{
		Config:     testConfig(),
		Execute:    true,
		Checker:    &mocks.FakeExistenceChecker{},
		TypeMapper: typing.NewTypeMap(),
		Executor:   &fakeExecutor{},
		RunLogs:    newMemoryStore(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
