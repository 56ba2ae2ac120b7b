package snowflake

import (
	"context"
	"fmt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/snowflakedb/gosnowflake"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
	"github.com/artie-labs/snowflow/lib/render"
)

const (
	schemaExistsQuery  = `SELECT SCHEMA_NAME FROM "PROD".INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?`
	tableRowCountQuery = `SELECT ROW_COUNT FROM "PROD".INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`
)

var usersPath = flow.ObjectPath{Database: "prod", Schema: "app", Table: "users"}

func (s *SnowflakeTestSuite) TestExists_Schema() {
	{
		// Exists
		s.mock.ExpectQuery(schemaExistsQuery).WithArgs("APP").WillReturnRows(sqlmock.NewRows([]string{"SCHEMA_NAME"}).AddRow("APP"))
		exists, err := s.store.Exists(context.Background(), flow.ObjectPath{Database: "prod", Schema: "app"}, constants.Schema)
		s.NoError(err)
		s.True(exists)
	}
	{
		// Does not exist
		s.mock.ExpectQuery(schemaExistsQuery).WithArgs("APP").WillReturnRows(sqlmock.NewRows([]string{"SCHEMA_NAME"}))
		exists, err := s.store.Exists(context.Background(), flow.ObjectPath{Database: "prod", Schema: "app"}, constants.Schema)
		s.NoError(err)
		s.False(exists)
	}
	{
		// Database does not exist
		s.mock.ExpectQuery(schemaExistsQuery).WithArgs("APP").WillReturnError(&gosnowflake.SnowflakeError{
			Number:  2003,
			Message: "Database 'PROD' does not exist or not authorized.",
		})
		exists, err := s.store.Exists(context.Background(), flow.ObjectPath{Database: "prod", Schema: "app"}, constants.Schema)
		s.NoError(err)
		s.False(exists)
	}
}

func (s *SnowflakeTestSuite) TestExists_Table() {
	{
		// Exists with rows
		s.mock.ExpectQuery(tableRowCountQuery).WithArgs("APP", "USERS").WillReturnRows(sqlmock.NewRows([]string{"ROW_COUNT"}).AddRow(10))
		exists, err := s.store.Exists(context.Background(), usersPath, constants.Table)
		s.NoError(err)
		s.True(exists)
	}
	{
		// Exists without rows
		s.mock.ExpectQuery(tableRowCountQuery).WithArgs("APP", "USERS").WillReturnRows(sqlmock.NewRows([]string{"ROW_COUNT"}).AddRow(0))
		_, err := s.store.Exists(context.Background(), usersPath, constants.Table)
		s.ErrorIs(err, flow.ErrAmbiguousState)
		s.ErrorContains(err, `table "prod.app.users" exists but has no rows`)
	}
	{
		// Does not exist
		s.mock.ExpectQuery(tableRowCountQuery).WithArgs("APP", "USERS").WillReturnRows(sqlmock.NewRows([]string{"ROW_COUNT"}))
		exists, err := s.store.Exists(context.Background(), usersPath, constants.Table)
		s.NoError(err)
		s.False(exists)
	}
	{
		// Query fails
		s.mock.ExpectQuery(tableRowCountQuery).WithArgs("APP", "USERS").WillReturnError(fmt.Errorf("warehouse suspended"))
		_, err := s.store.Exists(context.Background(), usersPath, constants.Table)
		s.ErrorContains(err, "failed to query tables: warehouse suspended")
	}
}

func (s *SnowflakeTestSuite) TestExists_UnsupportedKind() {
	_, err := s.store.Exists(context.Background(), usersPath, constants.Column)
	s.ErrorContains(err, "existence checks are not supported for column nodes")
}

func (s *SnowflakeTestSuite) TestExecuteStatement() {
	statement := render.Statement{
		Operation: flow.FlowOperation{Kind: constants.CreateSchema, Target: "prod.app"},
		SQL:       `CREATE SCHEMA IF NOT EXISTS "PROD"."APP"`,
	}
	{
		s.mock.ExpectExec(statement.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		s.NoError(s.store.ExecuteStatement(context.Background(), statement))
	}
	{
		s.mock.ExpectExec(statement.SQL).WillReturnError(fmt.Errorf("Authentication token has expired"))
		err := s.store.ExecuteStatement(context.Background(), statement)
		s.ErrorContains(err, "snowflake authentication expired")
	}
}
