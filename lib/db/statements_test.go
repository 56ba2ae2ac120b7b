package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecStatements(t *testing.T) {
	ctx := context.Background()
	{
		// No statements
		assert.ErrorContains(t, ExecStatements(ctx, nil, nil), "statements is empty")
	}
	{
		// Runs in order
		sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer sqlDB.Close()

		mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS a").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS a.b (id int)").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, ExecStatements(ctx, WithDatabase(sqlDB), []string{"CREATE SCHEMA IF NOT EXISTS a", "CREATE TABLE IF NOT EXISTS a.b (id int)"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Stops at the first failure, non-retryable errors are not retried
		sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer sqlDB.Close()

		mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS a").WillReturnError(fmt.Errorf("insufficient privileges"))

		err = ExecStatements(ctx, WithDatabase(sqlDB), []string{"CREATE SCHEMA IF NOT EXISTS a", "CREATE TABLE IF NOT EXISTS a.b (id int)"})
		assert.ErrorContains(t, err, `failed to execute statement: "CREATE SCHEMA IF NOT EXISTS a", err: insufficient privileges`)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}
