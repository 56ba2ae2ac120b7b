package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/snowflakedb/gosnowflake"

	"github.com/artie-labs/snowflow/clients/snowflake/dialect"
	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/db"
	"github.com/artie-labs/snowflow/lib/flow"
	"github.com/artie-labs/snowflow/lib/render"
)

type Store struct {
	db.Store
}

func (s *Store) Dialect() dialect.SnowflakeDialect {
	return dialect.SnowflakeDialect{}
}

// Exists implements [flow.ExistenceChecker] by querying the INFORMATION_SCHEMA of the destination database.
// A table that exists without any rows is ambiguous, it may be what is left of a failed load.
func (s *Store) Exists(ctx context.Context, path flow.ObjectPath, kind constants.NodeKind) (bool, error) {
	switch kind {
	case constants.Schema:
		query, args := s.Dialect().BuildSchemaExistsQuery(path.Database, path.Schema)
		rows, err := s.QueryContext(ctx, query, args...)
		if err != nil {
			if IsObjectDoesNotExistErr(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to query schemata: %w", err)
		}
		defer rows.Close()

		exists := rows.Next()
		if err = rows.Err(); err != nil {
			return false, fmt.Errorf("failed to iterate over schemata: %w", err)
		}

		return exists, nil
	case constants.Table:
		query, args := s.Dialect().BuildTableRowCountQuery(dialect.NewTableIdentifier(path.Database, path.Schema, path.Table))
		rows, err := s.QueryContext(ctx, query, args...)
		if err != nil {
			if IsObjectDoesNotExistErr(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to query tables: %w", err)
		}
		defer rows.Close()

		if !rows.Next() {
			if err = rows.Err(); err != nil {
				return false, fmt.Errorf("failed to iterate over tables: %w", err)
			}
			return false, nil
		}

		var rowCount sql.NullInt64
		if err = rows.Scan(&rowCount); err != nil {
			return false, fmt.Errorf("failed to scan row count: %w", err)
		}

		if !rowCount.Valid || rowCount.Int64 == 0 {
			return false, fmt.Errorf("table %q exists but has no rows: %w", path.String(), flow.ErrAmbiguousState)
		}

		return true, nil
	default:
		return false, fmt.Errorf("existence checks are not supported for %s nodes", kind)
	}
}

// ExecuteStatement runs a single rendered statement.
func (s *Store) ExecuteStatement(ctx context.Context, statement render.Statement) error {
	slog.Debug("Executing statement",
		slog.String("operation", string(statement.Operation.Kind)),
		slog.String("target", statement.Operation.Target),
		slog.String("query", statement.SQL),
	)

	if err := db.ExecStatements(ctx, s.Store, []string{statement.SQL}); err != nil {
		if AuthenticationExpirationErr(err) {
			return fmt.Errorf("snowflake authentication expired: %w", err)
		}
		return err
	}

	return nil
}

func LoadSnowflake(cfg config.Snowflake, _store *db.Store) (*Store, error) {
	if _store != nil {
		// Used for tests.
		return &Store{Store: *_store}, nil
	}

	sfConfig, err := cfg.ToConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get snowflake config: %w", err)
	}

	dsn, err := gosnowflake.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get snowflake dsn: %w", err)
	}

	store, err := db.Open("snowflake", dsn)
	if err != nil {
		return nil, err
	}

	return &Store{Store: store}, nil
}
