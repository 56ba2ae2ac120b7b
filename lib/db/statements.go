package db

import (
	"context"
	"fmt"
	"log/slog"
)

// ExecStatements runs the statements in order and stops at the first failure.
// Snowflake DDL auto-commits, so the statements are not wrapped in a transaction.
func ExecStatements(ctx context.Context, store Store, statements []string) error {
	if len(statements) == 0 {
		return fmt.Errorf("statements is empty")
	}

	for _, statement := range statements {
		slog.Debug("Executing...", slog.String("query", statement))
		if _, err := store.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to execute statement: %q, err: %w", statement, err)
		}
	}

	return nil
}
