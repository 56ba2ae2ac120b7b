package sql

import "github.com/artie-labs/snowflow/lib/config/constants"

type Dialect interface {
	QuoteIdentifier(identifier string) string
	// QuoteColumn quotes column names, which may need different handling than other identifiers.
	QuoteColumn(column string) string
	// Templates returns the statement templates of each operation kind, in execution order.
	Templates() map[constants.OperationKind][]string
}
