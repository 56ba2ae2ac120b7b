package dialect

import (
	"fmt"
	"regexp"
	"strings"
)

var bareIdentifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

type SnowflakeDialect struct{}

func (SnowflakeDialect) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(strings.ToUpper(identifier), `"`, `""`))
}

// QuoteColumn leaves plain column names unquoted so that Snowflake resolves them case-insensitively.
// Reserved keywords and names with characters outside of [A-Za-z0-9_$] are quoted.
func (sd SnowflakeDialect) QuoteColumn(column string) string {
	if IsReservedKeyword(column) || !bareIdentifierRegex.MatchString(column) {
		return sd.QuoteIdentifier(column)
	}

	return strings.ToUpper(column)
}

// BuildSchemaExistsQuery returns a query that yields one row if [schema] exists in [database].
func (sd SnowflakeDialect) BuildSchemaExistsQuery(database, schema string) (string, []any) {
	return fmt.Sprintf("SELECT SCHEMA_NAME FROM %s.INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?", sd.QuoteIdentifier(database)),
		[]any{strings.ToUpper(schema)}
}

// BuildTableRowCountQuery returns a query that yields the row count of [table] or no rows when it does not exist.
func (sd SnowflakeDialect) BuildTableRowCountQuery(tableID TableIdentifier) (string, []any) {
	return fmt.Sprintf("SELECT ROW_COUNT FROM %s.INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?", sd.QuoteIdentifier(tableID.Database())),
		[]any{strings.ToUpper(tableID.Schema()), strings.ToUpper(tableID.Table())}
}
