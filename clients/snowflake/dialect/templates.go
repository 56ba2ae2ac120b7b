package dialect

import (
	"github.com/artie-labs/snowflow/lib/config/constants"
)

const createDatabaseTemplate = `CREATE DATABASE IF NOT EXISTS {{ ident .database }}`

const createSchemaTemplate = `CREATE SCHEMA IF NOT EXISTS {{ ident .database }}.{{ ident .schema }}`

const createTableTemplate = `CREATE TABLE IF NOT EXISTS {{ ident .database }}.{{ ident .schema }}.{{ ident .table }} (
{{- range $i, $column := .columns }}{{ if $i }},{{ end }}
  {{ column $column.Name }} {{ upper $column.DestinationType }}
{{- end }}
)`

const createStageTemplate = `CREATE OR REPLACE TEMPORARY STAGE {{ ident .database }}.{{ ident .schema }}.{{ ident .stage }}
  URL = {{ literal .location }}
  STORAGE_INTEGRATION = {{ ident .storage_integration }}
  FILE_FORMAT = (TYPE = {{ upper .file_format }})`

const copyIntoTemplate = `COPY INTO {{ ident .database }}.{{ ident .schema }}.{{ ident .table }}
  FROM @{{ ident .database }}.{{ ident .schema }}.{{ ident .stage }}
  MATCH_BY_COLUMN_NAME = CASE_INSENSITIVE`

// Templates returns the statement templates for each operation kind, in execution order.
// Skip operations have no templates.
func (SnowflakeDialect) Templates() map[constants.OperationKind][]string {
	return map[constants.OperationKind][]string{
		constants.CreateSchema: {createDatabaseTemplate, createSchemaTemplate},
		constants.CreateTable:  {createTableTemplate},
		constants.LoadTable:    {createStageTemplate, copyIntoTemplate},
	}
}
