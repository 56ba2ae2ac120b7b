package rdsexport

import (
	"cmp"

	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/maputil"
)

// Merge adds the discovered tables and columns of [metadata] to the configured schemas of [inflow].
// Configured entries keep their position and override the discovered attributes, discovered entries follow in export order.
// Filters are left to the planner.
func Merge(inflow config.Inflow, metadata *Metadata) config.Inflow {
	merged := inflow
	merged.Schemas = make([]config.Schema, len(inflow.Schemas))
	for i, schema := range inflow.Schemas {
		merged.Schemas[i] = mergeSchema(schema, metadata)
	}

	return merged
}

func mergeSchema(schema config.Schema, metadata *Metadata) config.Schema {
	tables := maputil.NewOrderedMap[config.Table](true)
	for _, table := range schema.Tables {
		if discovered, ok := metadata.Table(schema.Name, table.Name); ok {
			table.Columns = mergeColumns(table.Columns, discovered.Columns)
		}
		tables.Add(table.Name, table)
	}

	for _, discovered := range metadata.Tables(schema.Name) {
		if _, ok := tables.Get(discovered.Name); ok {
			continue
		}

		tables.Add(discovered.Name, config.Table{
			Name:    discovered.Name,
			Columns: mergeColumns(nil, discovered.Columns),
		})
	}

	schema.Tables = nil
	for _, table := range tables.All() {
		schema.Tables = append(schema.Tables, table)
	}

	return schema
}

func mergeColumns(configured []config.Column, discovered []ColumnMetadata) []config.Column {
	columns := maputil.NewOrderedMap[config.Column](true)
	for _, column := range configured {
		columns.Add(column.Name, column)
	}

	for _, discoveredColumn := range discovered {
		column, _ := columns.Get(discoveredColumn.Name)
		column.Name = discoveredColumn.Name
		column.Type = cmp.Or(column.Type, discoveredColumn.OriginalType)
		columns.Add(discoveredColumn.Name, column)
	}

	var out []config.Column
	for _, column := range columns.All() {
		out = append(out, column)
	}

	return out
}
