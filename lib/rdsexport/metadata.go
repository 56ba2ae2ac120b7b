package rdsexport

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/artie-labs/snowflow/lib/maputil"
)

const (
	exportInfoPattern = "export_tables_info_*.json"
	statusComplete    = "COMPLETE"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type exportTablesInfo struct {
	PerTableStatus []tableStatus `json:"perTableStatus"`
}

type tableStatus struct {
	// Target is "database.schema.table" for Postgres and "database.table" for MySQL.
	Target         string         `json:"target"`
	Status         string         `json:"status"`
	SchemaMetadata schemaMetadata `json:"schemaMetadata"`
}

type schemaMetadata struct {
	OriginalTypeMappings []typeMapping `json:"originalTypeMappings"`
}

type typeMapping struct {
	ColumnName   string `json:"columnName"`
	OriginalType string `json:"originalType"`
}

type ColumnMetadata struct {
	Name         string
	OriginalType string
}

type TableMetadata struct {
	Schema  string
	Name    string
	Columns []ColumnMetadata
}

// Metadata holds the tables of an RDS snapshot export, grouped by schema in export order.
type Metadata struct {
	schemas *maputil.OrderedMap[*maputil.OrderedMap[TableMetadata]]
}

func NewMetadata() *Metadata {
	return &Metadata{schemas: maputil.NewOrderedMap[*maputil.OrderedMap[TableMetadata]](true)}
}

func (m *Metadata) Add(table TableMetadata) {
	tables, ok := m.schemas.Get(table.Schema)
	if !ok {
		tables = maputil.NewOrderedMap[TableMetadata](true)
		m.schemas.Add(table.Schema, tables)
	}

	tables.Add(table.Name, table)
}

// Tables returns the tables of [schema] in export order.
func (m *Metadata) Tables(schema string) []TableMetadata {
	tables, ok := m.schemas.Get(schema)
	if !ok {
		return nil
	}

	var out []TableMetadata
	for _, table := range tables.All() {
		out = append(out, table)
	}

	return out
}

func (m *Metadata) Table(schema, name string) (TableMetadata, bool) {
	tables, ok := m.schemas.Get(schema)
	if !ok {
		return TableMetadata{}, false
	}

	return tables.Get(name)
}

func splitTarget(target string) (string, string, error) {
	parts := strings.Split(target, ".")
	switch len(parts) {
	case 2:
		// MySQL databases are schemas.
		return parts[0], parts[1], nil
	case 3:
		return parts[1], parts[2], nil
	default:
		return "", "", fmt.Errorf("unexpected export target: %q", target)
	}
}

// ParseExportTablesInfo adds the tables of an export_tables_info file to [metadata].
// Tables that were not exported successfully are skipped.
func ParseExportTablesInfo(data []byte, metadata *Metadata) error {
	var info exportTablesInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("failed to unmarshal export tables info: %w", err)
	}

	for _, status := range info.PerTableStatus {
		schema, table, err := splitTarget(status.Target)
		if err != nil {
			return err
		}

		if status.Status != "" && status.Status != statusComplete {
			slog.Warn("Skipping table that was not exported", slog.String("target", status.Target), slog.String("status", status.Status))
			continue
		}

		tableMetadata := TableMetadata{Schema: schema, Name: table}
		for _, mapping := range status.SchemaMetadata.OriginalTypeMappings {
			tableMetadata.Columns = append(tableMetadata.Columns, ColumnMetadata{
				Name:         mapping.ColumnName,
				OriginalType: mapping.OriginalType,
			})
		}

		metadata.Add(tableMetadata)
	}

	return nil
}

type ObjectReader interface {
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// LoadMetadata reads every export_tables_info file at the root of the export prefix.
func LoadMetadata(ctx context.Context, reader ObjectReader, bucket, prefix string) (*Metadata, error) {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	keys, err := reader.ListKeys(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	var infoKeys []string
	for _, key := range keys {
		if strings.Contains(strings.TrimPrefix(key, prefix), "/") {
			continue
		}

		if ok, _ := path.Match(exportInfoPattern, path.Base(key)); ok {
			infoKeys = append(infoKeys, key)
		}
	}

	if len(infoKeys) == 0 {
		return nil, fmt.Errorf("no %s files found in s3://%s/%s", exportInfoPattern, bucket, prefix)
	}

	slices.Sort(infoKeys)
	metadata := NewMetadata()
	for _, key := range infoKeys {
		data, err := reader.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, err
		}

		if err = ParseExportTablesInfo(data, metadata); err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", key, err)
		}
	}

	return metadata, nil
}
