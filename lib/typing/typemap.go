package typing

import (
	"fmt"
	"strings"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/sql"
)

type parameterHandling int

const (
	dropParameters parameterHandling = iota
	keepParameters
	// numericParameters keeps precision and scale and rewrites the type as NUMBER.
	numericParameters
)

type target struct {
	name       string
	parameters parameterHandling
}

var mysqlTypes = map[string]target{
	"tinyint":    {name: "number(3,0)"},
	"smallint":   {name: "number(5,0)"},
	"mediumint":  {name: "int"},
	"int":        {name: "int"},
	"integer":    {name: "int"},
	"bigint":     {name: "number(20,0)"},
	"decimal":    {name: "number", parameters: numericParameters},
	"numeric":    {name: "number", parameters: numericParameters},
	"dec":        {name: "number", parameters: numericParameters},
	"float":      {name: "float"},
	"double":     {name: "float"},
	"real":       {name: "float"},
	"bit":        {name: "boolean"},
	"bool":       {name: "boolean"},
	"boolean":    {name: "boolean"},
	"char":       {name: "char", parameters: keepParameters},
	"varchar":    {name: "varchar", parameters: keepParameters},
	"tinytext":   {name: "text"},
	"text":       {name: "text"},
	"mediumtext": {name: "text"},
	"longtext":   {name: "text"},
	"enum":       {name: "varchar"},
	"set":        {name: "varchar"},
	"binary":     {name: "binary", parameters: keepParameters},
	"varbinary":  {name: "binary", parameters: keepParameters},
	"tinyblob":   {name: "binary"},
	"blob":       {name: "binary"},
	"mediumblob": {name: "binary"},
	"longblob":   {name: "binary"},
	"date":       {name: "date"},
	"datetime":   {name: "timestamp_ntz"},
	"timestamp":  {name: "timestamp_tz"},
	"time":       {name: "time"},
	"year":       {name: "number(4,0)"},
	"json":       {name: "variant"},
}

var postgresTypes = map[string]target{
	"smallint":                    {name: "number(5,0)"},
	"int2":                        {name: "number(5,0)"},
	"integer":                     {name: "int"},
	"int":                         {name: "int"},
	"int4":                        {name: "int"},
	"bigint":                      {name: "number(19,0)"},
	"int8":                        {name: "number(19,0)"},
	"serial":                      {name: "int"},
	"bigserial":                   {name: "number(19,0)"},
	"numeric":                     {name: "number", parameters: numericParameters},
	"decimal":                     {name: "number", parameters: numericParameters},
	"real":                        {name: "float"},
	"float4":                      {name: "float"},
	"double precision":            {name: "float"},
	"float8":                      {name: "float"},
	"money":                       {name: "number(19,2)"},
	"boolean":                     {name: "boolean"},
	"bool":                        {name: "boolean"},
	"char":                        {name: "char", parameters: keepParameters},
	"character":                   {name: "char", parameters: keepParameters},
	"varchar":                     {name: "varchar", parameters: keepParameters},
	"character varying":           {name: "varchar", parameters: keepParameters},
	"text":                        {name: "text"},
	"citext":                      {name: "text"},
	"uuid":                        {name: "varchar(36)"},
	"bytea":                       {name: "binary"},
	"date":                        {name: "date"},
	"timestamp":                   {name: "timestamp_ntz"},
	"timestamp without time zone": {name: "timestamp_ntz"},
	"timestamptz":                 {name: "timestamp_tz"},
	"timestamp with time zone":    {name: "timestamp_tz"},
	"time":                        {name: "time"},
	"time without time zone":      {name: "time"},
	"interval":                    {name: "varchar"},
	"json":                        {name: "variant"},
	"jsonb":                       {name: "variant"},
	"inet":                        {name: "varchar"},
}

// TypeMap maps source column types onto Snowflake column types.
type TypeMap struct {
	tables map[constants.SourceKind]map[string]target
}

func NewTypeMap() TypeMap {
	return TypeMap{
		tables: map[constants.SourceKind]map[string]target{
			constants.MySQL:    mysqlTypes,
			constants.Postgres: postgresTypes,
		},
	}
}

// NormalizeSourceType lower-cases [sourceType], drops MySQL's unsigned/zerofill attributes and collapses whitespace.
func NormalizeSourceType(sourceType string) string {
	var parts []string
	for _, part := range strings.Fields(strings.ToLower(sourceType)) {
		if part == "unsigned" || part == "zerofill" {
			continue
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, " ")
}

func (t TypeMap) MapType(source constants.SourceKind, sourceType string) (string, error) {
	normalized := NormalizeSourceType(sourceType)
	if normalized == "" {
		return "", fmt.Errorf("source type is empty")
	}

	types, ok := t.tables[source]
	if !ok {
		return "", fmt.Errorf("unsupported source: %q", source)
	}

	if strings.HasSuffix(normalized, "[]") {
		if source == constants.Postgres {
			return "array", nil
		}
		return "", fmt.Errorf("unsupported %s type: %q", source, sourceType)
	}

	name, parameters, err := sql.ParseDataTypeDefinition(normalized)
	if err != nil {
		return "", err
	}

	// tinyint(1) is how MySQL spells a boolean column.
	if source == constants.MySQL && name == "tinyint" && len(parameters) == 1 && parameters[0] == "1" {
		return "boolean", nil
	}

	mapped, ok := types[name]
	if !ok {
		return "", fmt.Errorf("unsupported %s type: %q", source, sourceType)
	}

	switch mapped.parameters {
	case keepParameters:
		if len(parameters) > 0 {
			return fmt.Sprintf("%s(%s)", mapped.name, strings.Join(parameters, ",")), nil
		}
	case numericParameters:
		switch len(parameters) {
		case 0:
			return "number(38,0)", nil
		case 1:
			return fmt.Sprintf("number(%s,0)", parameters[0]), nil
		default:
			return fmt.Sprintf("number(%s,%s)", parameters[0], parameters[1]), nil
		}
	}

	return mapped.name, nil
}
