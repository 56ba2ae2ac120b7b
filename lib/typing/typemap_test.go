package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/snowflow/lib/config/constants"
)

func TestNormalizeSourceType(t *testing.T) {
	assert.Equal(t, "int", NormalizeSourceType("INT UNSIGNED"))
	assert.Equal(t, "bigint(20)", NormalizeSourceType("  bigint(20) unsigned zerofill "))
	assert.Equal(t, "character varying(64)", NormalizeSourceType("CHARACTER  VARYING(64)"))
	assert.Equal(t, "", NormalizeSourceType("  "))
}

func TestTypeMap_MapType(t *testing.T) {
	typeMap := NewTypeMap()
	{
		// MySQL
		for sourceType, expected := range map[string]string{
			"int":              "int",
			"INT(11) UNSIGNED": "int",
			"mediumint":        "int",
			"tinyint(1)":       "boolean",
			"tinyint(4)":       "number(3,0)",
			"bit":              "boolean",
			"varchar(255)":     "varchar(255)",
			"varchar":          "varchar",
			"longtext":         "text",
			"decimal(10, 2)":   "number(10,2)",
			"decimal(10)":      "number(10,0)",
			"decimal":          "number(38,0)",
			"datetime(6)":      "timestamp_ntz",
			"json":             "variant",
			"enum('a','b')":    "varchar",
			"bigint unsigned":  "number(20,0)",
		} {
			actual, err := typeMap.MapType(constants.MySQL, sourceType)
			assert.NoError(t, err, sourceType)
			assert.Equal(t, expected, actual, sourceType)
		}
	}
	{
		// Postgres
		for sourceType, expected := range map[string]string{
			"integer":                  "int",
			"character varying(64)":    "varchar(64)",
			"timestamp with time zone": "timestamp_tz",
			"jsonb":                    "variant",
			"numeric(12,4)":            "number(12,4)",
			"integer[]":                "array",
			"uuid":                     "varchar(36)",
		} {
			actual, err := typeMap.MapType(constants.Postgres, sourceType)
			assert.NoError(t, err, sourceType)
			assert.Equal(t, expected, actual, sourceType)
		}
	}
	{
		// Unmapped type
		_, err := typeMap.MapType(constants.MySQL, "geometry")
		assert.ErrorContains(t, err, `unsupported mysql type: "geometry"`)
	}
	{
		// Empty type
		_, err := typeMap.MapType(constants.MySQL, " ")
		assert.ErrorContains(t, err, "source type is empty")
	}
	{
		// Unknown source
		_, err := typeMap.MapType("oracle", "int")
		assert.ErrorContains(t, err, `unsupported source: "oracle"`)
	}
	{
		// Arrays are only supported for postgres
		_, err := typeMap.MapType(constants.MySQL, "int[]")
		assert.ErrorContains(t, err, `unsupported mysql type: "int[]"`)
	}
	{
		// Malformed
		_, err := typeMap.MapType(constants.MySQL, "varchar(")
		assert.ErrorContains(t, err, "malformed data type")
	}
}
