package sql

import (
	"fmt"
	"strings"

	"github.com/artie-labs/snowflow/lib/stringutil"
)

func QuoteLiteral(value string) string {
	// When there is quote wrapping `foo -> 'foo'`, we'll need to escape `'` so the value compiles.
	// However, if there are no quote wrapping, we should not need to escape.
	return fmt.Sprintf("'%s'", strings.ReplaceAll(stringutil.EscapeBackslashes(value), "'", `\'`))
}

// ParseDataTypeDefinition splits a type like "VARCHAR(255)" or "numeric(10, 2)" into its name and parameters.
func ParseDataTypeDefinition(value string) (string, []string, error) {
	value = strings.TrimSpace(value)
	idxStart := strings.Index(value, "(")
	if idxStart < 0 {
		if strings.Contains(value, ")") {
			return "", nil, fmt.Errorf("malformed data type: %q", value)
		}
		return value, nil, nil
	}

	idxEnd := strings.LastIndex(value, ")")
	if idxEnd < idxStart || strings.TrimSpace(value[idxEnd+1:]) != "" {
		return "", nil, fmt.Errorf("malformed data type: %q", value)
	}

	var parameters []string
	for _, parameter := range strings.Split(value[idxStart+1:idxEnd], ",") {
		parameter = strings.TrimSpace(parameter)
		if parameter == "" {
			return "", nil, fmt.Errorf("malformed data type: %q", value)
		}
		parameters = append(parameters, parameter)
	}

	return strings.TrimSpace(value[:idxStart]), parameters, nil
}
