package stringutil

import (
	"strings"
)

// Empty returns true if any of the values are empty.
func Empty(vals ...string) bool {
	for _, val := range vals {
		if val == "" {
			return true
		}
	}

	return false
}

func EscapeBackslashes(value string) string {
	return strings.ReplaceAll(value, `\`, `\\`)
}

// JoinNonEmpty joins the non-empty values with [sep].
func JoinNonEmpty(sep string, vals ...string) string {
	var parts []string
	for _, val := range vals {
		if val = strings.Trim(val, sep); val != "" {
			parts = append(parts, val)
		}
	}

	return strings.Join(parts, sep)
}
