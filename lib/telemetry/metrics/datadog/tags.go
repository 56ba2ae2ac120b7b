package datadog

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// getTags reads the configured tags, YAML gives us either a list or a comma separated string.
func getTags(tags any) []string {
	var out []string
	switch castedTags := tags.(type) {
	case []string:
		out = slices.Clone(castedTags)
	case []any:
		for _, tag := range castedTags {
			out = append(out, fmt.Sprint(tag))
		}
	case string:
		for _, tag := range strings.Split(castedTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				out = append(out, tag)
			}
		}
	}

	return out
}

// toDatadogTags converts [tags] into "key:value" pairs, sorted by key.
func toDatadogTags(tags map[string]string) []string {
	var out []string
	for _, key := range slices.Sorted(maps.Keys(tags)) {
		out = append(out, fmt.Sprintf("%s:%s", key, tags[key]))
	}

	return out
}
