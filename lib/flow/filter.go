package flow

import (
	"fmt"
	"path"
	"strings"

	"github.com/artie-labs/snowflow/lib/config"
	"github.com/artie-labs/snowflow/lib/config/constants"
)

const globChars = `*?[\`

type matchItem struct {
	value string
	glob  bool
}

func (m matchItem) matches(name string) bool {
	// Names like "events[2024]" equal their item without matching it as a pattern.
	if m.value == name {
		return true
	}

	if !m.glob {
		return false
	}

	// Patterns are validated when the rule is built, so the error can be ignored.
	matched, _ := path.Match(m.value, name)
	return matched
}

// FilterRule decides which named objects within a level are processed.
// A nil *FilterRule includes everything.
type FilterRule struct {
	mode            constants.FilterMode
	items           []matchItem
	caseInsensitive bool
}

func NewFilterRule(mode constants.FilterMode, items []string, caseInsensitive bool) (*FilterRule, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid filter type: %q", mode)
	}

	rule := &FilterRule{mode: mode, caseInsensitive: caseInsensitive}
	for _, item := range items {
		if caseInsensitive {
			item = strings.ToLower(item)
		}

		glob := strings.ContainsAny(item, globChars)
		if glob {
			if _, err := path.Match(item, ""); err != nil {
				return nil, fmt.Errorf("malformed filter pattern %q: %w", item, err)
			}
		}

		rule.items = append(rule.items, matchItem{value: item, glob: glob})
	}

	return rule, nil
}

func filterRuleFromConfig(filter *config.Filter) (*FilterRule, error) {
	if filter == nil {
		return nil, nil
	}

	return NewFilterRule(filter.Type, filter.Items, filter.CaseInsensitive)
}

func (f *FilterRule) Matches(name string) bool {
	if f == nil {
		return true
	}

	if f.caseInsensitive {
		name = strings.ToLower(name)
	}

	var matched bool
	for _, item := range f.items {
		if item.matches(name) {
			matched = true
			break
		}
	}

	if f.mode == constants.Exclude {
		return !matched
	}

	return matched
}
