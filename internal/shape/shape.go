// Package shape locates team-record lists inside arbitrary nested JSON
// values. Responses arrive in wildly different layouts depending on which
// extraction channel produced them, so matching is heuristic: well-known
// container keys first, then a bounded recursive descent.
package shape

import (
	"sort"
	"strings"
)

// DefaultMaxDepth bounds the recursive descent.
const DefaultMaxDepth = 3

// containerKeys are well-known keys that hold team lists, in lookup order.
var containerKeys = []string{"standings", "teams", "teamList", "clubs", "table"}

// wrapperKeys are single-level wrappers the container keys may sit under.
var wrapperKeys = []string{"state", "data"}

// nameKeys identify a mapping as a plausible team record.
var nameKeys = []string{"name", "team_name", "teamName", "club_name"}

// Matcher searches nested values for a sequence of team-like mappings.
type Matcher struct {
	MaxDepth int
}

// NewMatcher creates a Matcher with the default depth bound.
func NewMatcher() *Matcher {
	return &Matcher{MaxDepth: DefaultMaxDepth}
}

// FindRecords returns the first nested sequence of mappings that plausibly
// represents team records, or an empty slice when nothing matches within
// the depth bound. The target is a key substring such as "team"; keys whose
// lowercased name contains it are inspected during descent.
func (m *Matcher) FindRecords(value any, target string) []any {
	if records := m.lookupContainers(value); records != nil {
		return records
	}
	if records := m.descend(value, strings.ToLower(target), 0); records != nil {
		return records
	}
	return []any{}
}

// lookupContainers checks the well-known container keys at the top level,
// then one level down under a wrapper key.
func (m *Matcher) lookupContainers(value any) []any {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	if records := containerIn(obj); records != nil {
		return records
	}

	for _, wrapper := range wrapperKeys {
		if inner, isMap := obj[wrapper].(map[string]any); isMap {
			if records := containerIn(inner); records != nil {
				return records
			}
		}
	}

	return nil
}

func containerIn(obj map[string]any) []any {
	for _, key := range containerKeys {
		if records := recordList(obj[key]); records != nil {
			return records
		}
	}
	return nil
}

// descend walks mappings and sequences up to the depth bound. Mapping keys
// are visited in sorted order so matching is deterministic.
func (m *Matcher) descend(value any, target string, depth int) []any {
	if depth > m.MaxDepth {
		return nil
	}

	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if !strings.Contains(strings.ToLower(key), target) {
				continue
			}
			if records := recordList(v[key]); records != nil {
				return records
			}
		}
		for _, key := range keys {
			if records := m.descend(v[key], target, depth+1); records != nil {
				return records
			}
		}
	case []any:
		if records := recordList(v); records != nil {
			return records
		}
		for _, elem := range v {
			if records := m.descend(elem, target, depth+1); records != nil {
				return records
			}
		}
	}

	return nil
}

// recordList reports value as a team-record list when it is a non-empty
// sequence whose first element is a mapping with a name-like field.
func recordList(value any) []any {
	seq, ok := value.([]any)
	if !ok || len(seq) == 0 {
		return nil
	}

	first, ok := seq[0].(map[string]any)
	if !ok {
		return nil
	}

	for _, key := range nameKeys {
		if _, present := first[key]; present {
			return seq
		}
	}

	return nil
}
