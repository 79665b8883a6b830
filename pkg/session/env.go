package session

import (
	"os"
	"sort"
	"strings"
)

const pathKey = "PATH"

// MergeEnv overlays env on top of base, a list of KEY=VALUE pairs.
// Overlay values win, except PATH which is prepended to the inherited PATH.
func MergeEnv(base []string, overlay map[string]string) []string {
	values := make(map[string]string, len(base)+len(overlay))
	order := make([]string, 0, len(base)+len(overlay))

	for _, kv := range base {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = value
	}

	keys := make([]string, 0, len(overlay))
	for key := range overlay {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := overlay[key]
		existing, seen := values[key]
		if !seen {
			order = append(order, key)
		}
		if key == pathKey && seen && existing != "" && value != "" {
			value = value + string(os.PathListSeparator) + existing
		}
		values[key] = value
	}

	merged := make([]string, 0, len(order))
	for _, key := range order {
		merged = append(merged, key+"="+values[key])
	}
	return merged
}
