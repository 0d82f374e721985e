package watcher

import "sort"

// Diff compares two snapshots of cell text keyed by cell name.
//
// A name present now but not previously is added; present in both with
// different text is changed; present previously but absent now is removed.
// Each slice comes back sorted for deterministic reporting.
func Diff(previous, current map[string]string) (added, changed, removed []string) {
	for name, text := range current {
		prev, ok := previous[name]
		switch {
		case !ok:
			added = append(added, name)
		case prev != text:
			changed = append(changed, name)
		}
	}
	for name := range previous {
		if _, ok := current[name]; !ok {
			removed = append(removed, name)
		}
	}

	sort.Strings(added)
	sort.Strings(changed)
	sort.Strings(removed)
	return added, changed, removed
}
