package chatlist

import "strings"

// Filter returns the entries whose resolved peer display name contains
// query, case-insensitively. An empty query matches everything. Entries
// whose other participant cannot be resolved are excluded; such foreign
// conversations cannot appear in a per-contact view.
//
// Filter is pure and cheap (single linear scan), so callers re-run it on
// every keystroke of the search input.
func Filter(selfID string, entries []Entry, contacts map[string]Contact, query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))

	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		name := ResolveName(selfID, e, contacts)
		if name == "" {
			continue
		}
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			matched = append(matched, e)
		}
	}
	return matched
}
