package vault

import (
	"sort"
	"strings"
)

// SearchEntries returns entries whose title or url contains term, ignoring case.
func (s *Store) SearchEntries(term string) []Entry {
	needle := strings.ToLower(term)
	var out []Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Title), needle) ||
			(e.URL != nil && strings.Contains(strings.ToLower(*e.URL), needle)) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Categories returns the distinct non-empty categories in sorted order.
func (s *Store) Categories() []string {
	set := make(map[string]struct{})
	for _, e := range s.entries {
		if e.Category != nil && *e.Category != "" {
			set[*e.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Favorites returns the entries marked as favorite.
func (s *Store) Favorites() []Entry {
	var out []Entry
	for _, e := range s.entries {
		if e.Favorite {
			out = append(out, e.Clone())
		}
	}
	return out
}
