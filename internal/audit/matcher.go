package audit

import "strings"

// CheckPresence reports where the query text appears in the parsed content.
// All comparisons are case-insensitive substring tests. H1 matches against
// every heading; H2 and H3 are checked only at positions one and two, with
// out-of-range positions reported as false.
func CheckPresence(content ParsedContent, query string) PresenceVector {
	q := strings.ToLower(query)
	return PresenceVector{
		Title: contains(content.Title, q),
		Meta:  contains(content.MetaDescription, q),
		H1:    containsAny(content.H1, q),
		H2a:   containsAt(content.H2, 0, q),
		H2b:   containsAt(content.H2, 1, q),
		H3a:   containsAt(content.H3, 0, q),
		H3b:   containsAt(content.H3, 1, q),
		Body:  contains(content.Body, q),
	}
}

func contains(field, query string) bool {
	return strings.Contains(strings.ToLower(field), query)
}

func containsAny(fields []string, query string) bool {
	for _, f := range fields {
		if contains(f, query) {
			return true
		}
	}
	return false
}

func containsAt(fields []string, idx int, query string) bool {
	if idx >= len(fields) {
		return false
	}
	return contains(fields[idx], query)
}
