package audit

import "strings"

// FilterBranded removes rows whose query contains any of the supplied branded
// terms. Matching is a case-insensitive substring test. Blank terms are
// ignored; an empty term list returns the input unchanged.
func FilterBranded(rows []QueryRow, terms []string) []QueryRow {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	if len(normalized) == 0 {
		return rows
	}

	out := make([]QueryRow, 0, len(rows))
	for _, row := range rows {
		if !matchesAny(strings.ToLower(row.Query), normalized) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAny(query string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(query, term) {
			return true
		}
	}
	return false
}
