package audit

import "sort"

const (
	maxSelected = 10
	maxByClicks = 8
)

// SelectTopQueries picks at most ten representative rows for one landing
// page: up to eight with the highest click counts, the rest filled with the
// highest-impression rows not already chosen. Both tiers use a stable sort so
// ties keep their input order, which makes the output deterministic for a
// given input ordering.
func SelectTopQueries(group []QueryRow) []QueryRow {
	byClicks := make([]QueryRow, 0, len(group))
	for _, row := range group {
		if row.Clicks > 0 {
			byClicks = append(byClicks, row)
		}
	}
	sort.SliceStable(byClicks, func(i, j int) bool {
		return byClicks[i].Clicks > byClicks[j].Clicks
	})
	if len(byClicks) > maxByClicks {
		byClicks = byClicks[:maxByClicks]
	}

	remaining := maxSelected - len(byClicks)
	if remaining <= 0 {
		return byClicks
	}

	// Exclusion is by row identity (query + landing page), not by value,
	// so rows with tied metrics are not double counted.
	chosen := make(map[rowKey]struct{}, len(byClicks))
	for _, row := range byClicks {
		chosen[keyOf(row)] = struct{}{}
	}

	candidates := make([]QueryRow, 0, len(group))
	for _, row := range group {
		if _, ok := chosen[keyOf(row)]; !ok {
			candidates = append(candidates, row)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Impressions > candidates[j].Impressions
	})
	if len(candidates) > remaining {
		candidates = candidates[:remaining]
	}

	return append(byClicks, candidates...)
}

type rowKey struct {
	query string
	page  string
}

func keyOf(row QueryRow) rowKey {
	return rowKey{query: row.Query, page: row.LandingPage}
}
