// Package audit implements the query-presence analysis pipeline: selecting
// the top queries per landing page and checking where their text appears in
// the page's structural content.
package audit

// QueryRow is one row of search performance data attributed to a landing
// page. Rows arrive pre-validated from the ingestion boundary and are never
// mutated by the pipeline.
type QueryRow struct {
	Query       string `json:"query"`
	Clicks      int    `json:"clicks"`
	Impressions int    `json:"impressions"`
	LandingPage string `json:"landing_page"`
}

// ParsedContent holds the structural fields extracted from a page. Absent
// elements are empty strings or nil slices, never a sentinel error value.
type ParsedContent struct {
	Title           string
	MetaDescription string
	H1              []string
	H2              []string
	H3              []string
	Body            string
}

// PresenceVector records whether a query's text appears in each structural
// region of a page. All eight fields are always populated.
type PresenceVector struct {
	Title bool `json:"title"`
	Meta  bool `json:"meta"`
	H1    bool `json:"h1"`
	H2a   bool `json:"h2_1"`
	H2b   bool `json:"h2_2"`
	H3a   bool `json:"h3_1"`
	H3b   bool `json:"h3_2"`
	Body  bool `json:"body"`
}

// AnalysisRecord is one flat output row: a selected query for a URL together
// with its presence vector.
type AnalysisRecord struct {
	URL         string         `json:"url"`
	Query       string         `json:"query"`
	Clicks      int            `json:"clicks"`
	Impressions int            `json:"impressions"`
	Presence    PresenceVector `json:"presence"`
}

// Summary aggregates a session's output counts.
type Summary struct {
	URLCount      int     `json:"url_count"`
	RecordCount   int     `json:"record_count"`
	AvgPerURL     float64 `json:"avg_records_per_url"`
	FailedFetches int     `json:"failed_fetches"`
}
