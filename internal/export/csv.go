// Package export writes analysis results in the downloadable CSV format.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/serptools/queryaudit/internal/audit"
)

// Header is the fixed column order of the results CSV.
var Header = []string{
	"URL", "Query", "Clicks", "Impressions",
	"Title", "Meta", "H1", "H2-1", "H2-2", "H3-1", "H3-2", "Body",
}

// WriteCSV streams records to w with the fixed header. Booleans render as
// "true"/"false".
func WriteCSV(w io.Writer, records []audit.AnalysisRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.URL,
			rec.Query,
			strconv.Itoa(rec.Clicks),
			strconv.Itoa(rec.Impressions),
			strconv.FormatBool(rec.Presence.Title),
			strconv.FormatBool(rec.Presence.Meta),
			strconv.FormatBool(rec.Presence.H1),
			strconv.FormatBool(rec.Presence.H2a),
			strconv.FormatBool(rec.Presence.H2b),
			strconv.FormatBool(rec.Presence.H3a),
			strconv.FormatBool(rec.Presence.H3b),
			strconv.FormatBool(rec.Presence.Body),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
