// Package ingest reads Google Search Console performance exports.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/serptools/queryaudit/internal/audit"
)

// Column headers the export must carry. Matching is case-insensitive and
// ignores surrounding whitespace; extra columns are ignored.
const (
	colQuery       = "query"
	colLandingPage = "landing page"
	colClicks      = "clicks"
	colImpressions = "impressions"
)

// ReadRows parses a GSC CSV export into typed rows. The header row is
// validated up front; any data row that fails to parse aborts the read with
// its line number so the caller can report a precise error.
func ReadRows(r io.Reader) ([]audit.QueryRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []audit.QueryRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		row, err := parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type columnIndex struct {
	query       int
	landingPage int
	clicks      int
	impressions int
}

func locateColumns(header []string) (columnIndex, error) {
	idx := columnIndex{query: -1, landingPage: -1, clicks: -1, impressions: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case colQuery:
			idx.query = i
		case colLandingPage:
			idx.landingPage = i
		case colClicks:
			idx.clicks = i
		case colImpressions:
			idx.impressions = i
		}
	}
	for name, pos := range map[string]int{
		colQuery:       idx.query,
		colLandingPage: idx.landingPage,
		colClicks:      idx.clicks,
		colImpressions: idx.impressions,
	} {
		if pos < 0 {
			return columnIndex{}, fmt.Errorf("csv header missing %q column", name)
		}
	}
	return idx, nil
}

func parseRow(record []string, cols columnIndex) (audit.QueryRow, error) {
	max := cols.query
	for _, i := range []int{cols.landingPage, cols.clicks, cols.impressions} {
		if i > max {
			max = i
		}
	}
	if len(record) <= max {
		return audit.QueryRow{}, fmt.Errorf("expected at least %d fields, got %d", max+1, len(record))
	}

	clicks, err := parseCount(record[cols.clicks])
	if err != nil {
		return audit.QueryRow{}, fmt.Errorf("clicks: %w", err)
	}
	impressions, err := parseCount(record[cols.impressions])
	if err != nil {
		return audit.QueryRow{}, fmt.Errorf("impressions: %w", err)
	}

	query := strings.TrimSpace(record[cols.query])
	page := strings.TrimSpace(record[cols.landingPage])
	if query == "" {
		return audit.QueryRow{}, fmt.Errorf("empty query")
	}
	if page == "" {
		return audit.QueryRow{}, fmt.Errorf("empty landing page")
	}

	return audit.QueryRow{
		Query:       query,
		Clicks:      clicks,
		Impressions: impressions,
		LandingPage: page,
	}, nil
}

// parseCount accepts the thousands-separated integers GSC exports produce.
func parseCount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
