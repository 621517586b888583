package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	t.Parallel()

	csv := `Query,Landing Page,Clicks,Impressions
running shoes,https://example.com/shoes,12,340
winter boots,https://example.com/boots,0,88
`
	rows, err := ReadRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "running shoes", rows[0].Query)
	require.Equal(t, "https://example.com/shoes", rows[0].LandingPage)
	require.Equal(t, 12, rows[0].Clicks)
	require.Equal(t, 340, rows[0].Impressions)
	require.Equal(t, 0, rows[1].Clicks)
}

func TestReadRowsIgnoresExtraColumnsAndOrder(t *testing.T) {
	t.Parallel()

	csv := `CTR,Impressions,Landing Page,Position,Query,Clicks
1.2%,500,https://example.com/a,3.4,alpha,7
`
	rows, err := ReadRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "alpha", rows[0].Query)
	require.Equal(t, 7, rows[0].Clicks)
	require.Equal(t, 500, rows[0].Impressions)
}

func TestReadRowsThousandsSeparators(t *testing.T) {
	t.Parallel()

	csv := `Query,Landing Page,Clicks,Impressions
popular,https://example.com/a,"1,024","12,345"
`
	rows, err := ReadRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1024, rows[0].Clicks)
	require.Equal(t, 12345, rows[0].Impressions)
}

func TestReadRowsMissingColumn(t *testing.T) {
	t.Parallel()

	csv := `Query,Clicks,Impressions
a,1,2
`
	_, err := ReadRows(strings.NewReader(csv))
	require.Error(t, err)
	require.Contains(t, err.Error(), "landing page")
}

func TestReadRowsBadCountReportsLine(t *testing.T) {
	t.Parallel()

	csv := `Query,Landing Page,Clicks,Impressions
good,https://example.com/a,1,2
bad,https://example.com/b,not-a-number,2
`
	_, err := ReadRows(strings.NewReader(csv))
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
}

func TestReadRowsNegativeCountRejected(t *testing.T) {
	t.Parallel()

	csv := `Query,Landing Page,Clicks,Impressions
q,https://example.com/a,-1,2
`
	_, err := ReadRows(strings.NewReader(csv))
	require.Error(t, err)
}

func TestReadRowsEmptyQueryRejected(t *testing.T) {
	t.Parallel()

	csv := `Query,Landing Page,Clicks,Impressions
,https://example.com/a,1,2
`
	_, err := ReadRows(strings.NewReader(csv))
	require.Error(t, err)
}

func TestReadRowsHeaderOnly(t *testing.T) {
	t.Parallel()

	rows, err := ReadRows(strings.NewReader("Query,Landing Page,Clicks,Impressions\n"))
	require.NoError(t, err)
	require.Empty(t, rows)
}
