package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterBranded_RemovesMatchingQueries(t *testing.T) {
	t.Parallel()

	rows := []QueryRow{
		{Query: "acme running shoes", LandingPage: "https://example.com/a"},
		{Query: "running shoes", LandingPage: "https://example.com/a"},
		{Query: "buy ACME boots", LandingPage: "https://example.com/b"},
	}

	got := FilterBranded(rows, []string{"Acme"})
	require.Len(t, got, 1)
	require.Equal(t, "running shoes", got[0].Query)
}

func TestFilterBranded_EmptyTermListIsIdentity(t *testing.T) {
	t.Parallel()

	rows := []QueryRow{
		{Query: "running shoes"},
		{Query: "boots"},
	}

	require.Equal(t, rows, FilterBranded(rows, nil))
	require.Equal(t, rows, FilterBranded(rows, []string{"", "  "}))
}

func TestFilterBranded_TrimsTerms(t *testing.T) {
	t.Parallel()

	rows := []QueryRow{{Query: "acme shoes"}, {Query: "other shoes"}}
	got := FilterBranded(rows, []string{"  acme  "})
	require.Len(t, got, 1)
	require.Equal(t, "other shoes", got[0].Query)
}
