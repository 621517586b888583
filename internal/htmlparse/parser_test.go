package htmlparse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serptools/queryaudit/internal/audit"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Best Shoes</title>
<meta name="description" content="Shop the best shoes online.">
<style>body { color: red; }</style>
</head>
<body>
<h1>Shoe Store</h1>
<h2>Running Shoes</h2>
<h2>Shoe Care</h2>
<h3>Trail</h3>
<script>var tracking = "hidden";</script>
<p>Free shipping on all orders.</p>
</body>
</html>`

func TestParseExtractsStructuralFields(t *testing.T) {
	t.Parallel()

	got := New().Parse(samplePage)

	require.Equal(t, "Best Shoes", got.Title)
	require.Equal(t, "Shop the best shoes online.", got.MetaDescription)
	require.Equal(t, []string{"Shoe Store"}, got.H1)
	require.Equal(t, []string{"Running Shoes", "Shoe Care"}, got.H2)
	require.Equal(t, []string{"Trail"}, got.H3)
	require.Contains(t, got.Body, "Free shipping on all orders.")
	require.NotContains(t, got.Body, "tracking", "script text is not visible")
	require.NotContains(t, got.Body, "color: red", "style text is not visible")
}

func TestParseEmptyInput(t *testing.T) {
	t.Parallel()

	require.Equal(t, audit.ParsedContent{}, New().Parse(""))
}

func TestParseMalformedInputDoesNotFail(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<<<>>>",
		"<title>unclosed",
		"<h2>first<h2>second",
		"plain text, no markup at all",
	}
	p := New()
	for _, in := range inputs {
		require.NotPanics(t, func() { p.Parse(in) }, "input %q", in)
	}
}

func TestParseMissingElementsDefaultEmpty(t *testing.T) {
	t.Parallel()

	got := New().Parse("<html><body><p>just text</p></body></html>")
	require.Empty(t, got.Title)
	require.Empty(t, got.MetaDescription)
	require.Empty(t, got.H1)
	require.Empty(t, got.H2)
	require.Empty(t, got.H3)
	require.Equal(t, "just text", got.Body)
}

func TestParseMetaDescriptionFirstWins(t *testing.T) {
	t.Parallel()

	html := `<head>
<meta name="description" content="first">
<meta name="description" content="second">
</head>`
	require.Equal(t, "first", New().Parse(html).MetaDescription)
}

func TestParseHeadingsKeepDocumentOrder(t *testing.T) {
	t.Parallel()

	var html string
	for i := 0; i < 5; i++ {
		html += fmt.Sprintf("<h2>heading %d</h2>", i)
	}
	got := New().Parse(html)
	require.Len(t, got.H2, 5)
	for i, h := range got.H2 {
		require.Equal(t, fmt.Sprintf("heading %d", i), h)
	}
}

func TestParseCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := New().Parse("<title>Best\n   Running\tShoes</title>")
	require.Equal(t, "Best Running Shoes", got.Title)
}

func TestParseIdempotent(t *testing.T) {
	t.Parallel()

	p := New()
	first := p.Parse(samplePage)
	second := p.Parse(samplePage)
	require.Equal(t, first, second)

	// A fresh parser gives the same answer, so the memo is an
	// optimization only.
	require.Equal(t, first, New().Parse(samplePage))
}
