// Package htmlparse extracts structural content from page HTML.
package htmlparse

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/serptools/queryaudit/internal/audit"
	"github.com/serptools/queryaudit/internal/hash/sha256"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Parser converts raw HTML into audit.ParsedContent. Parsing is a pure
// function of the input; identical HTML always yields identical output.
// Results are memoized by SHA-256 of the input so repeated pages within a
// session parse once. The memo is session-scoped and unbounded, matching the
// page cache lifetime.
type Parser struct {
	hasher *sha256.Hasher

	mu   sync.RWMutex
	memo map[string]audit.ParsedContent
}

// New builds a Parser with an empty memo.
func New() *Parser {
	return &Parser{
		hasher: sha256.New(),
		memo:   make(map[string]audit.ParsedContent),
	}
}

// Parse extracts the title, meta description, h1/h2/h3 headings in document
// order, and the visible body text. Empty or unparsable input yields the
// zero ParsedContent; this method never fails.
func (p *Parser) Parse(html string) audit.ParsedContent {
	if html == "" {
		return audit.ParsedContent{}
	}

	key, err := p.hasher.Hash([]byte(html))
	if err == nil {
		p.mu.RLock()
		cached, ok := p.memo[key]
		p.mu.RUnlock()
		if ok {
			return cached
		}
	}

	content := extract(html)

	if err == nil {
		p.mu.Lock()
		p.memo[key] = content
		p.mu.Unlock()
	}
	return content
}

func extract(html string) audit.ParsedContent {
	data := []byte(html)

	// Decode to UTF-8 when the page uses another charset. Valid UTF-8 is
	// left alone; the sniffer's windows-1252 fallback would mangle it.
	if !utf8.Valid(data) {
		enc, _, _ := charset.DetermineEncoding(data, "")
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
			data = decoded
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return audit.ParsedContent{}
	}

	doc.Find("script,noscript,style").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	var content audit.ParsedContent
	content.Title = collapse(doc.Find("title").First().Text())
	content.MetaDescription = collapse(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))

	// Heading slices keep one entry per element, empty text included, so
	// positional checks (H2-1, H2-2, ...) line up with document order.
	for _, tag := range []string{"h1", "h2", "h3"} {
		var texts []string
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			texts = append(texts, collapse(s.Text()))
		})
		switch tag {
		case "h1":
			content.H1 = texts
		case "h2":
			content.H2 = texts
		case "h3":
			content.H3 = texts
		}
	}

	content.Body = collapse(doc.Find("body").First().Text())
	return content
}

// collapse trims and squeezes runs of whitespace so text split across markup
// still matches multi-word queries.
func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
