// Package fetcher downloads landing pages over HTTP using the Colly
// collector, with a read-through TTL cache keyed by URL.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/serptools/queryaudit/internal/metrics"
)

// DefaultUserAgent mirrors a desktop browser so pages serve their regular
// markup instead of a bot-detection page.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher retrieves page HTML via Colly. It performs no retries; any error
// (timeout, DNS, connection, non-2xx status) surfaces to the caller, who
// degrades that URL rather than aborting the run.
type Fetcher struct {
	cfg           Config
	cache         *Cache
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher. The cache may be nil to disable response caching.
func New(cfg Config, cache *Cache) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	// Synchronous collection is the default; colly v2.1.0's Async option
	// ignores its argument and always enables async, so it must not be passed.
	c := colly.NewCollector()
	c.IgnoreRobotsTxt = true
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		cache:         cache,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch returns the HTML for url, serving from the cache when a fresh entry
// exists. Only successful responses are cached.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		if html, ok := f.cache.Get(url); ok {
			metrics.ObserveCacheHit()
			return html, nil
		}
	}

	html, err := f.fetchRemote(ctx, url)
	if err != nil {
		return "", err
	}
	if f.cache != nil {
		f.cache.Put(url, html)
	}
	return html, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) (string, error) {
	var (
		body       []byte
		statusCode int
		fetchErr   error
	)

	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)

	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("visit %s: %w", url, err)
		}
	}
	if fetchErr != nil {
		return "", fmt.Errorf("fetch %s: %w", url, fetchErr)
	}
	if statusCode < 200 || statusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, statusCode)
	}
	return string(body), nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
