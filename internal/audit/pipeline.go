package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/serptools/queryaudit/internal/metrics"
	"github.com/serptools/queryaudit/internal/progress"
)

// ErrNoRows is returned when a run is started with no rows, typically because
// branded-term filtering removed everything.
var ErrNoRows = errors.New("no rows to analyze")

const (
	defaultConcurrency = 5
	maxConcurrency     = 10
)

// Fetcher retrieves the raw HTML of a landing page. Implementations must
// return an error for any failure (timeout, DNS, connection, non-2xx) rather
// than panicking or returning partial bodies.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Parser converts raw HTML into structural content. Implementations never
// fail; malformed input yields empty fields.
type Parser interface {
	Parse(html string) ParsedContent
}

// Config controls Analyzer behavior.
type Config struct {
	// Concurrency is the fetch pool size, clamped to [1,10]. Zero selects
	// the default of 5.
	Concurrency int
}

// Analyzer runs the fetch-parse-select-match pipeline over a dataset. Only
// the fetch stage fans out; parsing, selection, and matching run on the
// goroutine that observes the completed fetch.
type Analyzer struct {
	fetcher Fetcher
	parser  Parser
	hub     progress.Emitter
	cfg     Config
	logger  *zap.Logger
}

// New constructs an Analyzer. The hub may be nil to disable progress events.
func New(fetcher Fetcher, parser Parser, hub progress.Emitter, cfg Config, logger *zap.Logger) *Analyzer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Concurrency > maxConcurrency {
		cfg.Concurrency = maxConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		fetcher: fetcher,
		parser:  parser,
		hub:     hub,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run analyzes every not-yet-processed landing page in rows and appends the
// resulting records to the session. It blocks until all pending URLs have
// completed or the context is canceled, then returns the session summary.
// Workers claim each URL in the session before fetching, so concurrent runs
// over the same session never process a URL twice. Rows must already be
// branded-term filtered; an empty input is an error and produces no fetches.
func (a *Analyzer) Run(ctx context.Context, session *Session, rows []QueryRow) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoRows
	}
	start := time.Now()
	a.emit(progress.Event{TS: start.UTC(), Stage: progress.StageRunStart})

	groups, order := groupByPage(rows)
	pending := session.Pending(order)
	if len(pending) == 0 {
		a.logger.Info("no pending urls, returning accumulated results",
			zap.Int("processed", session.ProcessedCount()))
		return a.finishRun(session, start), nil
	}

	a.logger.Info("starting analysis run",
		zap.Int("urls", len(pending)),
		zap.Int("concurrency", a.cfg.Concurrency))

	urlCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < a.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range urlCh {
				a.processURL(ctx, session, url, groups[url])
			}
		}()
	}

feed:
	for _, url := range pending {
		select {
		case urlCh <- url:
		case <-ctx.Done():
			break feed
		}
	}
	close(urlCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return a.finishRun(session, start), err
	}
	return a.finishRun(session, start), nil
}

func (a *Analyzer) finishRun(session *Session, start time.Time) Summary {
	summary := session.Summary()
	a.emit(progress.Event{
		TS:      time.Now().UTC(),
		Stage:   progress.StageRunDone,
		Records: summary.RecordCount,
		Dur:     time.Since(start),
	})
	return summary
}

func (a *Analyzer) emit(evt progress.Event) {
	if a.hub == nil {
		return
	}
	a.hub.Emit(evt)
}

func (a *Analyzer) processURL(ctx context.Context, session *Session, url string, group []QueryRow) {
	// The pending diff above is only a hint; the claim is what guarantees
	// once-per-session processing when runs overlap.
	if !session.Claim(url) {
		return
	}

	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	start := time.Now()
	var content ParsedContent
	fetchFailed := false

	html, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		// Non-fatal: the URL proceeds with empty content so every
		// selected query still yields a record, all flags false.
		fetchFailed = true
		a.logger.Warn("fetch failed, continuing with empty content",
			zap.String("url", url),
			zap.Error(err))
	} else {
		content = a.parser.Parse(html)
	}

	selected := SelectTopQueries(group)
	records := make([]AnalysisRecord, 0, len(selected))
	for _, row := range selected {
		records = append(records, AnalysisRecord{
			URL:         url,
			Query:       row.Query,
			Clicks:      row.Clicks,
			Impressions: row.Impressions,
			Presence:    CheckPresence(content, row.Query),
		})
	}

	session.Complete(url, records, fetchFailed)

	dur := time.Since(start)
	status := "ok"
	if fetchFailed {
		status = "failed"
	}
	metrics.ObservePage(url, status, dur)
	metrics.ObserveRecords(len(records))
	a.emit(progress.Event{
		TS:      time.Now().UTC(),
		Stage:   progress.StagePageDone,
		URL:     url,
		Records: len(records),
		Failed:  fetchFailed,
		Dur:     dur,
	})
}

// groupByPage partitions rows by landing page, preserving first-appearance
// order of the URLs and input order within each group.
func groupByPage(rows []QueryRow) (map[string][]QueryRow, []string) {
	groups := make(map[string][]QueryRow)
	order := make([]string, 0)
	for _, row := range rows {
		if _, ok := groups[row.LandingPage]; !ok {
			order = append(order, row.LandingPage)
		}
		groups[row.LandingPage] = append(groups[row.LandingPage], row)
	}
	return groups, order
}
