package audit

import (
	"math"
	"sync"
)

// Session accumulates analysis output across repeated pipeline runs. URLs
// already processed in the session are skipped on later runs, which lets a
// caller feed the same dataset again after adding rows without re-fetching
// pages. All methods are safe for concurrent use; completions from the fetch
// pool serialize through the session mutex.
type Session struct {
	mu        sync.Mutex
	processed map[string]struct{}
	records   []AnalysisRecord
	failed    int
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{processed: make(map[string]struct{})}
}

// Pending returns the subset of urls not yet processed in this session,
// preserving input order.
func (s *Session) Pending(urls []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := s.processed[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}

// Claim marks url as processed and reports whether the caller won the claim.
// Exactly one of any concurrent claimants wins; losers must skip the URL.
// Claiming is separate from Complete so a worker can take ownership before
// the fetch starts, keeping concurrent runs over a shared session from
// processing the same URL twice.
func (s *Session) Claim(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processed[url]; ok {
		return false
	}
	s.processed[url] = struct{}{}
	return true
}

// Complete appends the records produced for a claimed URL. It is called once
// per URL per session, whether or not the fetch succeeded; failed fetches
// pass records with all-false presence vectors. The URL is also marked
// processed for callers that bypass Claim.
func (s *Session) Complete(url string, records []AnalysisRecord, fetchFailed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	s.processed[url] = struct{}{}
	if fetchFailed {
		s.failed++
	}
}

// Records returns a copy of the accumulated output in completion order.
func (s *Session) Records() []AnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AnalysisRecord(nil), s.records...)
}

// ProcessedCount reports how many URLs have completed in this session.
func (s *Session) ProcessedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed)
}

// Summary computes the session totals. The average is rounded to two decimal
// places; an empty session reports zeroes.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make(map[string]struct{}, len(s.records))
	for _, rec := range s.records {
		urls[rec.URL] = struct{}{}
	}
	sum := Summary{
		URLCount:      len(urls),
		RecordCount:   len(s.records),
		FailedFetches: s.failed,
	}
	if sum.URLCount > 0 {
		avg := float64(sum.RecordCount) / float64(sum.URLCount)
		sum.AvgPerURL = math.Round(avg*100) / 100
	}
	return sum
}

// Reset clears all accumulated state, returning the session to its initial
// condition. Processed URLs become eligible for fetching again.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = make(map[string]struct{})
	s.records = nil
	s.failed = 0
}
