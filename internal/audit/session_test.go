package audit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionPendingSkipsProcessed(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Complete("https://example.com/a", nil, false)

	pending := s.Pending([]string{"https://example.com/a", "https://example.com/b"})
	require.Equal(t, []string{"https://example.com/b"}, pending)
}

func TestSessionSummary(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Complete("https://example.com/a", []AnalysisRecord{
		{URL: "https://example.com/a", Query: "one"},
		{URL: "https://example.com/a", Query: "two"},
		{URL: "https://example.com/a", Query: "three"},
	}, false)
	s.Complete("https://example.com/b", []AnalysisRecord{
		{URL: "https://example.com/b", Query: "four"},
	}, true)

	sum := s.Summary()
	require.Equal(t, 2, sum.URLCount)
	require.Equal(t, 4, sum.RecordCount)
	require.Equal(t, 2.0, sum.AvgPerURL)
	require.Equal(t, 1, sum.FailedFetches)
}

func TestSessionSummaryRoundsToTwoDecimals(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Complete("https://example.com/a", []AnalysisRecord{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/a"},
	}, false)
	s.Complete("https://example.com/b", []AnalysisRecord{
		{URL: "https://example.com/b"},
	}, false)
	s.Complete("https://example.com/c", []AnalysisRecord{
		{URL: "https://example.com/c"},
	}, false)

	// 4 records over 3 URLs = 1.3333... rounds to 1.33.
	require.Equal(t, 1.33, s.Summary().AvgPerURL)
}

func TestSessionSummaryEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, Summary{}, NewSession().Summary())
}

func TestSessionReset(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Complete("https://example.com/a", []AnalysisRecord{{URL: "https://example.com/a"}}, false)
	s.Reset()

	require.Zero(t, s.ProcessedCount())
	require.Empty(t, s.Records())
	require.Equal(t, Summary{}, s.Summary())
	require.Equal(t, []string{"https://example.com/a"}, s.Pending([]string{"https://example.com/a"}))
}

func TestSessionClaimWinsOnce(t *testing.T) {
	t.Parallel()

	s := NewSession()
	require.True(t, s.Claim("https://example.com/a"))
	require.False(t, s.Claim("https://example.com/a"), "second claim on the same URL must lose")

	require.Equal(t, 1, s.ProcessedCount())
	require.Empty(t, s.Pending([]string{"https://example.com/a"}), "claimed URL is no longer pending")

	s.Complete("https://example.com/a", []AnalysisRecord{{URL: "https://example.com/a"}}, false)
	require.Equal(t, 1, s.ProcessedCount(), "completing a claimed URL does not double count it")
}

func TestSessionClaimSingleWinnerUnderContention(t *testing.T) {
	t.Parallel()

	s := NewSession()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Claim("https://example.com/contested") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
	require.Equal(t, 1, s.ProcessedCount())
}

func TestSessionConcurrentCompletions(t *testing.T) {
	t.Parallel()

	s := NewSession()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("https://example.com/p%d", i)
			s.Complete(url, []AnalysisRecord{{URL: url}}, i%5 == 0)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 50, s.ProcessedCount())
	require.Len(t, s.Records(), 50)
	require.Equal(t, 10, s.Summary().FailedFetches)
}
