package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *captureSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func pageDone(url string) Event {
	return Event{TS: time.Now().UTC(), Stage: StagePageDone, URL: url, Records: 3}
}

func TestHubDeliversEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{FlushInterval: 10 * time.Millisecond}, sink)
	defer hub.Close(context.Background()) //nolint:errcheck

	hub.Emit(pageDone("https://example.com/a"))
	hub.Emit(pageDone("https://example.com/b"))

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	events := sink.snapshot()
	require.Equal(t, "https://example.com/a", events[0].URL)
	require.Equal(t, "https://example.com/b", events[1].URL)
}

func TestHubCloseDrainsPending(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	// Long flush interval so delivery only happens via Close.
	hub := NewHub(Config{FlushInterval: time.Hour}, sink)

	for i := 0; i < 5; i++ {
		hub.Emit(pageDone("https://example.com/p"))
	}
	require.NoError(t, hub.Close(context.Background()))

	require.Len(t, sink.snapshot(), 5)
	require.True(t, sink.isClosed())
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{FlushInterval: 10 * time.Millisecond}, sink)

	hub.Emit(Event{})                                              // missing timestamp
	hub.Emit(Event{TS: time.Now(), Stage: Stage("BOGUS")})         // unknown stage
	hub.Emit(Event{TS: time.Now(), Stage: StagePageDone, URL: ""}) // page event without url

	require.NoError(t, hub.Close(context.Background()))
	require.Empty(t, sink.snapshot())
}

func TestHubNilIsNoOp(t *testing.T) {
	t.Parallel()

	var hub *Hub
	require.NotPanics(t, func() {
		hub.Emit(pageDone("https://example.com"))
		require.NoError(t, hub.Close(context.Background()))
	})
}

func TestHubEmitAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	require.NotPanics(t, func() {
		hub.Emit(pageDone("https://example.com"))
	})
	require.Empty(t, sink.snapshot())
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Event{TS: time.Now(), Stage: StageRunStart}.Validate())
	require.NoError(t, Event{TS: time.Now(), Stage: StageRunDone}.Validate())
	require.NoError(t, pageDone("https://example.com").Validate())

	require.Error(t, Event{Stage: StageRunStart}.Validate())
	require.Error(t, Event{TS: time.Now(), Stage: StagePageDone}.Validate())
	require.Error(t, Event{TS: time.Now(), Stage: Stage("NOPE")}.Validate())
}
