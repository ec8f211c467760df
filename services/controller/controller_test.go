package controller

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/search"
	"github.com/stretchr/testify/require"
)

const settleTimeout = 2 * time.Second

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

type reply struct {
	results []search.Result
	err     error
}

// gatedSearcher hands each call's reply to the test only when the test releases it.
type gatedSearcher struct {
	mu      sync.Mutex
	queries []string
	gates   []chan reply
	started chan struct{}
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{started: make(chan struct{}, 16)}
}

func (g *gatedSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	gate := make(chan reply, 1)
	g.mu.Lock()
	g.queries = append(g.queries, query)
	g.gates = append(g.gates, gate)
	g.mu.Unlock()
	g.started <- struct{}{}

	select {
	case r := <-gate:
		return r.results, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedSearcher) release(t *testing.T, call int, r reply) {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.Less(t, call, len(g.gates), "search call %d was never made", call)
	g.gates[call] <- r
}

func (g *gatedSearcher) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(settleTimeout):
		t.Fatal("search was never started")
	}
}

type stubSearcher struct {
	results []search.Result
	err     error
}

func (s stubSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	return s.results, s.err
}

func waitSettled(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(settleTimeout):
		t.Fatal("search did not settle in time")
	}
}

func scorePtr(score float64) *float64 {
	return &score
}

func TestInitialState(t *testing.T) {
	assert := require.New(t)
	c := New(context.Background(), newTestLogger(), stubSearcher{})
	defer c.Close()

	snapshot := c.Snapshot()
	assert.Equal(PhaseIdle, c.State().Phase())
	assert.Empty(snapshot.Query)
	assert.Empty(snapshot.Results)
	assert.False(snapshot.Loading)
	assert.Empty(snapshot.Error)
	assert.True(snapshot.ShowEmptyNotice())
}

func TestIdleSnapshotMatchesNewController(t *testing.T) {
	assert := require.New(t)
	c := New(context.Background(), newTestLogger(), stubSearcher{})
	defer c.Close()

	assert.Equal(c.Snapshot(), IdleSnapshot())
}

func TestTriggerSearchEntersLoadingSynchronously(t *testing.T) {
	assert := require.New(t)
	searcher := newGatedSearcher()
	c := New(context.Background(), newTestLogger(), searcher)
	defer c.Close()

	c.SetQuery("x")
	done := c.TriggerSearch()

	snapshot := c.Snapshot()
	assert.True(snapshot.Loading)
	assert.Empty(snapshot.Error)
	assert.False(snapshot.ShowEmptyNotice())

	searcher.waitStarted(t)
	searcher.release(t, 0, reply{results: []search.Result{}})
	waitSettled(t, done)
	assert.False(c.Snapshot().Loading)
}

func TestSuccessReplacesResults(t *testing.T) {
	assert := require.New(t)
	searcher := stubSearcher{results: []search.Result{
		{Title: "A", Description: "d", Requirements: "r", Score: scorePtr(0.5)},
	}}
	c := New(context.Background(), newTestLogger(), searcher)
	defer c.Close()

	c.SetQuery("x")
	waitSettled(t, c.TriggerSearch())

	snapshot := c.Snapshot()
	assert.Equal(PhaseSuccess.String(), snapshot.Phase)
	assert.False(snapshot.Loading)
	assert.Empty(snapshot.Error)
	assert.Len(snapshot.Results, 1)
	assert.Equal("0.50", snapshot.Results[0].FormatScore())
	assert.False(snapshot.ShowEmptyNotice())
}

func TestFailureSetsError(t *testing.T) {
	assert := require.New(t)
	fetchErr := &search.FetchError{Kind: search.FailureStatus, StatusCode: 500}
	c := New(context.Background(), newTestLogger(), stubSearcher{err: fetchErr})
	defer c.Close()

	waitSettled(t, c.TriggerSearch())

	snapshot := c.Snapshot()
	assert.Equal(PhaseFailed.String(), snapshot.Phase)
	assert.False(snapshot.Loading)
	assert.Equal("Failed to fetch search results (status 500)", snapshot.Error)
	assert.False(snapshot.ShowEmptyNotice(), "the error takes priority over the empty notice")
}

func TestEmptyResultsShowNotice(t *testing.T) {
	assert := require.New(t)
	c := New(context.Background(), newTestLogger(), stubSearcher{results: []search.Result{}})
	defer c.Close()

	waitSettled(t, c.TriggerSearch())

	snapshot := c.Snapshot()
	assert.False(snapshot.Loading)
	assert.Empty(snapshot.Error)
	assert.NotNil(snapshot.Results)
	assert.True(snapshot.ShowEmptyNotice())
}

func TestStaleResultsStayVisible(t *testing.T) {
	assert := require.New(t)
	searcher := newGatedSearcher()
	c := New(context.Background(), newTestLogger(), searcher)
	defer c.Close()

	first := []search.Result{{Title: "first", Score: scorePtr(1)}}
	c.SetQuery("one")
	done := c.TriggerSearch()
	searcher.waitStarted(t)
	searcher.release(t, 0, reply{results: first})
	waitSettled(t, done)

	c.SetQuery("two")
	done = c.TriggerSearch()
	loading := c.Snapshot()
	assert.True(loading.Loading)
	assert.Equal(first, loading.Results, "previous results stay visible while loading")

	searcher.waitStarted(t)
	searcher.release(t, 1, reply{err: errors.New("connection refused")})
	waitSettled(t, done)

	failed := c.Snapshot()
	assert.Equal("connection refused", failed.Error)
	assert.Equal(first, failed.Results, "previous results stay visible next to the error")

	c.SetQuery("three")
	done = c.TriggerSearch()
	assert.Empty(c.Snapshot().Error, "a new attempt clears the previous error")
	searcher.waitStarted(t)
	searcher.release(t, 2, reply{results: []search.Result{}})
	waitSettled(t, done)
}

func TestSupersededSearchIsDiscarded(t *testing.T) {
	assert := require.New(t)
	searcher := newGatedSearcher()
	c := New(context.Background(), newTestLogger(), searcher)
	defer c.Close()

	c.SetQuery("old")
	oldDone := c.TriggerSearch()
	searcher.waitStarted(t)

	c.SetQuery("new")
	newDone := c.TriggerSearch()
	searcher.waitStarted(t)

	searcher.release(t, 1, reply{results: []search.Result{{Title: "new"}}})
	waitSettled(t, newDone)

	searcher.release(t, 0, reply{results: []search.Result{{Title: "old"}}})
	waitSettled(t, oldDone)

	snapshot := c.Snapshot()
	assert.Equal([]string{"old", "new"}, searcher.queries)
	assert.Equal("new", snapshot.Query)
	assert.Len(snapshot.Results, 1)
	assert.Equal("new", snapshot.Results[0].Title)
}

func TestCloseAbortsInFlightSearch(t *testing.T) {
	assert := require.New(t)
	searcher := newGatedSearcher()
	c := New(context.Background(), newTestLogger(), searcher)

	done := c.TriggerSearch()
	searcher.waitStarted(t)
	c.Close()
	waitSettled(t, done)

	assert.Equal(PhaseLoading, c.State().Phase(), "outcomes after close are not applied")

	waitSettled(t, c.TriggerSearch())
	assert.Len(searcher.queries, 1, "closed controllers do not search")
}

func TestSnapshotIsACopy(t *testing.T) {
	assert := require.New(t)
	c := New(context.Background(), newTestLogger(), stubSearcher{results: []search.Result{{Title: "A"}}})
	defer c.Close()

	waitSettled(t, c.TriggerSearch())

	snapshot := c.Snapshot()
	snapshot.Results[0].Title = "changed"
	assert.Equal("A", c.Snapshot().Results[0].Title)
}
