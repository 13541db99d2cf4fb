package poller_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vartalabs/varta-ingest/internal/adapter/alertsapi"
	"github.com/vartalabs/varta-ingest/internal/domain"
	"github.com/vartalabs/varta-ingest/internal/observability"
	"github.com/vartalabs/varta-ingest/internal/poller"
)

const (
	testInterval = 15 * time.Second
	testBackoff  = 60 * time.Second
)

type fetchResult struct {
	snapshot domain.RegionSnapshot
	err      error
}

// scriptedFetcher returns its results in order, repeating the last one, and
// signals every call so tests can synchronize without sleeping.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
	called  chan struct{}
}

func newScriptedFetcher(results ...fetchResult) *scriptedFetcher {
	return &scriptedFetcher{results: results, called: make(chan struct{}, 64)}
}

func (f *scriptedFetcher) FetchStates(context.Context) (domain.RegionSnapshot, error) {
	f.mu.Lock()
	idx := f.calls
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	result := f.results[idx]
	f.calls++
	f.mu.Unlock()

	f.called <- struct{}{}
	return result.snapshot, result.err
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type snapshotSink struct {
	mu        sync.Mutex
	snapshots []domain.RegionSnapshot
}

func (s *snapshotSink) OnAlertEvent(domain.AlertEvent, domain.Verdict) {}

func (s *snapshotSink) OnHighlightRequest([]domain.RegionCode) {}

func (s *snapshotSink) OnRegionSnapshot(snapshot domain.RegionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
}

func (s *snapshotSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func waitForCall(t *testing.T, f *scriptedFetcher) {
	t.Helper()
	select {
	case <-f.called:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
	}
}

func testSnapshot() domain.RegionSnapshot {
	return domain.RegionSnapshot{
		"Одеська область":  true,
		"Львівська область": false,
	}
}

func TestPoller_PollsOnTheNormalCadence(t *testing.T) {
	fetcher := newScriptedFetcher(fetchResult{snapshot: testSnapshot()})
	sink := &snapshotSink{}
	clock := clockwork.NewFakeClock()
	p := poller.New(fetcher, sink, clock, slog.Default(),
		observability.NewMetricsForTesting(), testInterval, testBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// First fetch fires immediately on startup.
	waitForCall(t, fetcher)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// One second short of the cadence: no new fetch.
	clock.Advance(testInterval - time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, fetcher.callCount())

	clock.Advance(time.Second)
	waitForCall(t, fetcher)
	assert.Equal(t, 2, fetcher.callCount())

	require.Eventually(t, func() bool { return sink.count() == 2 },
		time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_BacksOffAfterRateLimit(t *testing.T) {
	fetcher := newScriptedFetcher(
		fetchResult{err: alertsapi.ErrRateLimited},
		fetchResult{snapshot: testSnapshot()},
	)
	sink := &snapshotSink{}
	clock := clockwork.NewFakeClock()
	p := poller.New(fetcher, sink, clock, slog.Default(),
		observability.NewMetricsForTesting(), testInterval, testBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitForCall(t, fetcher)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// The normal cadence elapsing is not enough after a rate limit.
	clock.Advance(testInterval)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, fetcher.callCount())

	clock.Advance(testBackoff - testInterval)
	waitForCall(t, fetcher)
	assert.Equal(t, 2, fetcher.callCount())

	// The rate-limited iteration forwarded nothing.
	require.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_FetchErrorWaitsNormalInterval(t *testing.T) {
	fetcher := newScriptedFetcher(
		fetchResult{err: errors.New("connection refused")},
		fetchResult{snapshot: testSnapshot()},
	)
	sink := &snapshotSink{}
	clock := clockwork.NewFakeClock()
	p := poller.New(fetcher, sink, clock, slog.Default(),
		observability.NewMetricsForTesting(), testInterval, testBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitForCall(t, fetcher)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// A non-rate-limit failure keeps the normal cadence.
	clock.Advance(testInterval)
	waitForCall(t, fetcher)
	assert.Equal(t, 2, fetcher.callCount())

	require.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_ForceRefreshBypassesCadence(t *testing.T) {
	fetcher := newScriptedFetcher(fetchResult{snapshot: testSnapshot()})
	sink := &snapshotSink{}
	p := poller.New(fetcher, sink, clockwork.NewFakeClock(), slog.Default(),
		observability.NewMetricsForTesting(), testInterval, testBackoff)

	// No Run loop at all: the refresh is independent of the timer.
	require.NoError(t, p.ForceRefresh(context.Background()))
	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, 1, sink.count())
}

func TestPoller_ForceRefreshPropagatesFailure(t *testing.T) {
	fetcher := newScriptedFetcher(fetchResult{err: alertsapi.ErrRateLimited})
	sink := &snapshotSink{}
	p := poller.New(fetcher, sink, clockwork.NewFakeClock(), slog.Default(),
		observability.NewMetricsForTesting(), testInterval, testBackoff)

	err := p.ForceRefresh(context.Background())
	require.ErrorIs(t, err, alertsapi.ErrRateLimited)
	assert.Zero(t, sink.count())
}

func TestPoller_StopEndsTheLoop(t *testing.T) {
	fetcher := newScriptedFetcher(fetchResult{snapshot: testSnapshot()})
	clock := clockwork.NewFakeClock()
	p := poller.New(fetcher, &snapshotSink{}, clock, slog.Default(),
		observability.NewMetricsForTesting(), testInterval, testBackoff)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitForCall(t, fetcher)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	p.Stop()
	clock.Advance(testInterval)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Equal(t, 1, fetcher.callCount())
}

func TestPoller_ContextCancelInterruptsSleep(t *testing.T) {
	fetcher := newScriptedFetcher(fetchResult{snapshot: testSnapshot()})
	clock := clockwork.NewFakeClock()
	p := poller.New(fetcher, &snapshotSink{}, clock, slog.Default(),
		observability.NewMetricsForTesting(), testInterval, testBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitForCall(t, fetcher)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not observe cancellation")
	}
}
