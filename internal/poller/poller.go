// Package poller periodically fetches the per-region alert state and forwards
// each full snapshot to the sink.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vartalabs/varta-ingest/internal/adapter/alertsapi"
	"github.com/vartalabs/varta-ingest/internal/domain"
	"github.com/vartalabs/varta-ingest/internal/observability"
)

// Fetcher performs one status endpoint fetch.
type Fetcher interface {
	FetchStates(ctx context.Context) (domain.RegionSnapshot, error)
}

// Poller loops on a timer, fetching the status endpoint and forwarding the
// decoded snapshot. Every iteration is fault-isolated: a failed fetch logs
// and waits for the next tick, a rate-limited fetch backs off longer.
type Poller struct {
	fetcher  Fetcher
	sink     domain.Sink
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	interval time.Duration
	backoff  time.Duration

	stopped atomic.Bool
}

// New creates a Poller. interval is the normal cadence, backoff the wait
// after a rate-limit response.
func New(fetcher Fetcher, sink domain.Sink, clock clockwork.Clock, logger *slog.Logger,
	metrics *observability.Metrics, interval, backoff time.Duration,
) *Poller {
	return &Poller{
		fetcher:  fetcher,
		sink:     sink,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		interval: interval,
		backoff:  backoff,
	}
}

// Run executes the poll loop until Stop is called or ctx is cancelled. The
// stop flag is checked once per iteration, so cancellation latency is bounded
// by the current sleep.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("status poller started", "interval", p.interval, "backoff", p.backoff)

	for {
		if p.stopped.Load() || ctx.Err() != nil {
			p.logger.Info("status poller stopping")
			return nil
		}

		delay := p.pollOnce(ctx)
		if !p.sleep(ctx, delay) {
			p.logger.Info("status poller stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// ForceRefresh performs one fetch immediately, outside the timer cadence. It
// neither resets nor extends the background timer.
func (p *Poller) ForceRefresh(ctx context.Context) error {
	p.logger.Info("force refresh requested")
	snapshot, err := p.fetcher.FetchStates(ctx)
	if err != nil {
		return err
	}
	p.forward(snapshot)
	return nil
}

// Stop requests a graceful exit after the current sleep.
func (p *Poller) Stop() {
	p.stopped.Store(true)
}

// pollOnce performs one fetch and returns the delay before the next attempt.
func (p *Poller) pollOnce(ctx context.Context) time.Duration {
	start := p.clock.Now()
	snapshot, err := p.fetcher.FetchStates(ctx)
	p.metrics.PollDuration.Observe(p.clock.Since(start).Seconds())

	switch {
	case err == nil:
		p.metrics.PollRequests.WithLabelValues("success").Inc()
		p.forward(snapshot)
		return p.interval
	case errors.Is(err, alertsapi.ErrRateLimited):
		p.metrics.PollRequests.WithLabelValues("rate_limited").Inc()
		p.logger.Warn("status endpoint rate limited, backing off", "backoff", p.backoff)
		return p.backoff
	default:
		p.metrics.PollRequests.WithLabelValues("error").Inc()
		p.logger.Error("status fetch failed", "error", err)
		return p.interval
	}
}

func (p *Poller) forward(snapshot domain.RegionSnapshot) {
	p.metrics.ActiveAlerts.Set(float64(snapshot.ActiveCount()))
	p.sink.OnRegionSnapshot(snapshot)
	p.logger.Debug("region snapshot forwarded",
		"regions", len(snapshot), "active", snapshot.ActiveCount())
}

// sleep waits for d on the injected clock. Returns false when ctx was
// cancelled before the wait elapsed.
func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
