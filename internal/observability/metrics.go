package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion core.
type Metrics struct {
	// Channel ingestion metrics.
	MessagesSeen       prometheus.Counter
	EventsForwarded    prometheus.Counter
	EventsSuppressed   prometheus.Counter
	ParseErrors        prometheus.Counter
	CatchupReplayed    prometheus.Counter
	CursorPosition     prometheus.Gauge
	ChannelListening   prometheus.Gauge
	ProcessingDuration prometheus.Histogram

	// Status poller metrics.
	PollRequests *prometheus.CounterVec // labels: outcome={success,rate_limited,error}
	PollDuration prometheus.Histogram
	ActiveAlerts prometheus.Gauge
}

// NewMetrics creates and registers all core metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MessagesSeen,
		m.EventsForwarded,
		m.EventsSuppressed,
		m.ParseErrors,
		m.CatchupReplayed,
		m.CursorPosition,
		m.ChannelListening,
		m.ProcessingDuration,
		m.PollRequests,
		m.PollDuration,
		m.ActiveAlerts,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so parallel
// tests avoid "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "varta",
			Name:      "channel_messages_seen_total",
			Help:      "Total messages received from the channel source, including dropped ones.",
		}),
		EventsForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "varta",
			Name:      "events_forwarded_total",
			Help:      "Total classified events forwarded to the sink.",
		}),
		EventsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "varta",
			Name:      "events_suppressed_total",
			Help:      "Total events forwarded with the suppressible tag.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "varta",
			Name:      "parse_errors_total",
			Help:      "Total channel messages dropped because the payload failed to decode.",
		}),
		CatchupReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "varta",
			Name:      "catchup_messages_total",
			Help:      "Total messages processed during startup gap recovery.",
		}),
		CursorPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "varta",
			Name:      "cursor_position",
			Help:      "Identifier of the last channel message accepted for processing.",
		}),
		ChannelListening: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "varta",
			Name:      "channel_listening",
			Help:      "1 while the live channel subscription is established, 0 otherwise.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "varta",
			Name:      "message_processing_duration_seconds",
			Help:      "Duration of one channel message processing step.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		PollRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "varta",
			Name:      "status_poll_requests_total",
			Help:      "Status endpoint fetches by outcome.",
		}, []string{"outcome"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "varta",
			Name:      "status_poll_duration_seconds",
			Help:      "Status endpoint fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "varta",
			Name:      "active_alert_regions",
			Help:      "Number of regions under alert in the latest snapshot.",
		}),
	}
}
