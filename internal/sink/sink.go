// Package sink holds the concrete consumers of the ingestion core's output:
// a structured-log sink and the in-memory state the operator API reads. The
// presentation layer proper lives outside this service.
package sink

import (
	"log/slog"

	"github.com/vartalabs/varta-ingest/internal/domain"
)

// Fanout delivers every callback to each member sink in order.
type Fanout []domain.Sink

func (f Fanout) OnAlertEvent(event domain.AlertEvent, verdict domain.Verdict) {
	for _, s := range f {
		s.OnAlertEvent(event, verdict)
	}
}

func (f Fanout) OnRegionSnapshot(snapshot domain.RegionSnapshot) {
	for _, s := range f {
		s.OnRegionSnapshot(snapshot)
	}
}

func (f Fanout) OnHighlightRequest(regions []domain.RegionCode) {
	for _, s := range f {
		s.OnHighlightRequest(regions)
	}
}

// Log writes every delivered event and snapshot to the structured log. It
// stands in for the original developer console.
type Log struct {
	Logger *slog.Logger
}

func (l *Log) OnAlertEvent(event domain.AlertEvent, verdict domain.Verdict) {
	l.Logger.Info("alert event",
		"id", event.ID,
		"severity", verdict.Severity,
		"title", verdict.Title,
		"level", event.Level,
		"regions", event.Regions,
		"suppressible", event.Suppressible(),
	)
}

func (l *Log) OnRegionSnapshot(snapshot domain.RegionSnapshot) {
	l.Logger.Info("region snapshot", "regions", len(snapshot), "active", snapshot.ActiveCount())
}

func (l *Log) OnHighlightRequest(regions []domain.RegionCode) {
	l.Logger.Info("highlight request", "regions", regions)
}
