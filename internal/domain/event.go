package domain

import (
	"strings"
	"time"
)

// Severity levels carried in the channel payload.
const (
	LevelLow      = "LOW"
	LevelMedium   = "MEDIUM"
	LevelHigh     = "HIGH"
	LevelCritical = "CRITICAL"
)

// StatusIgnore marks a payload as suppressible: stored and forwarded, but
// withheld from the default view.
const StatusIgnore = "ignore"

// RawMessage is an unprocessed message from the channel source.
type RawMessage struct {
	ID        int64
	Text      string
	Timestamp time.Time
}

// AlertEvent is one parsed channel notification.
type AlertEvent struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status,omitempty"`
	Level        string    `json:"level,omitempty"` // preserved verbatim, including unrecognized values
	Regions      []string  `json:"regions,omitempty"`
	Summary      string    `json:"summary"`
	OriginalText string    `json:"original_text,omitempty"`
}

// Suppressible reports whether the event is tagged for suppression.
// The status comparison is case-insensitive.
func (e AlertEvent) Suppressible() bool {
	return strings.EqualFold(e.Status, StatusIgnore)
}

// RegionSnapshot maps a source-native region name to its current alert state.
// Each poll replaces the whole map; there is no incremental diff.
type RegionSnapshot map[string]bool

// ActiveCount returns the number of regions currently under alert.
func (s RegionSnapshot) ActiveCount() int {
	n := 0
	for _, active := range s {
		if active {
			n++
		}
	}
	return n
}

// HistoryRecord is the durable form of an event plus its display verdict.
type HistoryRecord struct {
	Title        string   `json:"title"`
	Text         string   `json:"text"`
	Footer       string   `json:"footer"`
	Time         string   `json:"time"`
	BgColor      string   `json:"bg_color"`
	OriginalText string   `json:"original_text,omitempty"`
	Regions      []string `json:"regions,omitempty"`
	Status       string   `json:"status,omitempty"`
}

// Suppressible reports whether the stored record carries the suppression tag.
func (r HistoryRecord) Suppressible() bool {
	return strings.EqualFold(r.Status, StatusIgnore)
}

// NewHistoryRecord builds the durable record for an event and its verdict.
// Footer carries the origin date, Time the origin wall-clock time.
func NewHistoryRecord(event AlertEvent, verdict Verdict) HistoryRecord {
	return HistoryRecord{
		Title:        verdict.Title,
		Text:         event.Summary,
		Footer:       event.Timestamp.Format("02.01.2006"),
		Time:         event.Timestamp.Format("15:04:05"),
		BgColor:      verdict.Class,
		OriginalText: event.OriginalText,
		Regions:      event.Regions,
		Status:       event.Status,
	}
}

// Sink receives the immutable outputs of the ingestion core. The presentation
// layer implements it; the core never reads anything back from it.
type Sink interface {
	// OnAlertEvent delivers one classified channel event.
	OnAlertEvent(event AlertEvent, verdict Verdict)

	// OnRegionSnapshot delivers a full replacement of the per-region alert map.
	OnRegionSnapshot(snapshot RegionSnapshot)

	// OnHighlightRequest delivers the canonical region codes resolved from an
	// event's free-text region names.
	OnHighlightRequest(regions []RegionCode)
}
