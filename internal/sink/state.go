package sink

import (
	"sync"

	"github.com/vartalabs/varta-ingest/internal/domain"
)

// State is the sink the operator API reads: the latest region snapshot, the
// current highlight set, and the event feed, newest first. Suppressible
// events are retained but withheld from the default view until the caller
// asks for them.
type State struct {
	mu         sync.RWMutex
	records    []domain.HistoryRecord
	snapshot   domain.RegionSnapshot
	highlights []domain.RegionCode
}

// NewState creates an empty state sink.
func NewState() *State {
	return &State{}
}

// ReplayHistory seeds the feed from durable records, newest first. Called
// once at startup, before any live event arrives.
func (s *State) ReplayHistory(records []domain.HistoryRecord) {
	store := make([]domain.HistoryRecord, len(records))
	copy(store, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = store
}

func (s *State) OnAlertEvent(event domain.AlertEvent, verdict domain.Verdict) {
	record := domain.NewHistoryRecord(event, verdict)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]domain.HistoryRecord{record}, s.records...)
}

func (s *State) OnRegionSnapshot(snapshot domain.RegionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

func (s *State) OnHighlightRequest(regions []domain.RegionCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights = regions
}

// Events returns the feed newest-first. Suppressible events are included only
// when the visibility toggle is on.
func (s *State) Events(includeSuppressed bool) []domain.HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.HistoryRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.Suppressible() && !includeSuppressed {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Snapshot returns the latest per-region alert map, or nil before the first
// successful poll.
func (s *State) Snapshot() domain.RegionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(domain.RegionSnapshot, len(s.snapshot))
	for name, active := range s.snapshot {
		out[name] = active
	}
	if len(out) == 0 && s.snapshot == nil {
		return nil
	}
	return out
}

// Highlights returns the region codes of the most recent highlight request.
func (s *State) Highlights() []domain.RegionCode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RegionCode, len(s.highlights))
	copy(out, s.highlights)
	return out
}

// Clear empties the event feed. Mirrors the operator's history clear.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}
