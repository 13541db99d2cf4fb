package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/vartalabs/varta-ingest/internal/domain"
)

// HistoryStore is the durable, newest-first log of processed events.
//
// Append is a full read-modify-write of the backing file and is not safe for
// concurrent writers. The system has exactly one writer — the channel
// ingestor's processing step — and that must stay true.
type HistoryStore struct {
	path   string
	logger *slog.Logger
}

// NewHistoryStore creates a history store backed by the given file path.
func NewHistoryStore(path string, logger *slog.Logger) *HistoryStore {
	return &HistoryStore{path: path, logger: logger}
}

// Append prepends a record to the log. An unreadable existing file is treated
// as empty rather than blocking new events.
func (s *HistoryStore) Append(record domain.HistoryRecord) error {
	records := s.load()
	records = append([]domain.HistoryRecord{record}, records...)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// LoadAll returns the stored records newest-first. Load failures degrade to
// an empty history.
func (s *HistoryStore) LoadAll() []domain.HistoryRecord {
	return s.load()
}

// Clear truncates the log to empty. This is the only deletion path.
func (s *HistoryStore) Clear() error {
	data, err := json.Marshal([]domain.HistoryRecord{})
	if err != nil {
		return fmt.Errorf("marshal empty history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("truncate history file: %w", err)
	}
	return nil
}

func (s *HistoryStore) load() []domain.HistoryRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("history file unreadable, treating as empty", "path", s.path, "error", err)
		}
		return nil
	}

	var records []domain.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("history file corrupt, treating as empty", "path", s.path, "error", err)
		return nil
	}
	return records
}
