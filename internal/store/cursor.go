// Package store handles the durable files of the ingestion core: the channel
// cursor, the event history log, and the user settings. Every load failure
// degrades to "absent" so the process keeps running without its history.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// cursorFile is the wire shape of the persisted cursor.
type cursorFile struct {
	LastMessageID int64 `json:"last_message_id"`
}

// CursorStore persists the identifier of the last processed channel message.
type CursorStore struct {
	path   string
	logger *slog.Logger
}

// NewCursorStore creates a cursor store backed by the given file path.
func NewCursorStore(path string, logger *slog.Logger) *CursorStore {
	return &CursorStore{path: path, logger: logger}
}

// Load reads the persisted cursor. A missing or unreadable file is reported
// as absent, not as an error: the ingestor then starts without catch-up.
func (s *CursorStore) Load() (int64, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cursor file unreadable, treating as absent", "path", s.path, "error", err)
		}
		return 0, false
	}

	var f cursorFile
	if err := json.Unmarshal(data, &f); err != nil {
		s.logger.Warn("cursor file corrupt, treating as absent", "path", s.path, "error", err)
		return 0, false
	}
	return f.LastMessageID, true
}

// Save writes the cursor synchronously. Called once per accepted message,
// before the payload is parsed.
func (s *CursorStore) Save(id int64) error {
	data, err := json.Marshal(cursorFile{LastMessageID: id})
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cursor file: %w", err)
	}
	return nil
}
