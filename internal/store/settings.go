package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/vartalabs/varta-ingest/internal/domain"
)

// settingsFile is the wire shape of the persisted user settings.
type settingsFile struct {
	Region domain.RegionCode `json:"region,omitempty"`
}

// SettingsStore holds the user's selected home region, mirrored to a durable
// file. There is a single writer (the settings surface); readers take a
// snapshot per event, so the value never changes within the processing of one
// message.
type SettingsStore struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	region domain.RegionCode
}

// NewSettingsStore creates the store and loads the persisted value. A missing
// or unreadable file means "unset".
func NewSettingsStore(path string, logger *slog.Logger) *SettingsStore {
	s := &SettingsStore{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("settings file unreadable, region unset", "path", path, "error", err)
		}
		return s
	}

	var f settingsFile
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Warn("settings file corrupt, region unset", "path", path, "error", err)
		return s
	}
	s.region = f.Region
	return s
}

// Region returns the current home region snapshot, or empty when unset.
func (s *SettingsStore) Region() domain.RegionCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.region
}

// SetRegion updates the home region and persists it. An empty code clears the
// setting.
func (s *SettingsStore) SetRegion(code domain.RegionCode) error {
	data, err := json.Marshal(settingsFile{Region: code})
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	s.mu.Lock()
	s.region = code
	s.mu.Unlock()
	return nil
}
