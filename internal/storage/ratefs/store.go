// Package ratefs implements file-based storage for the rate cache: one JSON
// document holding every cached rate, rewritten atomically on each save.
package ratefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/karpatel/nivesh/internal/common"
	"github.com/karpatel/nivesh/internal/models"
)

const cacheFileName = "rates.json"

// Store persists the rate cache under a single JSON file.
type Store struct {
	path   string
	logger *common.Logger
}

// NewStore creates a rate cache store rooted at the given directory.
func NewStore(logger *common.Logger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create rate cache path %s: %w", dir, err)
	}

	logger.Info().Str("path", dir).Msg("Rate cache store opened")
	return &Store{
		path:   filepath.Join(dir, cacheFileName),
		logger: logger,
	}, nil
}

// Load reads the full cache. A missing, empty, or corrupt file is a cold
// start: it yields an empty map, never an error.
func (s *Store) Load() (map[string]models.RateEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.RateEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read rate cache %s: %w", s.path, err)
	}

	entries := map[string]models.RateEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Rate cache unreadable, starting cold")
		return map[string]models.RateEntry{}, nil
	}

	return entries, nil
}

// Save writes the full cache durably: temp file in the same directory, then
// rename, so a crash mid-write never clobbers committed data.
func (s *Store) Save(entries map[string]models.RateEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rate cache: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug().Int("entries", len(entries)).Msg("Rate cache saved")
	return nil
}
