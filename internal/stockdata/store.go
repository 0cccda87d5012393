// Package stockdata caches stock attributes fetched from a financial data
// provider, backed by a durable snapshot store.
package stockdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/tickermatch/internal/clients/yahoo"
)

// Provider fetches stock attributes for a ticker.
type Provider interface {
	GetQuote(ctx context.Context, symbol string) (*yahoo.Quote, error)
}

// Entry is one cached quote with its fetch timestamp.
type Entry struct {
	Quote     *yahoo.Quote `json:"quote"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Store persists cache snapshots between process runs.
type Store interface {
	// Load returns the persisted snapshot. A missing snapshot is not an
	// error and yields an empty map.
	Load() (map[string]Entry, error)
	// Save replaces the persisted snapshot.
	Save(entries map[string]Entry) error
}

// FileStore persists the snapshot as a single JSON file keyed by ticker.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot file. A missing file yields an empty map.
func (s *FileStore) Load() (map[string]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return entries, nil
}

// Save writes the snapshot file, creating the parent directory if needed.
func (s *FileStore) Save(entries map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
