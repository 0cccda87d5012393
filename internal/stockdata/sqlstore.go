package stockdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/tickermatch/internal/clients/yahoo"
)

const stockCacheSchema = `
CREATE TABLE IF NOT EXISTS stock_cache (
	ticker TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLStore persists the snapshot in SQLite, one row per ticker with a
// msgpack-encoded quote blob and expiration timestamps.
type SQLStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLStore creates a SQLite-backed snapshot store and ensures the
// cache table exists. The ttl determines expires_at on saved rows.
func NewSQLStore(db *sql.DB, ttl time.Duration) (*SQLStore, error) {
	if _, err := db.Exec(stockCacheSchema); err != nil {
		return nil, fmt.Errorf("failed to create stock_cache table: %w", err)
	}
	return &SQLStore{db: db, ttl: ttl}, nil
}

// Load reads all persisted rows, stale ones included.
func (s *SQLStore) Load() (map[string]Entry, error) {
	rows, err := s.db.Query("SELECT ticker, data, fetched_at FROM stock_cache")
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_cache: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]Entry)
	for rows.Next() {
		var ticker string
		var data []byte
		var fetchedAt int64
		if err := rows.Scan(&ticker, &data, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock_cache row: %w", err)
		}

		var quote yahoo.Quote
		if err := msgpack.Unmarshal(data, &quote); err != nil {
			return nil, fmt.Errorf("failed to decode cached quote for %s: %w", ticker, err)
		}

		entries[ticker] = Entry{
			Quote:     &quote,
			FetchedAt: time.Unix(fetchedAt, 0),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock_cache rows: %w", err)
	}

	return entries, nil
}

// Save replaces the persisted snapshot in a single transaction.
func (s *SQLStore) Save(entries map[string]Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM stock_cache"); err != nil {
		return fmt.Errorf("failed to clear stock_cache: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO stock_cache (ticker, data, fetched_at, expires_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for ticker, entry := range entries {
		data, err := msgpack.Marshal(entry.Quote)
		if err != nil {
			return fmt.Errorf("failed to encode quote for %s: %w", ticker, err)
		}

		fetchedAt := entry.FetchedAt.Unix()
		expiresAt := entry.FetchedAt.Add(s.ttl).Unix()
		if _, err := stmt.Exec(ticker, data, fetchedAt, expiresAt); err != nil {
			return fmt.Errorf("failed to insert %s: %w", ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// DeleteExpired removes all rows where expires_at < now.
// Returns the number of rows deleted.
func (s *SQLStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec("DELETE FROM stock_cache WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired rows: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
