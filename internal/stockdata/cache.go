package stockdata

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/aristath/tickermatch/internal/clients/yahoo"
)

// Cache is a TTL cache of stock attributes. Fresh hits are served from
// memory; misses and expired entries go through the provider with one
// in-flight fetch per ticker. Successful fetches are snapshotted to the
// store; provider failures are never cached.
type Cache struct {
	provider Provider
	store    Store
	ttl      time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry

	group     singleflight.Group
	persistMu sync.Mutex

	log zerolog.Logger
}

// NewCache creates a cache. Call Hydrate before serving lookups and
// Flush at shutdown.
func NewCache(provider Provider, store Store, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		provider: provider,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]Entry),
		log:      log.With().Str("component", "stock_cache").Logger(),
	}
}

// Hydrate loads the persisted snapshot. A corrupt or unreadable store is
// logged and degrades to an empty cache.
func (c *Cache) Hydrate() {
	entries, err := c.store.Load()
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to load cache snapshot, starting empty")
		return
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.log.Info().Int("entries", len(entries)).Msg("Hydrated stock cache")
}

// Get returns the attributes for a ticker, fetching through the provider
// when the cached entry is missing or expired. Concurrent callers for the
// same ticker share one provider call. Provider errors are returned to
// every waiting caller and nothing is cached.
func (c *Cache) Get(ctx context.Context, ticker string) (*yahoo.Quote, error) {
	if quote, ok := c.fresh(ticker); ok {
		return quote, nil
	}

	result, err, _ := c.group.Do(ticker, func() (interface{}, error) {
		// A concurrent flight may have refreshed the entry already.
		if quote, ok := c.fresh(ticker); ok {
			return quote, nil
		}

		quote, err := c.provider.GetQuote(ctx, ticker)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[ticker] = Entry{Quote: quote, FetchedAt: c.now()}
		c.mu.Unlock()

		if err := c.persist(); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to persist cache snapshot")
		}

		return quote, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*yahoo.Quote), nil
}

// fresh returns the cached quote if it exists and has not expired.
func (c *Cache) fresh(ticker string) (*yahoo.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[ticker]
	if !ok || c.now().Sub(entry.FetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.Quote, true
}

// Len returns the number of cached entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush persists the current snapshot. Call at shutdown.
func (c *Cache) Flush() error {
	return c.persist()
}

// persist writes a snapshot of the in-memory entries to the store.
// Writes are serialized so snapshots never interleave.
func (c *Cache) persist() error {
	c.mu.RLock()
	snapshot := make(map[string]Entry, len(c.entries))
	for ticker, entry := range c.entries {
		snapshot[ticker] = entry
	}
	c.mu.RUnlock()

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	return c.store.Save(snapshot)
}
