package stockdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tickermatch/internal/clients/yahoo"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int
	delay time.Duration
	err   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{calls: make(map[string]int)}
}

func (p *fakeProvider) GetQuote(_ context.Context, symbol string) (*yahoo.Quote, error) {
	p.mu.Lock()
	p.calls[symbol]++
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}

	name := "Quote for " + symbol
	return &yahoo.Quote{Symbol: symbol, Name: &name}, nil
}

func (p *fakeProvider) callCount(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[symbol]
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	loadErr error
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]Entry{}}
}

func (s *memStore) Load() (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Save(entries map[string]Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries = make(map[string]Entry, len(entries))
	for k, v := range entries {
		s.entries[k] = v
	}
	return nil
}

func TestCacheFetchAndFreshHit(t *testing.T) {
	provider := newFakeProvider()
	store := newMemStore()
	cache := NewCache(provider, store, time.Hour, zerolog.Nop())
	cache.Hydrate()

	quote, err := cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 1, provider.callCount("AAPL"))

	// Fresh hit goes straight to memory.
	quote, err = cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 1, provider.callCount("AAPL"))

	// The successful fetch was persisted.
	assert.Equal(t, 1, store.saves)
}

func TestCacheExpiry(t *testing.T) {
	provider := newFakeProvider()
	cache := NewCache(provider, newMemStore(), time.Hour, zerolog.Nop())

	current := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	_, err := cache.Get(context.Background(), "NKE")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount("NKE"))

	// Just inside the TTL: still a hit.
	mu.Lock()
	current = current.Add(59 * time.Minute)
	mu.Unlock()
	_, err = cache.Get(context.Background(), "NKE")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount("NKE"))

	// Past the TTL: exactly one more provider call.
	mu.Lock()
	current = current.Add(2 * time.Minute)
	mu.Unlock()
	_, err = cache.Get(context.Background(), "NKE")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.callCount("NKE"))
}

func TestCacheSingleFlight(t *testing.T) {
	provider := newFakeProvider()
	provider.delay = 50 * time.Millisecond
	cache := NewCache(provider, newMemStore(), time.Hour, zerolog.Nop())

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quote, err := cache.Get(context.Background(), "DIS")
			if err != nil || quote.Symbol != "DIS" {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, 1, provider.callCount("DIS"))
}

func TestCacheProviderFailureNotCached(t *testing.T) {
	provider := newFakeProvider()
	provider.err = errors.New("upstream unavailable")
	store := newMemStore()
	cache := NewCache(provider, store, time.Hour, zerolog.Nop())

	_, err := cache.Get(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, 0, store.saves)

	// The next call retries the provider instead of serving the failure.
	provider.err = nil
	quote, err := cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 2, provider.callCount("AAPL"))
}

func TestCacheHydrateCorruptStore(t *testing.T) {
	provider := newFakeProvider()
	store := newMemStore()
	store.loadErr = errors.New("corrupt snapshot")
	cache := NewCache(provider, store, time.Hour, zerolog.Nop())

	cache.Hydrate()
	assert.Equal(t, 0, cache.Len())

	// The cache still works after degrading to empty.
	store.loadErr = nil
	quote, err := cache.Get(context.Background(), "KO")
	require.NoError(t, err)
	assert.Equal(t, "KO", quote.Symbol)
}

func TestCacheHydrateServesPersistedEntries(t *testing.T) {
	provider := newFakeProvider()
	store := newMemStore()
	name := "Nike Inc"
	store.entries["NKE"] = Entry{
		Quote:     &yahoo.Quote{Symbol: "NKE", Name: &name},
		FetchedAt: time.Now(),
	}

	cache := NewCache(provider, store, time.Hour, zerolog.Nop())
	cache.Hydrate()

	quote, err := cache.Get(context.Background(), "NKE")
	require.NoError(t, err)
	assert.Equal(t, "NKE", quote.Symbol)
	assert.Equal(t, 0, provider.callCount("NKE"))
}

func TestCachePersistFailureNonFatal(t *testing.T) {
	provider := newFakeProvider()
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	cache := NewCache(provider, store, time.Hour, zerolog.Nop())

	quote, err := cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)

	// In-memory cache stays authoritative.
	_, err = cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount("AAPL"))

	assert.Error(t, cache.Flush())
}

func TestCacheFlush(t *testing.T) {
	provider := newFakeProvider()
	store := newMemStore()
	cache := NewCache(provider, store, time.Hour, zerolog.Nop())

	_, err := cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "NKE")
	require.NoError(t, err)

	require.NoError(t, cache.Flush())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}
