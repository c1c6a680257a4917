package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/prospector/internal/model"
)

// MemoryCache is a process-local cache for development and tests. Entries
// expire lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is injectable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	records   []model.CompanyRecord
	expiresAt time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]model.CompanyRecord, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.records, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, records []model.CompanyRecord, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		records:   records,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}
