package app

import (
	"context"
	"sync"
	"time"

	"github.com/gatewise/accesssim/models"
)

// snapshotEntry holds one cached document snapshot with its load time
type snapshotEntry struct {
	set      *models.PolicySet
	dir      *models.SubjectDirectory
	snap     *models.ContextSnapshot
	loadedAt time.Time
}

// isExpired checks if the cached snapshot has expired
func (e *snapshotEntry) isExpired(ttl time.Duration) bool {
	return time.Since(e.loadedAt) > ttl
}

// CachedSource wraps a DocumentSource with an in-memory TTL cache so a
// busy decision endpoint does not reread files or requery the store on
// every request. A stale read within the TTL window is acceptable:
// policy changes take effect at the next refresh.
// Thread-safe implementation using sync.Mutex
type CachedSource struct {
	mu     sync.Mutex
	inner  DocumentSource
	ttl    time.Duration
	entry  *snapshotEntry
	hits   uint64 // Cache hit counter
	misses uint64 // Cache miss counter
}

// NewCachedSource creates a new CachedSource with the specified TTL
func NewCachedSource(inner DocumentSource, ttl time.Duration) *CachedSource {
	return &CachedSource{inner: inner, ttl: ttl}
}

// Load implements DocumentSource. A load failure is never cached; the
// next call retries the inner source.
func (c *CachedSource) Load(ctx context.Context) (*models.PolicySet, *models.SubjectDirectory, *models.ContextSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && !c.entry.isExpired(c.ttl) {
		c.hits++
		return c.entry.set, c.entry.dir, c.entry.snap, nil
	}
	c.misses++

	set, dir, snap, err := c.inner.Load(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	c.entry = &snapshotEntry{
		set:      set,
		dir:      dir,
		snap:     snap,
		loadedAt: time.Now(),
	}
	return set, dir, snap, nil
}

// Invalidate drops the cached snapshot, forcing a reload on the next Load
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = nil
}

// Stats returns cache hit and miss counters
func (c *CachedSource) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits, c.misses
}
