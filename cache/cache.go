// Package cache holds the last rendered feed and decides when it needs to be
// rebuilt.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is the staleness window after which a cached feed is rebuilt on
// the next read.
const DefaultTTL = 15 * time.Minute

// BuildFunc produces a freshly rendered feed document.
type BuildFunc func(ctx context.Context) (string, error)

// Status is a read-only view of the cache state. A zero LastUpdate means the
// cache was never populated; Age is meaningful only when LastUpdate is set.
type Status struct {
	LastUpdate time.Time
	Age        time.Duration
}

// Cache is the single, process-wide entry for the rendered feed. The
// document and its timestamp are always replaced together, so readers never
// observe one without the other.
type Cache struct {
	build BuildFunc
	ttl   time.Duration
	log   *zap.SugaredLogger
	now   func() time.Time

	// refreshMu collapses concurrent refreshes into one: the loser re-checks
	// freshness after acquiring it and usually finds the winner's result.
	refreshMu sync.Mutex

	mu         sync.RWMutex
	document   string
	lastUpdate time.Time
}

// New creates an empty cache around the given build function.
func New(build BuildFunc, ttl time.Duration, log *zap.SugaredLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		build: build,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// GetOrRefresh returns the cached document, rebuilding it first when the
// cache is empty or older than the staleness window.
func (c *Cache) GetOrRefresh(ctx context.Context) (string, error) {
	if document, ok := c.fresh(); ok {
		return document, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while this one waited for the lock.
	if document, ok := c.fresh(); ok {
		return document, nil
	}

	if err := c.refresh(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.document, nil
}

// ForceRefresh unconditionally rebuilds and replaces the cache entry. It is
// used by the scheduled background refresh and the startup warm-up. On
// failure the previous entry stays intact, stale but available.
func (c *Cache) ForceRefresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refresh(ctx)
}

// Status reports when the cache was last populated and how old it is.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := Status{LastUpdate: c.lastUpdate}
	if !c.lastUpdate.IsZero() {
		status.Age = c.now().Sub(c.lastUpdate)
	}
	return status
}

func (c *Cache) fresh() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastUpdate.IsZero() || c.now().Sub(c.lastUpdate) > c.ttl {
		return "", false
	}
	return c.document, true
}

// refresh builds a new document outside the entry lock and publishes it
// atomically. Callers must hold refreshMu.
func (c *Cache) refresh(ctx context.Context) error {
	document, err := c.build(ctx)
	if err != nil {
		c.log.Errorw("feed rebuild failed, keeping previous entry", "error", err)
		return err
	}

	c.mu.Lock()
	c.document = document
	c.lastUpdate = c.now()
	c.mu.Unlock()

	c.log.Infow("feed cache refreshed", "bytes", len(document))
	return nil
}
