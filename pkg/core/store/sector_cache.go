// Package store holds request-scoped caches shared by pipeline workers.
package store

import (
	"sync"
	"sync/atomic"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/models"
)

// CacheKey identifies one aggregation of one state.
type CacheKey struct {
	State models.StateKind
	Level hierarchy.Level
}

// SectorCache memoizes aggregated views per state and level for the length of
// one run. Views are copied on the way in and out so callers cannot alias
// cached sectors.
type SectorCache struct {
	mu      sync.RWMutex
	entries map[CacheKey][]hierarchy.AggregatedView
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewSectorCache creates an empty cache.
func NewSectorCache() *SectorCache {
	return &SectorCache{entries: make(map[CacheKey][]hierarchy.AggregatedView)}
}

// Get returns a copy of the cached views for key.
func (c *SectorCache) Get(key CacheKey) ([]hierarchy.AggregatedView, bool) {
	c.mu.RLock()
	views, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return cloneViews(views), true
}

// Put stores a copy of views under key, replacing any previous entry.
func (c *SectorCache) Put(key CacheKey, views []hierarchy.AggregatedView) {
	cp := cloneViews(views)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cp
}

// GetOrCompute returns the cached views for key, computing and storing them
// on a miss. Concurrent misses may compute twice; the last Put wins and both
// results are equal because compute is pure.
func (c *SectorCache) GetOrCompute(key CacheKey, compute func() []hierarchy.AggregatedView) []hierarchy.AggregatedView {
	if views, ok := c.Get(key); ok {
		return views
	}
	views := compute()
	c.Put(key, views)
	return cloneViews(views)
}

// Invalidate drops every entry of state.
func (c *SectorCache) Invalidate(state models.StateKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.State == state {
			delete(c.entries, k)
		}
	}
}

// Reset drops every entry and the hit counters.
func (c *SectorCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey][]hierarchy.AggregatedView)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns the hit and miss counts since the last Reset.
func (c *SectorCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func cloneViews(in []hierarchy.AggregatedView) []hierarchy.AggregatedView {
	if in == nil {
		return nil
	}
	out := make([]hierarchy.AggregatedView, len(in))
	for i, v := range in {
		v.Hospitals = append([]string{}, v.Hospitals...)
		v.Internation = models.CloneSectors(v.Internation)
		v.Assistance = models.CloneSectors(v.Assistance)
		out[i] = v
	}
	return out
}
