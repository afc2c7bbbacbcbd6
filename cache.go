// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucache

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
)

// Default cache limits.
const (
	// DefaultMaxBytes is the default resident GPU memory budget (256 MB).
	DefaultMaxBytes = 256 * 1024 * 1024

	// DefaultMaxResources is the default maximum resident resource count.
	DefaultMaxResources = 4096
)

// ResourceCache pools GPU resources for reuse across frames.
//
// The cache holds every resource created through its ResourceProvider,
// whether or not callers still reference it. A resource whose usage and
// command-buffer refs have both dropped to zero is purgeable: it sits in a
// timestamp-ordered queue from which it can either be handed back out for
// a matching key or evicted when the cache exceeds its budget. Evicting a
// resource revokes cache ownership, which frees the native memory once no
// other reference domain holds it.
//
// The cache tracks its bookkeeping (resource positions, timestamps, byte
// totals) under a single mutex. It never reaches into a resource's
// reference counters beyond the narrow cache-only surface, and resources
// never call back into the cache.
//
// ResourceCache is safe for concurrent use and must not be copied after
// creation.
type ResourceCache struct {
	mu sync.Mutex

	// resources indexes cache-owned resources by key for reuse lookups.
	resources map[ResourceKey][]Res

	// purgeable holds idle resources, oldest timestamp at the root.
	purgeable purgeableQueue

	// inUse holds resources with outstanding refs. Each resource's cache
	// index points into this array; removal is swap-delete.
	inUse []Res

	maxResources int
	maxBytes     uint64
	totalBytes   uint64

	// tick is the monotonic recency counter stamped onto resources.
	// 64 bits wide so it cannot wrap within a process lifetime.
	tick uint64

	shutdown bool

	// Statistics (atomic for lock-free reads).
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// CacheStats contains resource cache statistics.
type CacheStats struct {
	// ResourceCount is the number of resident resources.
	ResourceCount int

	// PurgeableCount is the number of idle resources eligible for
	// eviction or reuse.
	PurgeableCount int

	// TotalBytes is the resident GPU memory in bytes.
	TotalBytes uint64

	// MaxBytes is the byte budget (0 = unlimited).
	MaxBytes uint64

	// MaxResources is the resource count budget (0 = unlimited).
	MaxResources int

	// Hits is the number of reuse hits.
	Hits uint64

	// Misses is the number of reuse misses.
	Misses uint64

	// Evictions is the number of resources evicted over budget.
	Evictions uint64
}

// String returns a human-readable string of cache stats.
func (s CacheStats) String() string {
	return fmt.Sprintf("ResourceCache[%d resources (%d purgeable), %d/%d MB, %d hits, %d misses, %d evictions]",
		s.ResourceCount,
		s.PurgeableCount,
		s.TotalBytes/(1024*1024),
		s.MaxBytes/(1024*1024),
		s.Hits,
		s.Misses,
		s.Evictions)
}

// NewResourceCache creates a cache with the given budgets. A maxResources
// of 0 means unlimited count; a maxBytes of 0 means unlimited bytes.
// Budgets are soft limits: they only ever evict purgeable resources, so
// the cache can exceed them while callers hold references.
func NewResourceCache(maxResources int, maxBytes uint64) *ResourceCache {
	return &ResourceCache{
		resources:    make(map[ResourceKey][]Res),
		maxResources: maxResources,
		maxBytes:     maxBytes,
	}
}

// FindAndRef returns a pooled resource matching key, with a fresh usage
// ref handed out through the cache-only path. A non-shareable (scratch)
// key only matches idle resources; a shareable key also matches resources
// other callers still hold.
//
// Returns (nil, false) when nothing matches; the caller then creates the
// resource, normally through ResourceProvider.FindOrCreate.
func (c *ResourceCache) FindAndRef(key ResourceKey) (Res, bool) {
	if !key.IsValid() {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return nil, false
	}
	c.processReturns()

	var found Res
	for _, cand := range c.resources[key] {
		if cand.resource().isPurgeable() {
			found = cand
			break
		}
		if key.Shareable() {
			found = cand
			break
		}
	}
	if found == nil {
		c.misses.Add(1)
		return nil, false
	}

	r := found.resource()
	if c.purgeable.contains(found) {
		heap.Remove(&c.purgeable, r.cacheIndex)
		c.addToInUse(found)
	}
	// Not in the queue: the resource is in the in-use array. It may have
	// gone idle after the processReturns sweep above (a holder's Unref
	// takes only the per-resource mutex, never c.mu), in which case its
	// index already points at its in-use slot and can stay as is.
	r.refCacheOnly()
	c.tick++
	r.timestamp = c.tick
	c.hits.Add(1)
	Logger().Debug("resource cache hit", "kind", key.Kind().String())
	return found, true
}

// Purge evicts purgeable resources until the cache is back under its
// budgets. Callers normally never need this; insertions purge as needed.
func (c *ResourceCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processReturns()
	c.purgeAsNeeded()
}

// PurgeAll evicts every purgeable resource regardless of budget.
// Resources still referenced by callers or in-flight command buffers stay
// resident.
func (c *ResourceCache) PurgeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processReturns()
	for c.purgeable.Len() > 0 {
		c.evictOldest()
	}
}

// Shutdown revokes cache ownership of every resident resource. Idle
// resources are freed immediately; resources with outstanding usage or
// command-buffer refs are freed when their last ref drops. The cache is
// unusable afterwards.
func (c *ResourceCache) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return
	}
	c.shutdown = true
	c.processReturns()
	count := c.purgeable.Len() + len(c.inUse)
	for c.purgeable.Len() > 0 {
		res := heap.Pop(&c.purgeable).(Res)
		res.resource().removedFromCacheRef()
	}
	for _, res := range c.inUse {
		res.resource().removedFromCacheRef()
	}
	c.clearLocked()
	Logger().Info("resource cache shut down", "resources", count)
}

// Abandon is the context-teardown path: every resident resource is freed
// immediately, regardless of outstanding references. The caller must
// guarantee the device is idle; after a device loss the native handles are
// dead anyway. The cache is unusable afterwards.
func (c *ResourceCache) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return
	}
	c.shutdown = true
	c.processReturns()
	for _, res := range c.inUse {
		Logger().Warn("abandoning resource with outstanding refs",
			"kind", res.resource().key.Kind().String())
	}
	for c.purgeable.Len() > 0 {
		res := heap.Pop(&c.purgeable).(Res)
		res.resource().abandoned()
	}
	for _, res := range c.inUse {
		res.resource().abandoned()
	}
	c.clearLocked()
}

// Stats returns cache statistics.
func (c *ResourceCache) Stats() CacheStats {
	c.mu.Lock()
	c.processReturns()
	stats := CacheStats{
		ResourceCount:  c.purgeable.Len() + len(c.inUse),
		PurgeableCount: c.purgeable.Len(),
		TotalBytes:     c.totalBytes,
		MaxBytes:       c.maxBytes,
		MaxResources:   c.maxResources,
	}
	c.mu.Unlock()
	stats.Hits = c.hits.Load()
	stats.Misses = c.misses.Load()
	stats.Evictions = c.evictions.Load()
	return stats
}

// insert adopts a freshly created resource. The resource arrives with its
// creation usage ref still held by the caller, so it starts in the in-use
// array. Called by the ResourceProvider.
func (c *ResourceCache) insert(res Res) {
	r := res.resource()
	if !r.key.IsValid() {
		panic("gpucache: inserting a resource without a valid key")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		panic("gpucache: insert after cache shutdown")
	}
	r.registerWithCache()
	c.tick++
	r.timestamp = c.tick
	c.addToInUse(res)
	c.resources[r.key] = append(c.resources[r.key], res)
	c.totalBytes += r.size
	c.processReturns()
	c.purgeAsNeeded()
}

// processReturns sweeps the in-use array for resources whose refs have all
// dropped since the last cache operation and moves them into the purgeable
// queue. The core never calls back into the cache, so this sweep is how
// idle resources become visible. Caller must hold c.mu.
func (c *ResourceCache) processReturns() {
	for i := 0; i < len(c.inUse); {
		res := c.inUse[i]
		if !res.resource().isPurgeable() {
			i++
			continue
		}
		c.removeFromInUse(res)
		heap.Push(&c.purgeable, res)
	}
}

// purgeAsNeeded evicts oldest purgeable resources while over budget.
// Caller must hold c.mu.
func (c *ResourceCache) purgeAsNeeded() {
	for c.overBudget() && c.purgeable.Len() > 0 {
		c.evictOldest()
	}
}

func (c *ResourceCache) overBudget() bool {
	count := c.purgeable.Len() + len(c.inUse)
	if c.maxResources > 0 && count > c.maxResources {
		return true
	}
	if c.maxBytes > 0 && c.totalBytes > c.maxBytes {
		return true
	}
	return false
}

// evictOldest pops the least recently used purgeable resource and revokes
// cache ownership, freeing its native memory. Caller must hold c.mu; the
// disposal hook cannot deadlock because resources never lock the cache.
func (c *ResourceCache) evictOldest() {
	res := heap.Pop(&c.purgeable).(Res)
	r := res.resource()
	c.removeFromMap(res)
	c.totalBytes -= r.size
	c.evictions.Add(1)
	Logger().Debug("evicting resource",
		"kind", r.key.Kind().String(),
		"bytes", r.size)
	r.removedFromCacheRef()
}

// addToInUse appends to the in-use array and records the index.
// Caller must hold c.mu.
func (c *ResourceCache) addToInUse(res Res) {
	res.resource().cacheIndex = len(c.inUse)
	c.inUse = append(c.inUse, res)
}

// removeFromInUse swap-deletes from the in-use array, fixing the index of
// the resource that takes the vacated slot. Caller must hold c.mu.
func (c *ResourceCache) removeFromInUse(res Res) {
	i := res.resource().cacheIndex
	last := len(c.inUse) - 1
	c.inUse[i] = c.inUse[last]
	c.inUse[i].resource().cacheIndex = i
	c.inUse[last] = nil
	c.inUse = c.inUse[:last]
	res.resource().cacheIndex = -1
}

// removeFromMap drops the resource from the key index.
// Caller must hold c.mu.
func (c *ResourceCache) removeFromMap(res Res) {
	key := res.resource().key
	list := c.resources[key]
	for i, cand := range list {
		if cand == res {
			last := len(list) - 1
			list[i] = list[last]
			list[last] = nil
			list = list[:last]
			break
		}
	}
	if len(list) == 0 {
		delete(c.resources, key)
	} else {
		c.resources[key] = list
	}
}

// clearLocked drops all cache structures. Caller must hold c.mu.
func (c *ResourceCache) clearLocked() {
	c.resources = make(map[ResourceKey][]Res)
	c.purgeable.items = nil
	c.inUse = nil
	c.totalBytes = 0
}
