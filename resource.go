// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucache

import (
	"sync"
	"sync/atomic"
)

// Gpu identifies the backend device that owns a Resource's native objects.
// Implementations live in backend packages (see backend/native); the core
// only holds the reference so a resource knows its owning device and can be
// marked destroyed when the reference is cleared at disposal.
type Gpu interface {
	// BackendName reports which native API the device drives
	// (e.g. "wgpu-hal").
	BackendName() string
}

// Disposer frees a resource's native GPU objects.
//
// FreeGpuData is invoked exactly once, after the resource's last reference
// in every domain has been dropped and outside the internal unref lock.
// Implementations may assume no further ref or unref calls arrive once
// FreeGpuData begins.
type Disposer interface {
	FreeGpuData()
}

// Res is implemented by every concrete resource type. It is satisfied by
// embedding *Resource; the unexported method seals the interface so resource
// types cannot be forged outside a backend's constructor.
type Res interface {
	resource() *Resource
}

// Resource is the shared lifetime state of one pooled GPU object.
//
// A resource is alive in up to three independent reference domains:
//
//   - Usage refs: callers actively using the resource (bound for a draw).
//   - Command-buffer refs: previously submitted, not-yet-completed GPU work
//     that still touches the resource's memory.
//   - Cache ownership: the pooling ResourceCache's hold on the resource,
//     revoked exactly once when the resource is evicted or the cache is
//     shut down.
//
// The native free hook fires exactly once, when all three domains have
// reached zero. The decrement-and-check step for every domain runs under a
// single per-resource mutex so that two goroutines dropping the last usage
// ref and the last command-buffer ref concurrently cannot both conclude
// they are responsible for disposal.
//
// Concrete resource types embed *Resource and implement Disposer:
//
//	type Texture struct {
//	    *gpucache.Resource
//	    // ...
//	}
//
//	func (t *Texture) FreeGpuData() { /* release native handles */ }
//
// Resource must not be copied after creation.
type Resource struct {
	// unrefMu serializes "decrement, test for zero, decide to dispose"
	// across usage refs, command-buffer refs, and cache ownership. Without
	// it, the last usage ref and the last command-buffer ref could be
	// dropped on different goroutines with both observing all counters at
	// zero and both dispatching disposal.
	unrefMu sync.Mutex

	usageRefs  atomic.Int32
	cmdBufRefs atomic.Int32

	// gpu is cleared exactly once, by internalDispose. A nil gpu marks the
	// resource permanently dead.
	gpu       Gpu
	destroyed atomic.Bool

	disposer Disposer

	// size is the native memory footprint in bytes, fixed at creation.
	size uint64

	// key identifies interchangeable resources for cache reuse. Assigned
	// only by the provisioning path (ResourceProvider).
	key ResourceKey

	// Guarded by unrefMu.
	cacheOwned       bool
	removedFromCache bool

	// Cache bookkeeping, owned and mutated exclusively by the
	// ResourceCache under its own lock. An index into the purgeable heap
	// while the resource is purgeable, or into the in-use array while it
	// is not. The resource stores these but never interprets them.
	cacheIndex int
	timestamp  uint64
}

// NewResource creates the shared lifetime state for a concrete resource
// type. The caller (typically a backend constructor) passes itself as the
// disposer and reports the native memory footprint in bytes.
//
// The new resource starts with one usage ref, held by the creator. It is
// not yet cache-owned; a resource that is never inserted into a cache is
// freed when its last reference drops.
func NewResource(gpu Gpu, disposer Disposer, size uint64) *Resource {
	r := &Resource{
		gpu:        gpu,
		disposer:   disposer,
		size:       size,
		cacheIndex: -1,
	}
	r.usageRefs.Store(1)
	return r
}

func (r *Resource) resource() *Resource { return r }

// Ref adds a usage ref.
//
// Only the cache may create the first usage ref of an idle resource, so Ref
// requires that at least one usage ref is already held; this guarantees the
// resource cannot be disposed concurrently with a legitimate Ref. Calling
// Ref on a resource with no usage refs panics.
func (r *Resource) Ref() {
	if r.usageRefs.Load() < 1 {
		panic("gpucache: Ref on a resource with no usage refs")
	}
	r.usageRefs.Add(1)
}

// Unref removes a usage ref. If this was the last reference in every
// domain, the resource's native memory is freed before Unref returns.
func (r *Resource) Unref() {
	shouldFree := false
	r.unrefMu.Lock()
	n := r.usageRefs.Add(-1)
	if n < 0 {
		r.unrefMu.Unlock()
		panic("gpucache: Unref without a matching Ref")
	}
	if n == 0 {
		shouldFree = r.noRefsRemain()
	}
	r.unrefMu.Unlock()
	if shouldFree {
		r.internalDispose()
	}
}

// RefCommandBuffer adds a command-buffer ref. Unlike Ref it has no
// existing-ref precondition: the submission machinery may hold the only
// reference to a resource whose usage refs have already dropped.
func (r *Resource) RefCommandBuffer() {
	r.cmdBufRefs.Add(1)
}

// UnrefCommandBuffer removes a command-buffer ref, typically when the GPU
// signals completion of the submission that took it. If this was the last
// reference in every domain, the resource is freed before the call returns.
func (r *Resource) UnrefCommandBuffer() {
	shouldFree := false
	r.unrefMu.Lock()
	n := r.cmdBufRefs.Add(-1)
	if n < 0 {
		r.unrefMu.Unlock()
		panic("gpucache: UnrefCommandBuffer without a matching RefCommandBuffer")
	}
	if n == 0 {
		shouldFree = r.noRefsRemain()
	}
	r.unrefMu.Unlock()
	if shouldFree {
		r.internalDispose()
	}
}

// WasDestroyed reports whether the resource's native memory has been freed.
// Once true, no further ref, unref, or cache activity is valid.
func (r *Resource) WasDestroyed() bool {
	return r.destroyed.Load()
}

// Key returns the resource's identity key. The zero key marks a one-off
// resource that is never returned to a cache.
func (r *Resource) Key() ResourceKey {
	return r.key
}

// GpuMemorySize returns the native memory footprint in bytes, as reported
// at creation.
func (r *Resource) GpuMemorySize() uint64 {
	return r.size
}

// setKey is called only by the ResourceProvider, before the resource is
// inserted into the cache.
func (r *Resource) setKey(key ResourceKey) {
	r.key = key
}

// refCacheOnly adds a usage ref without the existing-ref precondition of
// Ref. Only the cache may use it, to hand out the first usage ref of an
// idle (purgeable) resource being reused.
func (r *Resource) refCacheOnly() {
	r.usageRefs.Add(1)
}

// registerWithCache records the cache as the resource's owner. Called once,
// when the cache adopts a freshly created resource.
func (r *Resource) registerWithCache() {
	r.unrefMu.Lock()
	defer r.unrefMu.Unlock()
	if r.cacheOwned || r.removedFromCache {
		panic("gpucache: resource registered with a cache twice")
	}
	r.cacheOwned = true
}

// removedFromCacheRef revokes cache ownership. Cache ownership is the
// implicit third reference domain: revoking it participates in the same
// guarded last-reference decision as the two counters, and triggers
// disposal if both counters are already zero.
//
// Called exactly once per resource, when the cache evicts it or is shut
// down; a second call panics. If the resource still has usage or
// command-buffer refs, it is freed later, when the last of those drops.
func (r *Resource) removedFromCacheRef() {
	r.dropCacheOwnership(false)
}

// abandoned is the context-teardown path: ownership is revoked and the
// native memory freed immediately, regardless of outstanding refs. Callers
// must guarantee no in-flight GPU work still touches the resource.
func (r *Resource) abandoned() {
	r.dropCacheOwnership(true)
}

func (r *Resource) dropCacheOwnership(force bool) {
	shouldFree := false
	r.unrefMu.Lock()
	if r.removedFromCache {
		r.unrefMu.Unlock()
		panic("gpucache: removedFromCache called twice on one resource")
	}
	r.removedFromCache = true
	r.cacheOwned = false
	shouldFree = force || r.noRefsRemain()
	r.unrefMu.Unlock()
	if shouldFree {
		r.internalDispose()
	}
}

// noRefsRemain reports whether every reference domain has reached zero.
// Caller must hold unrefMu; that is what makes the cross-domain check
// atomic with respect to concurrent decrements.
func (r *Resource) noRefsRemain() bool {
	return !r.cacheOwned &&
		r.usageRefs.Load() == 0 &&
		r.cmdBufRefs.Load() == 0
}

// isPurgeable reports whether the resource is idle: no usage refs and no
// command-buffer refs. A purgeable, cache-owned resource may be reused or
// evicted at the cache's discretion.
//
// The answer is only stable while the cache prevents new cache-only refs,
// i.e. under the cache's own lock.
func (r *Resource) isPurgeable() bool {
	return r.usageRefs.Load() == 0 && r.cmdBufRefs.Load() == 0
}

// internalDispose frees the native memory. Runs at most once, outside
// unrefMu so the lock is not held across a potentially expensive native
// call.
//
// The destroyed swap is what makes "at most once" hold across the forced
// teardown path: abandoned() disposes immediately even with outstanding
// refs, and the holder's eventual last Unref reaches here again.
func (r *Resource) internalDispose() {
	if r.destroyed.Swap(true) {
		return
	}
	if r.disposer != nil {
		r.disposer.FreeGpuData()
	}
	r.gpu = nil
	Logger().Debug("resource disposed",
		"kind", r.key.Kind().String(),
		"bytes", r.size)
}
