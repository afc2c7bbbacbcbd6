// Package gpucache manages the lifetime of pooled GPU resources for the
// GoGPU ecosystem.
//
// # Overview
//
// GPU objects (textures, buffers, pipelines) are expensive to create, so
// they are pooled and reused across frames. The hard part is not pooling:
// it is deciding, under concurrent access, the exact moment a resource may
// be recycled or have its native memory freed, without double-freeing,
// leaking, or freeing memory still read by in-flight GPU work.
//
// gpucache models three independent reference domains per resource:
//
//   - usage refs, held by callers actively using the resource;
//   - command-buffer refs, held by submitted but not-yet-completed GPU
//     work (see [CommandBufferTracker]);
//   - cache ownership, the pool's own hold, revoked exactly once on
//     eviction or shutdown.
//
// Native memory is freed exactly once, when all three domains reach zero.
//
// # Quick Start
//
//	cache := gpucache.NewResourceCache(gpucache.DefaultMaxResources, gpucache.DefaultMaxBytes)
//	provider, _ := gpucache.NewResourceProvider(cache)
//
//	key := gpucache.NewResourceKey(gpucache.KindTexture, false, 1024, 1024)
//	res, err := provider.FindOrCreate(key, func() (gpucache.Res, error) {
//	    return native.NewTexture(device, &native.TextureDescriptor{ /* ... */ })
//	})
//	if err != nil {
//	    // handle error
//	}
//	defer res.(*native.Texture).Unref()
//
// # Architecture
//
// The package is organized into:
//   - Core protocol: Resource, ResourceKey (this package)
//   - Pooling: ResourceCache, ResourceProvider (this package)
//   - Backends: backend/native (gogpu/wgpu HAL resource variants)
//
// Concrete resource types live in backend packages and embed [*Resource];
// the core never depends on a specific GPU API.
//
// # Thread Safety
//
// All exported operations are safe for concurrent use. Ref and unref
// operations are a lock-free atomic add or a short per-resource critical
// section; nothing in this package blocks on GPU completion.
package gpucache
