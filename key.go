// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucache

import "hash/fnv"

// ResourceKind classifies a resource for cache lookup. Two resources can
// only be interchangeable if they have the same kind.
type ResourceKind uint8

const (
	// KindInvalid is the kind of the zero ResourceKey.
	KindInvalid ResourceKind = iota

	// KindTexture is a GPU texture.
	KindTexture

	// KindBuffer is a GPU buffer.
	KindBuffer

	// KindRenderPipeline is a compiled render pipeline.
	KindRenderPipeline

	// KindComputePipeline is a compiled compute pipeline.
	KindComputePipeline
)

// String returns a short name for the kind.
func (k ResourceKind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindBuffer:
		return "buffer"
	case KindRenderPipeline:
		return "render-pipeline"
	case KindComputePipeline:
		return "compute-pipeline"
	default:
		return "invalid"
	}
}

// ResourceKey identifies resources with matching properties so the cache
// can hand back an existing one instead of creating a new one. Keys are
// comparable values and usable as map keys.
//
// Equality is exact: the encoded property words are part of the key, so
// two descriptors whose hashes collide still compare unequal. The hash
// only serves as a cheap first comparison.
//
// The zero ResourceKey is invalid: a resource holding it is a one-off that
// is never inserted into a cache.
type ResourceKey struct {
	kind      ResourceKind
	shareable bool
	hash      uint64
	props     string
}

// NewResourceKey builds a key from a kind and the properties that make two
// resources interchangeable (dimensions, format, usage flags, ...). The
// properties are folded into an FNV-1a hash; callers must encode every
// property that affects compatibility.
//
// A shareable resource may be handed out by the cache while other callers
// still reference it. A non-shareable (scratch) resource is only reused
// once it has become idle.
func NewResourceKey(kind ResourceKind, shareable bool, props ...uint32) ResourceKey {
	if kind == KindInvalid {
		panic("gpucache: NewResourceKey with KindInvalid")
	}
	encoded := make([]byte, 0, 4*len(props))
	for _, p := range props {
		encoded = append(encoded, byte(p), byte(p>>8), byte(p>>16), byte(p>>24))
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte{byte(kind)}) // fnv.Write never returns an error
	_, _ = h.Write(encoded)
	return ResourceKey{
		kind:      kind,
		shareable: shareable,
		hash:      h.Sum64(),
		props:     string(encoded),
	}
}

// IsValid reports whether the key was built by NewResourceKey. The zero
// key is invalid.
func (k ResourceKey) IsValid() bool {
	return k.kind != KindInvalid
}

// Kind returns the resource kind the key was built for.
func (k ResourceKey) Kind() ResourceKind {
	return k.kind
}

// Shareable reports whether the cache may hand the resource to multiple
// concurrent holders.
func (k ResourceKey) Shareable() bool {
	return k.shareable
}
