// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucache

import (
	"errors"
	"fmt"
)

// Provider errors.
var (
	// ErrNilCache is returned when creating a provider without a cache.
	ErrNilCache = errors.New("gpucache: cache is nil")

	// ErrNilResource is returned when a create callback returns neither a
	// resource nor an error.
	ErrNilResource = errors.New("gpucache: create returned nil resource")
)

// ResourceProvider is the provisioning path: the one component allowed to
// assign identity keys and to hand freshly created resources to the cache.
// Backend packages build concrete resources; the provider decides whether
// an existing pooled resource can serve instead.
//
// ResourceProvider is safe for concurrent use.
type ResourceProvider struct {
	cache *ResourceCache
}

// NewResourceProvider creates a provider backed by cache.
func NewResourceProvider(cache *ResourceCache) (*ResourceProvider, error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	return &ResourceProvider{cache: cache}, nil
}

// Cache returns the cache the provider inserts into.
func (p *ResourceProvider) Cache() *ResourceCache {
	return p.cache
}

// FindOrCreate returns a resource for key, reusing a pooled one when the
// cache holds a match and otherwise invoking create. A created resource
// gets the key assigned and is adopted by the cache before it is returned.
//
// Either way the caller ends up holding one usage ref (the pooled
// resource's cache-only ref, or the creation ref) and must Unref it when
// done.
//
// An invalid (zero) key skips the cache entirely: the resource is created,
// never pooled, and freed on its last Unref.
func (p *ResourceProvider) FindOrCreate(key ResourceKey, create func() (Res, error)) (Res, error) {
	if key.IsValid() {
		if res, ok := p.cache.FindAndRef(key); ok {
			return res, nil
		}
	}
	res, err := create()
	if err != nil {
		return nil, fmt.Errorf("gpucache: create %s resource: %w", key.Kind(), err)
	}
	if res == nil {
		return nil, ErrNilResource
	}
	if key.IsValid() {
		res.resource().setKey(key)
		p.cache.insert(res)
	}
	return res, nil
}
