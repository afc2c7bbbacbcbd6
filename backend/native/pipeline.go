// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package native

import (
	"errors"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpucache"
)

// Pipeline errors.
var (
	// ErrNilPipeline is returned when adopting a nil pipeline handle.
	ErrNilPipeline = errors.New("native: pipeline is nil")
)

// RenderPipeline manages the lifetime of a compiled HAL render pipeline.
//
// Pipeline compilation itself belongs to a pipeline cache (descriptor
// hashing, shader modules); this type only takes over a finished handle so
// the gpucache protocol decides when it is destroyed. Pipelines report a
// zero memory footprint: their cost is compilation time, not trackable
// bytes, so only the cache's count budget applies to them.
type RenderPipeline struct {
	*gpucache.Resource

	device      *Device
	halPipeline hal.RenderPipeline
	label       string
}

// AdoptRenderPipeline wraps an already-compiled HAL render pipeline.
// Ownership of the handle transfers; it is destroyed via the device when
// the resource is disposed. The returned resource holds one usage ref
// owned by the caller.
func AdoptRenderPipeline(device *Device, pipeline hal.RenderPipeline, label string) (*RenderPipeline, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if pipeline == nil {
		return nil, ErrNilPipeline
	}
	p := &RenderPipeline{
		device:      device,
		halPipeline: pipeline,
		label:       label,
	}
	p.Resource = gpucache.NewResource(device, p, 0)
	return p, nil
}

// FreeGpuData implements gpucache.Disposer.
func (p *RenderPipeline) FreeGpuData() {
	p.device.HAL().DestroyRenderPipeline(p.halPipeline)
	p.halPipeline = nil
}

// Label returns the pipeline's debug label.
func (p *RenderPipeline) Label() string { return p.label }

// Raw returns the underlying HAL pipeline handle, or nil after disposal.
// Only valid while the caller holds a usage or command-buffer ref.
func (p *RenderPipeline) Raw() hal.RenderPipeline {
	if p.WasDestroyed() {
		return nil
	}
	return p.halPipeline
}

// ComputePipeline manages the lifetime of a compiled HAL compute pipeline.
// See RenderPipeline.
type ComputePipeline struct {
	*gpucache.Resource

	device      *Device
	halPipeline hal.ComputePipeline
	label       string
}

// AdoptComputePipeline wraps an already-compiled HAL compute pipeline.
// Ownership of the handle transfers. The returned resource holds one
// usage ref owned by the caller.
func AdoptComputePipeline(device *Device, pipeline hal.ComputePipeline, label string) (*ComputePipeline, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if pipeline == nil {
		return nil, ErrNilPipeline
	}
	p := &ComputePipeline{
		device:      device,
		halPipeline: pipeline,
		label:       label,
	}
	p.Resource = gpucache.NewResource(device, p, 0)
	return p, nil
}

// FreeGpuData implements gpucache.Disposer.
func (p *ComputePipeline) FreeGpuData() {
	p.device.HAL().DestroyComputePipeline(p.halPipeline)
	p.halPipeline = nil
}

// Label returns the pipeline's debug label.
func (p *ComputePipeline) Label() string { return p.label }

// Raw returns the underlying HAL pipeline handle, or nil after disposal.
// Only valid while the caller holds a usage or command-buffer ref.
func (p *ComputePipeline) Raw() hal.ComputePipeline {
	if p.WasDestroyed() {
		return nil
	}
	return p.halPipeline
}

// PipelineKey builds a cache key for a pipeline from the descriptor hash a
// pipeline cache already computes. Pipelines are immutable once compiled,
// so they are always shareable.
func PipelineKey(kind gpucache.ResourceKind, descriptorHash uint64) gpucache.ResourceKey {
	return gpucache.NewResourceKey(kind, true,
		uint32(descriptorHash),
		uint32(descriptorHash>>32),
	)
}
