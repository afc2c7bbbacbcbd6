// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/gpucache"
)

// Buffer errors.
var (
	// ErrInvalidBufferSize is returned when the buffer size is zero.
	ErrInvalidBufferSize = errors.New("native: invalid buffer size")
)

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used.
	Usage types.BufferUsage

	// MappedAtCreation maps the buffer for writing immediately.
	MappedAtCreation bool
}

// Buffer is a pooled GPU buffer. See Texture for the lifetime rules; they
// are identical.
type Buffer struct {
	*gpucache.Resource

	device     *Device
	halBuffer  hal.Buffer
	descriptor BufferDescriptor
}

// NewBuffer creates a GPU buffer on device. The returned buffer holds one
// usage ref owned by the caller.
func NewBuffer(device *Device, desc *BufferDescriptor) (*Buffer, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if desc.Size == 0 {
		return nil, ErrInvalidBufferSize
	}

	halBuffer, err := device.HAL().CreateBuffer(&hal.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage,
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer: %w", err)
	}

	b := &Buffer{
		device:     device,
		halBuffer:  halBuffer,
		descriptor: *desc,
	}
	b.Resource = gpucache.NewResource(device, b, desc.Size)
	return b, nil
}

// BufferKey builds the cache key under which interchangeable buffers pool.
// Buffers are reused by exact size and usage; the label is excluded.
func BufferKey(desc *BufferDescriptor, shareable bool) gpucache.ResourceKey {
	return gpucache.NewResourceKey(gpucache.KindBuffer, shareable,
		uint32(desc.Size),
		uint32(desc.Size>>32),
		uint32(desc.Usage),
	)
}

// FreeGpuData implements gpucache.Disposer.
func (b *Buffer) FreeGpuData() {
	b.device.HAL().DestroyBuffer(b.halBuffer)
	b.halBuffer = nil
}

// Label returns the buffer's debug label.
func (b *Buffer) Label() string { return b.descriptor.Label }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.descriptor.Size }

// Usage returns the buffer usage flags.
func (b *Buffer) Usage() types.BufferUsage { return b.descriptor.Usage }

// Raw returns the underlying HAL buffer handle, or nil after disposal.
// Only valid while the caller holds a usage or command-buffer ref.
func (b *Buffer) Raw() hal.Buffer {
	if b.WasDestroyed() {
		return nil
	}
	return b.halBuffer
}
