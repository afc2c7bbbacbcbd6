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

// Texture errors.
var (
	// ErrInvalidTextureSize is returned when texture dimensions are invalid.
	ErrInvalidTextureSize = errors.New("native: invalid texture size")
)

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Size is the texture dimensions. DepthOrArrayLayers defaults to 1.
	Size types.Extent3D

	// MipLevelCount is the number of mip levels (defaults to 1).
	MipLevelCount uint32

	// SampleCount is the number of samples per pixel (defaults to 1).
	SampleCount uint32

	// Dimension is the texture dimension (1D, 2D, 3D).
	Dimension types.TextureDimension

	// Format is the texture pixel format.
	Format types.TextureFormat

	// Usage specifies how the texture will be used.
	Usage types.TextureUsage
}

// Texture is a pooled GPU texture. It embeds the gpucache lifetime state:
// callers manage it through Ref/Unref, submissions through a
// CommandBufferTracker, and the ResourceCache through its ownership
// domain. The HAL texture is destroyed exactly once, when all three
// domains have let go.
//
// The HAL handle returned by Raw is only valid while the caller holds a
// usage or command-buffer ref.
type Texture struct {
	*gpucache.Resource

	device     *Device
	halTexture hal.Texture
	descriptor TextureDescriptor
}

// NewTexture creates a GPU texture on device.
//
// The returned texture holds one usage ref owned by the caller. Create
// through ResourceProvider.FindOrCreate to pool it; a texture created
// directly is freed on its last Unref.
func NewTexture(device *Device, desc *TextureDescriptor) (*Texture, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, desc.Size.Width, desc.Size.Height)
	}

	d := *desc
	if d.Size.DepthOrArrayLayers == 0 {
		d.Size.DepthOrArrayLayers = 1
	}
	if d.MipLevelCount == 0 {
		d.MipLevelCount = 1
	}
	if d.SampleCount == 0 {
		d.SampleCount = 1
	}

	halTexture, err := device.HAL().CreateTexture(&hal.TextureDescriptor{
		Label: d.Label,
		Size: hal.Extent3D{
			Width:              d.Size.Width,
			Height:             d.Size.Height,
			DepthOrArrayLayers: d.Size.DepthOrArrayLayers,
		},
		MipLevelCount: d.MipLevelCount,
		SampleCount:   d.SampleCount,
		Dimension:     d.Dimension,
		Format:        d.Format,
		Usage:         d.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture: %w", err)
	}

	t := &Texture{
		device:     device,
		halTexture: halTexture,
		descriptor: d,
	}
	t.Resource = gpucache.NewResource(device, t, textureBytes(&d))
	return t, nil
}

// TextureKey builds the cache key under which interchangeable textures
// pool: every descriptor field that affects compatibility is folded in.
// The label is excluded; debug names do not affect reuse.
func TextureKey(desc *TextureDescriptor, shareable bool) gpucache.ResourceKey {
	depth := desc.Size.DepthOrArrayLayers
	if depth == 0 {
		depth = 1
	}
	mips := desc.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	return gpucache.NewResourceKey(gpucache.KindTexture, shareable,
		desc.Size.Width,
		desc.Size.Height,
		depth,
		mips,
		samples,
		uint32(desc.Dimension),
		uint32(desc.Format),
		uint32(desc.Usage),
	)
}

// FreeGpuData implements gpucache.Disposer. Called exactly once by the
// gpucache protocol; no refs remain when it runs.
func (t *Texture) FreeGpuData() {
	t.device.HAL().DestroyTexture(t.halTexture)
	t.halTexture = nil
}

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.descriptor.Label }

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.descriptor.Size.Width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.descriptor.Size.Height }

// Format returns the texture pixel format.
func (t *Texture) Format() types.TextureFormat { return t.descriptor.Format }

// Usage returns the texture usage flags.
func (t *Texture) Usage() types.TextureUsage { return t.descriptor.Usage }

// Descriptor returns a copy of the texture descriptor.
func (t *Texture) Descriptor() TextureDescriptor { return t.descriptor }

// Raw returns the underlying HAL texture handle, or nil after disposal.
// Only valid while the caller holds a usage or command-buffer ref.
func (t *Texture) Raw() hal.Texture {
	if t.WasDestroyed() {
		return nil
	}
	return t.halTexture
}

// textureBytes estimates the native memory footprint. Mip chain overhead
// is ignored; the estimate feeds the cache's byte budget, not an
// allocator.
func textureBytes(desc *TextureDescriptor) uint64 {
	texels := uint64(desc.Size.Width) * uint64(desc.Size.Height) * uint64(desc.Size.DepthOrArrayLayers)
	return texels * uint64(desc.SampleCount) * bytesPerTexel(desc.Format)
}

// bytesPerTexel returns the per-texel size of the format.
func bytesPerTexel(format types.TextureFormat) uint64 {
	switch format {
	case types.TextureFormatR8Unorm:
		return 1
	case types.TextureFormatRGBA8Unorm, types.TextureFormatRGBA8UnormSrgb,
		types.TextureFormatBGRA8Unorm, types.TextureFormatBGRA8UnormSrgb,
		types.TextureFormatR32Float, types.TextureFormatDepth24PlusStencil8:
		return 4
	case types.TextureFormatRG32Float:
		return 8
	case types.TextureFormatRGBA32Float:
		return 16
	default:
		return 4
	}
}
