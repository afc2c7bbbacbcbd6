package native

import (
	"sync/atomic"
	"time"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// =============================================================================
// Mock Types for Testing
// =============================================================================

// mockHALDevice is a test double for hal.Device.
type mockHALDevice struct {
	createTextureFunc func(*hal.TextureDescriptor) (hal.Texture, error)
	createBufferFunc  func(*hal.BufferDescriptor) (hal.Buffer, error)

	// Track calls for verification
	texturesCreated   int32
	texturesDestroyed int32
	buffersCreated    int32
	buffersDestroyed  int32
	renderDestroyed   int32
	computeDestroyed  int32
	lastTextureDesc   *hal.TextureDescriptor
	lastBufferDesc    *hal.BufferDescriptor
}

func (d *mockHALDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	atomic.AddInt32(&d.buffersCreated, 1)
	d.lastBufferDesc = desc
	if d.createBufferFunc != nil {
		return d.createBufferFunc(desc)
	}
	return &mockHALBuffer{size: desc.Size}, nil
}

func (d *mockHALDevice) DestroyBuffer(_ hal.Buffer) {
	atomic.AddInt32(&d.buffersDestroyed, 1)
}

func (d *mockHALDevice) MapBuffer(_ hal.Buffer, _, _ uint64) (hal.BufferMapping, error) {
	return hal.BufferMapping{}, nil
}
func (d *mockHALDevice) UnmapBuffer(_ hal.Buffer) error { return nil }

func (d *mockHALDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	atomic.AddInt32(&d.texturesCreated, 1)
	d.lastTextureDesc = desc
	if d.createTextureFunc != nil {
		return d.createTextureFunc(desc)
	}
	return &mockHALTexture{
		width:  desc.Size.Width,
		height: desc.Size.Height,
		format: desc.Format,
	}, nil
}

func (d *mockHALDevice) DestroyTexture(_ hal.Texture) {
	atomic.AddInt32(&d.texturesDestroyed, 1)
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateTextureView(_ hal.Texture, _ *hal.TextureViewDescriptor) (hal.TextureView, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyTextureView(_ hal.TextureView) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateSampler(_ *hal.SamplerDescriptor) (hal.Sampler, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroySampler(_ hal.Sampler) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateBindGroupLayout(_ *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyBindGroupLayout(_ hal.BindGroupLayout) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateBindGroup(_ *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyBindGroup(_ hal.BindGroup) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreatePipelineLayout(_ *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyPipelineLayout(_ hal.PipelineLayout) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateShaderModule(_ *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyShaderModule(_ hal.ShaderModule) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateRenderPipeline(_ *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	return nil, nil
}

func (d *mockHALDevice) DestroyRenderPipeline(_ hal.RenderPipeline) {
	atomic.AddInt32(&d.renderDestroyed, 1)
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateComputePipeline(_ *hal.ComputePipelineDescriptor) (hal.ComputePipeline, error) {
	return nil, nil
}

func (d *mockHALDevice) DestroyComputePipeline(_ hal.ComputePipeline) {
	atomic.AddInt32(&d.computeDestroyed, 1)
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateQuerySet(_ *hal.QuerySetDescriptor) (hal.QuerySet, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyQuerySet(_ hal.QuerySet) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateCommandEncoder(_ *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return nil, nil
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateRenderBundleEncoder(_ *hal.RenderBundleEncoderDescriptor) (hal.RenderBundleEncoder, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyRenderBundle(_ hal.RenderBundle) {}
func (d *mockHALDevice) FreeCommandBuffer(_ hal.CommandBuffer)  {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateFence() (hal.Fence, error) { return nil, nil }
func (d *mockHALDevice) DestroyFence(_ hal.Fence)        {}
func (d *mockHALDevice) Wait(_ hal.Fence, _ uint64, _ time.Duration) (bool, error) {
	return true, nil
}
func (d *mockHALDevice) ResetFence(_ hal.Fence) error             { return nil }
func (d *mockHALDevice) GetFenceStatus(_ hal.Fence) (bool, error) { return true, nil }
func (d *mockHALDevice) WaitIdle() error                          { return nil }
func (d *mockHALDevice) Destroy()                                 {}

// mockHALTexture is a test double for hal.Texture.
type mockHALTexture struct {
	width  uint32
	height uint32
	format types.TextureFormat
}

// Destroy implements hal.Resource.
func (t *mockHALTexture) Destroy() {}

// NativeHandle implements hal.NativeHandle.
func (t *mockHALTexture) NativeHandle() uintptr { return 0 }

// CurrentUsage implements hal.Texture.
func (t *mockHALTexture) CurrentUsage() types.TextureUsage { return 0 }

// AddPendingRef implements hal.Texture.
func (t *mockHALTexture) AddPendingRef() {}

// DecPendingRef implements hal.Texture.
func (t *mockHALTexture) DecPendingRef() {}

// mockHALBuffer is a test double for hal.Buffer.
type mockHALBuffer struct {
	size uint64
}

// Destroy implements hal.Resource.
func (b *mockHALBuffer) Destroy() {}

// NativeHandle implements hal.NativeHandle.
func (b *mockHALBuffer) NativeHandle() uintptr { return 0 }

// mockHALRenderPipeline is a test double for hal.RenderPipeline.
type mockHALRenderPipeline struct{}

// Destroy implements hal.Resource.
func (p *mockHALRenderPipeline) Destroy() {}

// NativeHandle implements hal.NativeHandle.
func (p *mockHALRenderPipeline) NativeHandle() uintptr { return 0 }

// mockHALComputePipeline is a test double for hal.ComputePipeline.
type mockHALComputePipeline struct{}

// Destroy implements hal.Resource.
func (p *mockHALComputePipeline) Destroy() {}

// NativeHandle implements hal.NativeHandle.
func (p *mockHALComputePipeline) NativeHandle() uintptr { return 0 }

// newTestDevice wraps a fresh mock in a Device.
func newTestDevice() (*Device, *mockHALDevice) {
	mock := &mockHALDevice{}
	device, err := NewDevice(mock, nil)
	if err != nil {
		panic(err)
	}
	return device, mock
}
