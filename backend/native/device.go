// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native provides gogpu/wgpu HAL-backed resource types for
// gpucache: textures, buffers, and pipelines whose native memory is
// released through the owning hal.Device exactly once, when the gpucache
// protocol decides the resource is dead.
package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Device errors.
var (
	// ErrNilHALDevice is returned when creating a resource without a device.
	ErrNilHALDevice = errors.New("native: device is nil")

	// ErrNoHALAccess is returned when a device provider does not expose
	// HAL types.
	ErrNoHALAccess = errors.New("native: provider does not expose HAL types")
)

// Device adapts a hal.Device to gpucache.Gpu. It is the backend handle
// every resource in this package holds until disposal.
//
// Device is immutable after creation and safe for concurrent use; the
// underlying hal.Device carries its own thread-safety guarantees.
type Device struct {
	device hal.Device
	queue  hal.Queue
}

// NewDevice wraps a HAL device and its submission queue. The queue may be
// nil when the caller only creates and destroys resources.
func NewDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	return &Device{device: device, queue: queue}, nil
}

// BackendName implements gpucache.Gpu.
func (d *Device) BackendName() string { return "wgpu-hal" }

// HAL returns the underlying HAL device.
func (d *Device) HAL() hal.Device { return d.device }

// Queue returns the HAL queue, or nil if none was provided.
func (d *Device) Queue() hal.Queue { return d.queue }

// FromDeviceProvider extracts the shared GPU device from an external
// provider (e.g. gogpu.App.GPUContextProvider()). The provider must
// implement HalDevice() any returning a hal.Device, as
// gpucontext.HalProvider implementations do.
//
// The HAL queue is taken when the provider exposes one; this package only
// creates and destroys resources, so a device without a queue is fine.
func FromDeviceProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, _ := hp.HalQueue().(hal.Queue)
	return &Device{device: device, queue: queue}, nil
}
