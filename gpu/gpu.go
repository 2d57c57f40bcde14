//go:build !nogpu

// Package gpu registers the wgpu compute backend for hardware-accelerated
// compositing.
//
// Import this package to enable GPU rendering. Compositing runs as a
// compute shader over storage buffers; the math mirrors the CPU
// reference path, so both backends produce matching results.
//
// If GPU initialization fails (no Vulkan available), backend selection
// falls back to the CPU compositor transparently.
//
// Usage:
//
//	import _ "github.com/gogpu/drape/gpu" // enable GPU compositing
package gpu

import (
	"github.com/gogpu/drape"
)

func init() {
	drape.RegisterBackend(sharedBackend, 100)
}

// SetDeviceProvider configures the GPU backend to reuse a shared GPU
// device from an external provider (e.g., a gogpu window) instead of
// creating a standalone Vulkan device.
//
// The provider should be a gpucontext.DeviceProvider that also exposes
// HAL types via HalDevice() any and HalQueue() any.
//
// Call this before the first Render; an already-created standalone
// device is released and replaced.
func SetDeviceProvider(provider any) error {
	return sharedBackend.SetDeviceProvider(provider)
}
