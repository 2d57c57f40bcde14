//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/drape"
)

// maxImageDim is the advertised image size limit for the compute
// compositor. Bounded by typical storage buffer limits, not by the
// algorithm.
const maxImageDim = 8192

// sharedBackend is the process-wide instance registered with drape.
var sharedBackend = New()

// Backend is the wgpu compute compositor. It implements drape.Backend.
//
// Device initialization is lazy: no GPU resources exist until the first
// IsSupported probe or SetDeviceProvider call. A standalone Vulkan
// device is created unless an external provider supplies one.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	comp     *compositor

	externalDevice bool
	probed         bool
	supported      bool

	// fallback reproduces the GPU math on the CPU when a dispatch
	// fails mid-render.
	fallback *drape.SoftwareBackend
}

// Interface compliance check.
var _ drape.Backend = (*Backend)(nil)

// New creates an uninitialized GPU backend.
func New() *Backend {
	return &Backend{fallback: drape.NewSoftwareBackend()}
}

// Kind returns drape.KindGPU.
func (b *Backend) Kind() drape.BackendKind { return drape.KindGPU }

// Capabilities describes the compute compositor.
func (b *Backend) Capabilities() drape.Capabilities {
	return drape.Capabilities{
		Name:        "wgpu",
		Kind:        drape.KindGPU,
		MaxImageDim: maxImageDim,
	}
}

// IsSupported probes for a usable GPU device and compute pipeline.
// The first call initializes the device; the result is cached.
func (b *Backend) IsSupported() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ensureReadyLocked() == nil
}

// ensureReadyLocked initializes the device and pipeline once.
func (b *Backend) ensureReadyLocked() error {
	if b.probed {
		if !b.supported {
			return fmt.Errorf("gpu: no usable device")
		}
		return nil
	}
	b.probed = true

	if b.device == nil {
		if err := b.initStandaloneDevice(); err != nil {
			drape.Logger().Debug("gpu: device init failed", "error", err)
			return err
		}
	}

	comp := newCompositor(b.device, b.queue)
	if err := comp.init(); err != nil {
		drape.Logger().Warn("gpu: compute pipeline init failed", "error", err)
		b.releaseDeviceLocked()
		return err
	}
	b.comp = comp
	b.supported = true
	return nil
}

// initStandaloneDevice creates a compute-only Vulkan device. This is
// the path taken when no external device provider is installed.
func (b *Backend) initStandaloneDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}

	b.instance = instance
	b.device = openDev.Device
	b.queue = openDev.Queue

	drape.Logger().Info("gpu: standalone device initialized", "adapter", selected.Info.Name)
	return nil
}

// SetDeviceProvider switches the backend to a shared GPU device from an
// external provider. The provider must expose HalDevice() any and
// HalQueue() any returning hal types.
func (b *Backend) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked()
	b.device = device
	b.queue = queue
	b.externalDevice = true
	b.probed = false
	b.supported = false

	drape.Logger().Debug("gpu: switched to shared device")
	return nil
}

// Render composites on the GPU. When a dispatch fails after successful
// initialization, the render transparently falls back to the CPU path,
// which implements identical math.
func (b *Backend) Render(garment, texture, mask *drape.Raster, opts drape.RenderOptions) (*drape.Raster, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureReadyLocked(); err != nil {
		return nil, fmt.Errorf("gpu: backend unavailable: %w", err)
	}
	if garment == nil || garment.PixelCount() == 0 {
		return nil, drape.ErrZeroArea
	}
	if texture.Width() != garment.Width() || texture.Height() != garment.Height() ||
		mask.Width() != garment.Width() || mask.Height() != garment.Height() {
		return nil, drape.ErrDimensionMismatch
	}

	out, err := b.comp.composite(garment, texture, mask, opts)
	if err != nil {
		drape.Logger().Warn("gpu: dispatch failed, falling back to CPU", "error", err)
		return b.fallback.Render(garment, texture, mask, opts)
	}
	return out, nil
}

// Close releases all GPU resources. The backend re-probes on next use.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
	b.probed = false
	b.supported = false
}

// releaseLocked tears down the pipeline and, for standalone devices,
// the device and instance.
func (b *Backend) releaseLocked() {
	if b.comp != nil {
		b.comp.close()
		b.comp = nil
	}
	b.releaseDeviceLocked()
}

func (b *Backend) releaseDeviceLocked() {
	if b.externalDevice {
		// Shared resources belong to the provider.
		b.device = nil
		b.queue = nil
		b.externalDevice = false
		return
	}
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.queue = nil
}
