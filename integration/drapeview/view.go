// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drapeview

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drape"
	"github.com/gogpu/drape/gpu"
)

// Common errors returned by View operations.
var (
	// ErrViewClosed is returned when operations are attempted on a closed view.
	ErrViewClosed = errors.New("drapeview: view is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("drapeview: invalid dimensions")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("drapeview: nil DeviceProvider")

	// ErrNoCanvas is returned when RenderTo is called before SetCanvas.
	ErrNoCanvas = errors.New("drapeview: no canvas set")

	// ErrInvalidRenderer is returned when the renderer doesn't implement
	// gpucontext.TextureCreator.
	ErrInvalidRenderer = errors.New("drapeview: renderer must implement gpucontext.TextureCreator")

	// ErrInvalidDrawContext is returned when the created texture is not a
	// gpucontext.Texture.
	ErrInvalidDrawContext = errors.New("drapeview: texture is not a gpucontext.Texture")
)

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// View mirrors a composited drape canvas into a GPU texture for display.
//
// View is NOT safe for concurrent use. Create one View per goroutine, or
// use external synchronization.
type View struct {
	provider    gpucontext.DeviceProvider
	raster      *drape.Raster
	texture     any  // Lazy-created texture (*gogpu.Texture)
	oldTexture  any  // Previous texture awaiting deferred destruction
	dirty       bool // Needs GPU upload
	sizeChanged bool // Texture must be recreated
	width       int
	height      int
	closed      bool
}

// New creates a View bound to a window's device provider.
// The provider should come from gogpu.App.GPUContextProvider().
//
// Returns error if dimensions are invalid or provider is nil.
func New(provider gpucontext.DeviceProvider, width, height int) (*View, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	// Share the window's GPU device with the compute compositor.
	// Error is non-fatal: the provider may not expose HAL types, in
	// which case the compositor initializes its own device.
	_ = gpu.SetDeviceProvider(provider)

	return &View{
		provider: provider,
		width:    width,
		height:   height,
	}, nil
}

// MustNew is like New but panics on error.
// Use only when errors are programming mistakes (e.g., hardcoded dimensions).
func MustNew(provider gpucontext.DeviceProvider, width, height int) *View {
	v, err := New(provider, width, height)
	if err != nil {
		panic(err)
	}
	return v
}

// Width returns the view width in pixels.
func (v *View) Width() int { return v.width }

// Height returns the view height in pixels.
func (v *View) Height() int { return v.height }

// IsDirty returns true if the view has pending changes that need to be
// uploaded to the GPU.
func (v *View) IsDirty() bool { return v.dirty }

// SetCanvas installs the raster to display. The view keeps a reference;
// the caller must not mutate the raster afterwards. A raster with
// different dimensions resizes the view and recreates the texture on the
// next RenderTo.
func (v *View) SetCanvas(canvas *drape.Raster) error {
	if v.closed {
		return ErrViewClosed
	}
	if canvas == nil || canvas.PixelCount() == 0 {
		return fmt.Errorf("%w: empty canvas", ErrInvalidDimensions)
	}

	if canvas.Width() != v.width || canvas.Height() != v.height {
		v.width = canvas.Width()
		v.height = canvas.Height()
		v.sizeChanged = true
	}
	v.raster = canvas
	v.dirty = true
	return nil
}

// RenderTo uploads the canvas if dirty and draws it at (0, 0).
//
// The dc parameter should be obtained from gogpu.Context.AsTextureDrawer().
func (v *View) RenderTo(dc gpucontext.TextureDrawer) error {
	return v.RenderToPosition(dc, 0, 0)
}

// RenderToPosition uploads the canvas if dirty and draws it at (x, y).
func (v *View) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	if v.closed {
		return ErrViewClosed
	}
	if v.raster == nil {
		return ErrNoCanvas
	}

	// A size change invalidates the texture, but the old one may still
	// be referenced by in-flight command buffers. Keep it alive and
	// destroy it after the next upload, which waits for the GPU.
	if v.sizeChanged {
		if v.texture != nil {
			v.destroyOldTexture()
			v.oldTexture = v.texture
			v.texture = nil
		}
		v.sizeChanged = false
	}

	if v.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrInvalidRenderer
		}
		tex, err := creator.NewTextureFromRGBA(v.width, v.height, v.raster.Pix())
		if err != nil {
			return fmt.Errorf("drapeview: NewTextureFromRGBA failed: %w", err)
		}
		v.texture = tex
		v.dirty = false

		// Upload is complete; the GPU is idle and the deferred texture
		// can go.
		v.destroyOldTexture()
	} else if v.dirty {
		if updater, ok := v.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(v.raster.Pix()); err != nil {
				return fmt.Errorf("drapeview: texture update failed: %w", err)
			}
		}
		v.dirty = false
	}

	gpuTex, ok := v.texture.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// Texture returns the current GPU texture without uploading.
// Returns nil if no texture has been created yet.
func (v *View) Texture() any { return v.texture }

// Provider returns the DeviceProvider associated with this view.
// Returns nil if the view is closed.
func (v *View) Provider() gpucontext.DeviceProvider {
	if v.closed {
		return nil
	}
	return v.provider
}

// Close releases the view's textures. Close is idempotent.
func (v *View) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true

	v.destroyOldTexture()
	if v.texture != nil {
		if destroyer, ok := v.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		v.texture = nil
	}
	v.raster = nil
	v.provider = nil
	return nil
}

func (v *View) destroyOldTexture() {
	if v.oldTexture == nil {
		return
	}
	if destroyer, ok := v.oldTexture.(textureDestroyer); ok {
		destroyer.Destroy()
	}
	v.oldTexture = nil
}
