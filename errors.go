package drape

import "errors"

// Errors returned by the compositing core.
var (
	// ErrDecodeFailure is returned when an image source cannot be decoded.
	ErrDecodeFailure = errors.New("drape: image decode failed")

	// ErrUnsupportedSourceType is returned when a source value is not one
	// of the supported kinds ([]byte, io.Reader, image.Image, *Raster,
	// file path string).
	ErrUnsupportedSourceType = errors.New("drape: unsupported source type")

	// ErrNoRenderBackend is returned when no compositing backend could be
	// initialized. The caller must not proceed with rendering.
	ErrNoRenderBackend = errors.New("drape: no render backend available")

	// ErrEmptyData is returned when an image source is empty.
	ErrEmptyData = errors.New("drape: empty image data")

	// ErrZeroArea is returned when an operation receives a zero-area image.
	ErrZeroArea = errors.New("drape: zero-area image")

	// ErrDimensionMismatch is returned when garment, texture, and mask
	// dimensions disagree at composite time.
	ErrDimensionMismatch = errors.New("drape: image dimensions do not match")

	// ErrPipelineDestroyed is returned when a destroyed pipeline is used.
	ErrPipelineDestroyed = errors.New("drape: pipeline has been destroyed")
)
