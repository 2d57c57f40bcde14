package drape

import (
	"image"
	"image/color"
)

// Raster represents a rectangular RGBA pixel buffer, 4 bytes per pixel,
// non-premultiplied, laid out row by row. It is the working image type
// of the compositing core: decoded garments, swatches, masks, and
// rendered canvases are all Rasters.
//
// A Raster is owned by whichever stage currently processes it; stages
// never share a Raster mutably. Use Clone when two stages need
// independent copies.
type Raster struct {
	width  int
	height int
	pix    []uint8 // RGBA format, 4 bytes per pixel
}

// NewRaster creates a new raster with the given dimensions.
// Dimensions of zero or less yield a zero-area raster; most operations
// reject those with ErrZeroArea.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// Width returns the width of the raster in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the height of the raster in pixels.
func (r *Raster) Height() int { return r.height }

// Pix returns the raw pixel data (RGBA format, 4 bytes per pixel).
func (r *Raster) Pix() []uint8 { return r.pix }

// PixelCount returns the number of pixels in the raster.
func (r *Raster) PixelCount() int { return r.width * r.height }

// Offset returns the byte offset of pixel (x, y) in Pix.
// The caller must ensure the coordinates are in bounds.
func (r *Raster) Offset(x, y int) int {
	return (y*r.width + x) * 4
}

// RGBA returns the color channels of a single pixel.
// Out-of-bounds coordinates return transparent black.
func (r *Raster) RGBA(x, y int) (red, green, blue, alpha uint8) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0, 0, 0, 0
	}
	i := r.Offset(x, y)
	return r.pix[i], r.pix[i+1], r.pix[i+2], r.pix[i+3]
}

// SetRGBA sets the color channels of a single pixel.
// Out-of-bounds coordinates are ignored.
func (r *Raster) SetRGBA(x, y int, red, green, blue, alpha uint8) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	i := r.Offset(x, y)
	r.pix[i] = red
	r.pix[i+1] = green
	r.pix[i+2] = blue
	r.pix[i+3] = alpha
}

// Fill sets every pixel to the given color.
func (r *Raster) Fill(red, green, blue, alpha uint8) {
	for i := 0; i < len(r.pix); i += 4 {
		r.pix[i] = red
		r.pix[i+1] = green
		r.pix[i+2] = blue
		r.pix[i+3] = alpha
	}
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	c := NewRaster(r.width, r.height)
	copy(c.pix, r.pix)
	return c
}

// Luma returns the Rec.601 luma of pixel (x, y) in the range 0-255.
func (r *Raster) Luma(x, y int) float64 {
	red, green, blue, _ := r.RGBA(x, y)
	return lumaOf(red, green, blue)
}

// lumaOf computes Rec.601 luma from 8-bit channels.
func lumaOf(red, green, blue uint8) float64 {
	return 0.299*float64(red) + 0.587*float64(green) + 0.114*float64(blue)
}

// FromImage creates a raster from a standard library image.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	r := NewRaster(width, height)

	// Fast path for NRGBA images (the common decode result).
	if nrgba, ok := img.(*image.NRGBA); ok {
		if nrgba.Stride == width*4 {
			copy(r.pix, nrgba.Pix)
			return r
		}
		for y := range height {
			srcStart := y * nrgba.Stride
			copy(r.pix[y*width*4:(y+1)*width*4], nrgba.Pix[srcStart:srcStart+width*4])
		}
		return r
	}

	// Generic slow path for any image type.
	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := r.Offset(x, y)
			r.pix[i] = c.R
			r.pix[i+1] = c.G
			r.pix[i+2] = c.B
			r.pix[i+3] = c.A
		}
	}
	return r
}

// ToImage converts the raster to a standard library *image.NRGBA.
func (r *Raster) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.pix)
	return img
}

// At implements the image.Image interface.
func (r *Raster) At(x, y int) color.Color {
	red, green, blue, alpha := r.RGBA(x, y)
	return color.NRGBA{R: red, G: green, B: blue, A: alpha}
}

// Bounds implements the image.Image interface.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// ColorModel implements the image.Image interface.
func (r *Raster) ColorModel() color.Model {
	return color.NRGBAModel
}
