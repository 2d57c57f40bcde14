package drape

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resize returns a copy of the raster scaled to the given dimensions
// using Catmull-Rom interpolation. Target dimensions of zero or less
// yield a zero-area raster.
func Resize(r *Raster, width, height int) *Raster {
	if width <= 0 || height <= 0 {
		return NewRaster(0, 0)
	}
	if width == r.width && height == r.height {
		return r.Clone()
	}

	src := r.ToImage()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return FromImage(dst)
}

// ResizeNearest returns a copy of the raster scaled with nearest-neighbor
// sampling. Used for masks, where interpolation would manufacture
// intermediate values between the binary include and exclude levels.
func ResizeNearest(r *Raster, width, height int) *Raster {
	if width <= 0 || height <= 0 {
		return NewRaster(0, 0)
	}
	if width == r.width && height == r.height {
		return r.Clone()
	}

	src := r.ToImage()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return FromImage(dst)
}

// FitWithin returns the dimensions of r scaled uniformly so that neither
// side exceeds maxSide, never upscaling. A maxSide of zero or less
// returns the original dimensions.
func FitWithin(r *Raster, maxSide int) (width, height int) {
	width, height = r.width, r.height
	if maxSide <= 0 || (width <= maxSide && height <= maxSide) {
		return width, height
	}
	if width >= height {
		height = height * maxSide / width
		width = maxSide
	} else {
		width = width * maxSide / height
		height = maxSide
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Thumbnail returns the raster downscaled so its longest side is at most
// maxSide, preserving aspect ratio. Images already within the bound are
// cloned unchanged.
func Thumbnail(r *Raster, maxSide int) *Raster {
	width, height := FitWithin(r, maxSide)
	return Resize(r, width, height)
}
