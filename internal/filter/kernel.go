package filter

// Kernel3x3 is a 3x3 convolution kernel in row-major order.
type Kernel3x3 [9]float64

// SharpenKernel is the classic 5-center sharpening kernel. Applied to a
// mask it keeps edges crisp after resampling.
var SharpenKernel = Kernel3x3{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Convolve3x3 convolves a packed RGBA buffer with a 3x3 kernel, edge
// pixels clamped. Color channels are convolved; alpha passes through.
func Convolve3x3(pix []uint8, width, height int, k Kernel3x3) {
	if width <= 0 || height <= 0 {
		return
	}

	src := make([]uint8, len(pix))
	copy(src, pix)

	for y := range height {
		for x := range width {
			var r, g, b float64
			ki := 0
			for dy := -1; dy <= 1; dy++ {
				sy := clampIndex(y+dy, height)
				for dx := -1; dx <= 1; dx++ {
					sx := clampIndex(x+dx, width)
					o := (sy*width + sx) * 4
					w := k[ki]
					ki++
					r += w * float64(src[o])
					g += w * float64(src[o+1])
					b += w * float64(src[o+2])
				}
			}
			o := (y*width + x) * 4
			pix[o] = clampByte(r)
			pix[o+1] = clampByte(g)
			pix[o+2] = clampByte(b)
		}
	}
}

// Unsharp sharpens by subtracting a blurred copy from the original:
//
//	result = src + amount * (src - blur(src))
//
// radius controls the blur footprint; amount the sharpening strength.
func Unsharp(pix []uint8, width, height, radius int, amount float64) {
	if radius <= 0 || amount <= 0 || width <= 0 || height <= 0 {
		return
	}

	blurred := make([]uint8, len(pix))
	copy(blurred, pix)
	BoxBlur(blurred, width, height, radius)

	for i := range pix {
		if i%4 == 3 {
			continue // leave alpha untouched
		}
		v := float64(pix[i]) + amount*(float64(pix[i])-float64(blurred[i]))
		pix[i] = clampByte(v)
	}
}
