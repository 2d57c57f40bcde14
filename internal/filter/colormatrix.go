// Package filter implements pixel-buffer filters used for texture
// preprocessing, mask edge shaping, and result post-processing. All
// functions operate on tightly packed RGBA buffers (4 bytes per pixel,
// row-major) so the package stays a leaf with no image-type dependency.
package filter

// ColorMatrix is a 4x5 color transformation matrix in row-major order.
// The transformation is:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// The fifth column provides bias/offset values. Channel values are in the
// 0-255 range during transformation, then clamped back to valid range.
type ColorMatrix [20]float64

// Identity returns a color matrix that passes pixels through unchanged.
func Identity() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness returns a matrix that scales all color channels.
// factor: 0.0 = black, 1.0 = unchanged, 2.0 = twice as bright.
func Brightness(factor float64) ColorMatrix {
	return ColorMatrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast returns a matrix that stretches channels around mid-gray.
// factor: 0.0 = flat gray, 1.0 = unchanged, 2.0 = high contrast.
func Contrast(factor float64) ColorMatrix {
	// (color - 128) * factor + 128
	offset := 128 * (1 - factor)
	return ColorMatrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// Saturation returns a matrix that blends between grayscale and identity.
// factor: 0.0 = grayscale, 1.0 = unchanged, 2.0 = oversaturated.
func Saturation(factor float64) ColorMatrix {
	// Luminance weights (Rec. 709)
	const (
		lumR = 0.2126
		lumG = 0.7152
		lumB = 0.0722
	)

	inv := 1 - factor
	return ColorMatrix{
		lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Concat returns a matrix equivalent to applying m first, then other.
func (m ColorMatrix) Concat(other ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := range 4 {
		for col := range 5 {
			sum := 0.0
			for k := range 4 {
				sum += other[row*5+k] * m[k*5+col]
			}
			if col == 4 {
				sum += other[row*5+4]
			}
			out[row*5+col] = sum
		}
	}
	return out
}

// IsIdentity reports whether applying the matrix would change nothing.
func (m ColorMatrix) IsIdentity() bool {
	return m == Identity()
}

// Apply transforms every pixel of a packed RGBA buffer in place.
func (m ColorMatrix) Apply(pix []uint8) {
	if m.IsIdentity() {
		return
	}
	for i := 0; i+3 < len(pix); i += 4 {
		r := float64(pix[i])
		g := float64(pix[i+1])
		b := float64(pix[i+2])
		a := float64(pix[i+3])

		pix[i] = clampByte(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
		pix[i+1] = clampByte(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
		pix[i+2] = clampByte(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
		pix[i+3] = clampByte(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
	}
}

// clampByte clamps a float to the 0-255 byte range with rounding.
func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
