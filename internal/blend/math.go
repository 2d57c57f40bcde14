// Package blend implements the per-channel blend math shared by the CPU
// and GPU compositing backends. The byte helpers avoid integer division;
// the blend functions mirror the compute shader's normalized float math
// so that both backends produce matching results.
//
// References:
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
//   - Alpha blending without division: https://arxiv.org/abs/2202.02864
package blend

import "math"

// div255 divides x by 255 using fast shift approximation.
//
// Formula: (x + 255) >> 8
//
// The maximum error is +1 for some input values, which stays within the
// backend parity tolerance.
func div255(x uint16) uint16 {
	return (x + 255) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255 using fast approximation.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint16(a) * uint16(b)))
}

// clampUnit clamps a float to [0, 1].
func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// toByte converts a normalized channel value to 8-bit with rounding.
func toByte(x float64) byte {
	return byte(math.Round(clampUnit(x) * 255))
}

// Mix linearly interpolates between a and b with factor t in [0, 1].
// t=0 returns a exactly, t=1 returns b exactly.
func Mix(a, b byte, t float64) byte {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return toByte(float64(a)/255 + (float64(b)-float64(a))/255*t)
}

// Luma computes Rec.601 luma from 8-bit channels, in the range 0-255.
func Luma(r, g, b byte) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
