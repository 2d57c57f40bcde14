package blend

import "math"

// Mode selects the per-pixel combination rule for fabric compositing.
type Mode int

// Fabric blend modes.
const (
	// Multiply darkens the garment with the texture. Natural for dense
	// weaves and mesh, where threads occlude the base.
	Multiply Mode = iota

	// Overlay boosts contrast, preserving garment shading while taking
	// texture color. Default for embroidery and generic fabrics.
	Overlay

	// SoftLight applies a gentle tonal shift. Suits silk and satin.
	SoftLight

	// Lace is a composite mode: bright texture areas (fabric gaps) stay
	// nearly invisible while dark motifs register strongly.
	Lace
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Multiply:
		return "multiply"
	case Overlay:
		return "overlay"
	case SoftLight:
		return "softLight"
	case Lace:
		return "lace"
	default:
		return "unknown"
	}
}

// laceLumaThreshold separates bright fabric gaps from dark lace motifs.
const laceLumaThreshold = 200

// MultiplyChan blends one channel with the multiply rule.
//
// Formula: B(Cb, Cs) = Cb * Cs
func MultiplyChan(base, tex byte) byte {
	return mulDiv255(base, tex)
}

// OverlayChan blends one channel with the W3C overlay rule, branching on
// whether the base channel is below mid-gray.
//
// Formula: B(Cb, Cs) = if Cb <= 0.5: 2*Cb*Cs, else: 1 - 2*(1-Cb)*(1-Cs)
func OverlayChan(base, tex byte) byte {
	if base < 128 {
		return byte(div255(2 * uint16(base) * uint16(tex)))
	}
	invB := uint16(255 - base)
	invT := uint16(255 - tex)
	v := 2 * invB * invT
	return byte(255 - div255(v))
}

// SoftLightChan blends one channel with the W3C soft-light rule,
// including the square-root highlight branch.
func SoftLightChan(base, tex byte) byte {
	bf := float64(base) / 255
	tf := float64(tex) / 255

	var result float64
	if tf <= 0.5 {
		result = bf - (1-2*tf)*bf*(1-bf)
	} else {
		var d float64
		if bf <= 0.25 {
			d = ((16*bf-12)*bf + 4) * bf
		} else {
			d = math.Sqrt(bf)
		}
		result = bf + (2*tf-1)*(d-bf)
	}
	return toByte(result)
}

// Pixel blends one garment pixel with one texture pixel under the given
// mode and returns the blended color, before intensity mixing. The lace
// mode is the only one that needs the whole pixel: it keys on texture
// luminance, fading bright gap areas and strengthening dark motifs.
func Pixel(mode Mode, br, bg, bb, tr, tg, tb byte) (r, g, b byte) {
	switch mode {
	case Multiply:
		return MultiplyChan(br, tr), MultiplyChan(bg, tg), MultiplyChan(bb, tb)
	case Overlay:
		return OverlayChan(br, tr), OverlayChan(bg, tg), OverlayChan(bb, tb)
	case SoftLight:
		return SoftLightChan(br, tr), SoftLightChan(bg, tg), SoftLightChan(bb, tb)
	case Lace:
		if Luma(tr, tg, tb) > laceLumaThreshold {
			// Fabric gap: keep the garment mostly visible.
			r = Mix(br, OverlayChan(br, tr), 0.3)
			g = Mix(bg, OverlayChan(bg, tg), 0.3)
			b = Mix(bb, OverlayChan(bb, tb), 0.3)
			return r, g, b
		}
		// Lace motif: pull strongly toward the darkened result.
		r = Mix(br, MultiplyChan(br, tr), 0.7)
		g = Mix(bg, MultiplyChan(bg, tg), 0.7)
		b = Mix(bb, MultiplyChan(bb, tb), 0.7)
		return r, g, b
	default:
		return br, bg, bb
	}
}

// LaceAlpha attenuates garment alpha under the lace mode to simulate
// openwork translucency. Applied only where the mask factor exceeds 0.5.
func LaceAlpha(baseAlpha, texAlpha byte, intensity float64) byte {
	t := float64(texAlpha) / 255 * intensity
	factor := 1 + (0.9-1)*t
	return toByte(float64(baseAlpha) / 255 * factor)
}
