package drape

import "github.com/gogpu/drape/internal/blend"

// maskCutoff is the normalized mask factor below which a pixel is
// treated as outside the garment fabric entirely: the garment pixel
// passes through unchanged rather than fading.
const maskCutoff = 0.01

// softwareMaxImageDim is the advertised image size limit for the CPU
// compositor. There is no hard architectural limit; this bounds memory.
const softwareMaxImageDim = 16384

// SoftwareBackend is the CPU pixel-buffer compositor. Always available;
// it is the reference implementation the GPU path must match.
type SoftwareBackend struct{}

// NewSoftwareBackend creates the CPU compositor.
func NewSoftwareBackend() *SoftwareBackend { return &SoftwareBackend{} }

func init() {
	RegisterBackend(NewSoftwareBackend(), 0)
}

// Kind returns KindCPU.
func (s *SoftwareBackend) Kind() BackendKind { return KindCPU }

// IsSupported always reports true for the CPU path.
func (s *SoftwareBackend) IsSupported() bool { return true }

// Capabilities describes the CPU compositor.
func (s *SoftwareBackend) Capabilities() Capabilities {
	return Capabilities{
		Name:        "software",
		Kind:        KindCPU,
		MaxImageDim: softwareMaxImageDim,
	}
}

// Close releases nothing; the CPU compositor holds no resources.
func (s *SoftwareBackend) Close() {}

// Render composites texture onto garment through mask on the CPU.
//
// Per pixel, with m the mask channel normalized to [0, 1]:
//
//	m < 0.01          -> garment pixel unchanged
//	otherwise         -> mix(garment, blend(garment, texture), intensity*m)
//
// Alpha is preserved from the garment except under lace mode with
// m > 0.5, where it is attenuated to simulate openwork translucency.
func (s *SoftwareBackend) Render(garment, texture, mask *Raster, opts RenderOptions) (*Raster, error) {
	if err := validateRenderInputs(garment, texture, mask); err != nil {
		return nil, err
	}

	intensity := clampIntensity(opts.Intensity)
	mode := opts.BlendMode.mode()

	out := garment.Clone()
	if intensity == 0 {
		return out, nil
	}

	gp := garment.Pix()
	tp := texture.Pix()
	mp := mask.Pix()
	op := out.Pix()

	for i := 0; i < len(gp); i += 4 {
		m := float64(mp[i]) / 255
		if m < maskCutoff {
			continue
		}

		br, bg, bb := gp[i], gp[i+1], gp[i+2]
		r, g, b := blend.Pixel(mode, br, bg, bb, tp[i], tp[i+1], tp[i+2])

		t := intensity * m
		op[i] = blend.Mix(br, r, t)
		op[i+1] = blend.Mix(bg, g, t)
		op[i+2] = blend.Mix(bb, b, t)

		if mode == blend.Lace && m > 0.5 {
			op[i+3] = blend.LaceAlpha(gp[i+3], tp[i+3], intensity)
		}
	}

	return out, nil
}

// validateRenderInputs checks the shared preconditions of both backends.
func validateRenderInputs(garment, texture, mask *Raster) error {
	if garment == nil || texture == nil || mask == nil {
		return ErrZeroArea
	}
	if garment.PixelCount() == 0 {
		return ErrZeroArea
	}
	if texture.Width() != garment.Width() || texture.Height() != garment.Height() ||
		mask.Width() != garment.Width() || mask.Height() != garment.Height() {
		return ErrDimensionMismatch
	}
	return nil
}
