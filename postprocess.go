package drape

import "github.com/gogpu/drape/internal/filter"

// PreprocessTexture applies archetype-specific tonal adjustments to a
// texture before compositing, in place. Lace gets a contrast push with
// slight desaturation so motifs separate cleanly from gaps; silk gets a
// gentle lift that flatters sheen; everything else gets a mild contrast
// and saturation boost. All but silk finish with an unsharp pass to keep
// weave detail through downscaling.
func PreprocessTexture(texture *Raster, archetype Archetype) {
	if texture == nil || texture.PixelCount() == 0 {
		return
	}

	pix := texture.Pix()
	width := texture.Width()
	height := texture.Height()

	switch archetype {
	case ArchetypeLace:
		m := filter.Contrast(1.15).
			Concat(filter.Saturation(0.95)).
			Concat(filter.Brightness(1.05))
		m.Apply(pix)
		filter.Unsharp(pix, width, height, 2, 0.5)
	case ArchetypeSilk:
		m := filter.Brightness(1.1).Concat(filter.Contrast(1.05))
		m.Apply(pix)
	default:
		m := filter.Contrast(1.1).Concat(filter.Saturation(1.05))
		m.Apply(pix)
		filter.Unsharp(pix, width, height, 2, 0.5)
	}
}

// PostProcessOptions selects final adjustments applied to the rendered
// canvas. Each adjustment is independently toggleable; factor 1.0 (or
// Sharpen=false) disables the corresponding pass.
type PostProcessOptions struct {
	// Brightness scales color channels. 1.0 = unchanged.
	Brightness float64

	// Contrast stretches channels around mid-gray. 1.0 = unchanged.
	Contrast float64

	// Saturation blends between grayscale and identity. 1.0 = unchanged.
	Saturation float64

	// Sharpen applies a final unsharp pass.
	Sharpen bool
}

// DefaultPostProcessOptions returns the adjustments used when the
// pipeline's post-processing stage is enabled without overrides.
func DefaultPostProcessOptions() PostProcessOptions {
	return PostProcessOptions{
		Brightness: 1.02,
		Contrast:   1.05,
		Saturation: 1.03,
		Sharpen:    true,
	}
}

// PostProcess applies the selected adjustments to a canvas in place.
func PostProcess(canvas *Raster, opts PostProcessOptions) {
	if canvas == nil || canvas.PixelCount() == 0 {
		return
	}

	m := filter.Identity()
	if opts.Brightness != 0 && opts.Brightness != 1 {
		m = m.Concat(filter.Brightness(opts.Brightness))
	}
	if opts.Contrast != 0 && opts.Contrast != 1 {
		m = m.Concat(filter.Contrast(opts.Contrast))
	}
	if opts.Saturation != 0 && opts.Saturation != 1 {
		m = m.Concat(filter.Saturation(opts.Saturation))
	}
	m.Apply(canvas.Pix())

	if opts.Sharpen {
		filter.Unsharp(canvas.Pix(), canvas.Width(), canvas.Height(), 1, 0.4)
	}
}
