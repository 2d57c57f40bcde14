package drape

import "github.com/gogpu/drape/internal/filter"

// OptimizeMaskForTexture shapes mask edges to suit a fabric archetype
// and returns the adjusted mask. Lace feathers edges with a radius-3 box
// blur so delicate overlap fades out; silk uses a gentler radius-2 blur;
// embroidery sharpens edges to keep stitch boundaries crisp; mesh and
// generic pass through unchanged to preserve the openwork silhouette.
//
// Blurred masks carry intermediate channel values. That is intentional:
// the renderer treats the channel as a continuous blend factor.
func OptimizeMaskForTexture(mask *Raster, archetype Archetype) *Raster {
	switch archetype {
	case ArchetypeLace:
		out := mask.Clone()
		filter.BoxBlur(out.Pix(), out.Width(), out.Height(), 3)
		return out
	case ArchetypeSilk:
		out := mask.Clone()
		filter.BoxBlur(out.Pix(), out.Width(), out.Height(), 2)
		return out
	case ArchetypeEmbroidery:
		out := mask.Clone()
		filter.Convolve3x3(out.Pix(), out.Width(), out.Height(), filter.SharpenKernel)
		return out
	default:
		return mask
	}
}

// SemanticSegmenter refines a heuristic garment mask using an external
// segmentation model. The core ships no implementation; the pipeline
// applies one only when the caller installs it via WithSegmenter.
type SemanticSegmenter interface {
	// Segment returns a refined mask for the garment, same dimensions
	// as the input mask.
	Segment(garment *Raster, mask *Raster) (*Raster, error)
}
