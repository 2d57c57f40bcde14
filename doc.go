// Package drape composites fabric swatch textures onto line-art garment
// images. It extracts statistical features from a swatch, classifies the
// fabric pattern against known archetypes (lace, silk, embroidery, mesh),
// segments the garment into a texture-inclusion mask that protects skin
// and background, and blends the texture through the mask using one of
// four blend modes.
//
// # Quick Start
//
//	import "github.com/gogpu/drape"
//
//	p := drape.NewPipeline()
//	defer p.Destroy()
//
//	res, err := p.Process(ctx, garmentPNG, swatchPNG, drape.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	blob, _ := drape.Export(res.Canvas, drape.FormatPNG, 0)
//
// # Rendering Backends
//
// Compositing runs on one of two interchangeable backends with identical
// blending semantics: a CPU pixel-buffer compositor (always available)
// and a wgpu compute-shader compositor. The GPU backend is opt-in via
// blank import:
//
//	import _ "github.com/gogpu/drape/gpu" // enables GPU compositing
//
// The pipeline probes registered backends in priority order and falls
// back to the CPU path when no GPU is available.
//
// # Concurrency
//
// A Pipeline instance is not safe for concurrent use; create one
// Pipeline per goroutine. Distinct Pipeline instances are fully
// isolated. The process-wide backend registry is safe for concurrent
// access.
package drape
