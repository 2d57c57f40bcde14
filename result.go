package drape

// Result is the terminal artifact of one Process call.
type Result struct {
	// Canvas is the rendered image.
	Canvas *Raster

	// RenderingMode records which backend class produced the canvas.
	RenderingMode BackendKind

	// Pattern is the swatch classification, or nil when pattern
	// auto-detection was disabled.
	Pattern *Classification

	// MaskStats summarizes the garment mask at working resolution.
	// Zero coverage means the texture had no visible effect; that is a
	// valid outcome the caller should surface, not an error.
	MaskStats MaskStats

	// RenderTimeMs is the wall time of the full Process call.
	RenderTimeMs float64
}

// PipelineStats accumulates timing across a pipeline's lifetime.
type PipelineStats struct {
	// RenderCount is the number of completed Process calls.
	RenderCount int

	// TotalRenderTimeMs is the summed wall time of completed calls.
	TotalRenderTimeMs float64

	// AvgRenderTimeMs is TotalRenderTimeMs / RenderCount.
	AvgRenderTimeMs float64

	// LastRenderTimeMs is the wall time of the most recent call.
	LastRenderTimeMs float64
}
