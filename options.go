package drape

// Config holds the per-request processing options recognized by the
// pipeline. Zero-value fields fall back to defaults where documented.
type Config struct {
	// ExcludeSkin removes skin-tone pixels from the garment mask.
	ExcludeSkin bool

	// ExcludeBackground removes flat border-colored regions from the
	// garment mask.
	ExcludeBackground bool

	// MorphologyIterations is the number of mask opening rounds.
	MorphologyIterations int

	// MinRegionSize removes 4-connected mask regions smaller than this
	// pixel count.
	MinRegionSize int

	// Intensity is the texture application strength in [0, 1]. A
	// negative value means "not supplied": the classifier's
	// recommendation is used instead.
	Intensity float64

	// AutoDetectPattern classifies the texture and derives blend mode
	// and intensity defaults from the winning archetype.
	AutoDetectPattern bool

	// BlendMode overrides the blend mode when AutoDetectPattern is off
	// or the caller wants a fixed mode. Ignored when AutoDetectPattern
	// is on and BlendModeSet is false.
	BlendMode BlendMode

	// BlendModeSet marks BlendMode as an explicit caller choice.
	BlendModeSet bool

	// OptimizeMask applies archetype-specific mask edge shaping.
	OptimizeMask bool

	// PostProcess applies final brightness/contrast/saturation/sharpen
	// adjustments to the rendered canvas.
	PostProcess bool

	// PostProcessOptions configures the post-processing stage. The zero
	// value selects DefaultPostProcessOptions.
	PostProcessOptions PostProcessOptions

	// MaxTextureSize bounds the working resolution: garment, texture,
	// and mask are downscaled so no side exceeds it. Zero selects
	// DefaultMaxTextureSize. Never upscales.
	MaxTextureSize int

	// Debug enables per-stage diagnostic logging.
	Debug bool
}

// DefaultMaxTextureSize bounds the shared working resolution when the
// caller does not set one.
const DefaultMaxTextureSize = 2048

// DefaultConfig returns the standard processing options.
func DefaultConfig() Config {
	return Config{
		ExcludeSkin:          true,
		ExcludeBackground:    true,
		MorphologyIterations: 1,
		MinRegionSize:        64,
		Intensity:            -1,
		AutoDetectPattern:    true,
		OptimizeMask:         true,
		PostProcess:          false,
		MaxTextureSize:       DefaultMaxTextureSize,
	}
}

// maskOptions derives the mask generator options from the config.
func (c Config) maskOptions() MaskOptions {
	return MaskOptions{
		ExcludeSkin:          c.ExcludeSkin,
		ExcludeBackground:    c.ExcludeBackground,
		MorphologyIterations: c.MorphologyIterations,
		MinRegionSize:        c.MinRegionSize,
	}
}

// RenderOptions is the parameter set consumed by a render backend.
// Derived by the pipeline from the classification and caller overrides.
type RenderOptions struct {
	// Intensity is the texture application strength in [0, 1].
	Intensity float64

	// BlendMode selects the per-pixel combination rule.
	BlendMode BlendMode

	// Debug enables backend diagnostic logging.
	Debug bool
}

// clampIntensity limits intensity to [0, 1].
func clampIntensity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PipelineOption configures a Pipeline during creation.
//
// Example:
//
//	// Default backend selection (GPU if available)
//	p := drape.NewPipeline()
//
//	// Force the CPU path
//	p := drape.NewPipeline(drape.WithCPUOnly())
type PipelineOption func(*pipelineOptions)

// pipelineOptions holds optional configuration for Pipeline creation.
type pipelineOptions struct {
	preferGPU bool
	segmenter SemanticSegmenter
	backend   Backend
}

// defaultPipelineOptions returns the default pipeline options.
func defaultPipelineOptions() pipelineOptions {
	return pipelineOptions{
		preferGPU: true,
	}
}

// WithCPUOnly restricts backend selection to CPU-class backends.
func WithCPUOnly() PipelineOption {
	return func(o *pipelineOptions) {
		o.preferGPU = false
	}
}

// WithBackend injects a specific backend, bypassing registry selection.
// Use this for dependency injection of custom or test backends.
func WithBackend(b Backend) PipelineOption {
	return func(o *pipelineOptions) {
		o.backend = b
	}
}

// WithSegmenter installs an external semantic segmentation model that
// refines the heuristic garment mask. Without one the heuristic mask is
// used as-is.
func WithSegmenter(s SemanticSegmenter) PipelineOption {
	return func(o *pipelineOptions) {
		o.segmenter = s
	}
}
