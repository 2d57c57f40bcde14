package drape

import (
	"context"
	"fmt"
	"time"
)

// PipelineState tracks the controller lifecycle.
type PipelineState int

// Pipeline states. Destroyed is terminal.
const (
	StateUninitialized PipelineState = iota
	StateInitializing
	StateReady
	StateProcessing
	StateDestroyed
)

// String returns the state name.
func (s PipelineState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateProcessing:
		return "processing"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Pipeline orchestrates the full compositing sequence: decode, mask
// generation, pattern classification, working-resolution optimization,
// rendering, and post-processing.
//
// A Pipeline is not safe for concurrent use; create one per goroutine.
// Distinct instances are fully isolated.
type Pipeline struct {
	state     PipelineState
	backend   Backend
	injected  bool
	preferGPU bool
	segmenter SemanticSegmenter
	stats     PipelineStats
}

// NewPipeline creates a pipeline. Backend selection is deferred to the
// first Init or Process call.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	o := defaultPipelineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{
		state:     StateUninitialized,
		backend:   o.backend,
		injected:  o.backend != nil,
		preferGPU: o.preferGPU,
		segmenter: o.segmenter,
	}
}

// Init selects a render backend and moves the pipeline to Ready.
// Returns the kind of the selected backend. Calling Init on a Ready
// pipeline is a no-op; calling it on a destroyed pipeline fails.
func (p *Pipeline) Init() (BackendKind, error) {
	switch p.state {
	case StateDestroyed:
		return 0, ErrPipelineDestroyed
	case StateReady, StateProcessing:
		return p.backend.Kind(), nil
	}

	p.state = StateInitializing
	if p.backend == nil {
		b, err := selectBackend(p.preferGPU)
		if err != nil {
			p.state = StateUninitialized
			return 0, err
		}
		p.backend = b
	}
	p.state = StateReady

	caps := p.backend.Capabilities()
	Logger().Info("render backend selected",
		"backend", caps.Name, "kind", caps.Kind.String(),
		"maxImageDim", caps.MaxImageDim)

	return p.backend.Kind(), nil
}

// State returns the current lifecycle state.
func (p *Pipeline) State() PipelineState { return p.state }

// Stats returns accumulated timing statistics.
func (p *Pipeline) Stats() PipelineStats { return p.stats }

// Destroy releases backend resources. Terminal: the pipeline cannot be
// reused afterwards. Injected backends are not closed; their owner is.
func (p *Pipeline) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	if p.backend != nil && !p.injected {
		p.backend.Close()
	}
	p.backend = nil
	p.state = StateDestroyed
}

// Process runs the full compositing sequence. Garment and texture
// sources accept the types documented on DecodeSource. An uninitialized
// pipeline initializes implicitly. The context is checked between
// stages; pixel work already underway runs to completion.
func (p *Pipeline) Process(ctx context.Context, garmentSrc, textureSrc any, cfg Config) (*Result, error) {
	if p.state == StateDestroyed {
		return nil, ErrPipelineDestroyed
	}
	if p.state != StateReady {
		if _, err := p.Init(); err != nil {
			return nil, err
		}
	}

	p.state = StateProcessing
	defer func() {
		if p.state == StateProcessing {
			p.state = StateReady
		}
	}()

	start := time.Now()
	log := Logger()

	garment, err := DecodeSource(garmentSrc)
	if err != nil {
		return nil, fmt.Errorf("drape: garment source: %w", err)
	}
	texture, err := DecodeSource(textureSrc)
	if err != nil {
		return nil, fmt.Errorf("drape: texture source: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask, maskStats, err := GenerateMask(garment, cfg.maskOptions())
	if err != nil {
		return nil, err
	}
	if p.segmenter != nil {
		refined, err := p.segmenter.Segment(garment, mask)
		if err != nil {
			return nil, fmt.Errorf("drape: semantic segmentation: %w", err)
		}
		if refined.Width() != mask.Width() || refined.Height() != mask.Height() {
			return nil, ErrDimensionMismatch
		}
		mask = refined
		maskStats = ReadMaskStats(mask)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pattern *Classification
	if cfg.AutoDetectPattern {
		c, err := Classify(texture)
		if err != nil {
			return nil, err
		}
		pattern = &c
		if cfg.Debug {
			log.Debug("pattern classified",
				"type", c.Type.String(),
				"confidence", c.Confidence,
				"blendMode", c.BlendMode.String(),
				"intensity", c.Intensity)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Shared working resolution: bound the garment, never upscale, and
	// bring texture and mask to the same dimensions.
	maxSize := cfg.MaxTextureSize
	if maxSize <= 0 {
		maxSize = DefaultMaxTextureSize
	}
	width, height := FitWithin(garment, maxSize)
	if width != garment.Width() || height != garment.Height() {
		garment = Resize(garment, width, height)
	}
	if texture.Width() != width || texture.Height() != height {
		texture = Resize(texture, width, height)
	}
	if mask.Width() != width || mask.Height() != height {
		mask = ResizeNearest(mask, width, height)
		maskStats = ReadMaskStats(mask)
	}
	if cfg.Debug {
		log.Debug("working resolution",
			"width", width, "height", height, "coverage", maskStats.Coverage)
	}

	archetype := ArchetypeGeneric
	if pattern != nil {
		archetype = pattern.Type
	}
	if cfg.AutoDetectPattern {
		PreprocessTexture(texture, archetype)
	}
	if cfg.OptimizeMask {
		mask = OptimizeMaskForTexture(mask, archetype)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := p.renderOptions(cfg, pattern)
	canvas, err := p.backend.Render(garment, texture, mask, opts)
	if err != nil {
		return nil, err
	}

	if cfg.PostProcess {
		ppo := cfg.PostProcessOptions
		if ppo == (PostProcessOptions{}) {
			ppo = DefaultPostProcessOptions()
		}
		PostProcess(canvas, ppo)
	}

	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	p.stats.RenderCount++
	p.stats.TotalRenderTimeMs += elapsed
	p.stats.AvgRenderTimeMs = p.stats.TotalRenderTimeMs / float64(p.stats.RenderCount)
	p.stats.LastRenderTimeMs = elapsed

	return &Result{
		Canvas:        canvas,
		RenderingMode: p.backend.Kind(),
		Pattern:       pattern,
		MaskStats:     maskStats,
		RenderTimeMs:  elapsed,
	}, nil
}

// renderOptions derives the final render parameters. An explicit caller
// intensity (non-negative) overrides the classifier recommendation; an
// explicit blend mode does the same.
func (p *Pipeline) renderOptions(cfg Config, pattern *Classification) RenderOptions {
	opts := RenderOptions{
		Intensity: 0.8,
		BlendMode: BlendOverlay,
		Debug:     cfg.Debug,
	}
	if pattern != nil {
		opts.Intensity = pattern.Intensity
		opts.BlendMode = pattern.BlendMode
	}
	if cfg.Intensity >= 0 {
		opts.Intensity = clampIntensity(cfg.Intensity)
	}
	if cfg.BlendModeSet {
		opts.BlendMode = cfg.BlendMode
	}
	return opts
}
