package drape

import (
	"context"
	"errors"
	"testing"
)

func testGarment() *Raster {
	g := NewRaster(32, 32)
	checkerboard(g)
	return g
}

func testTexture() *Raster {
	tx := NewRaster(32, 32)
	tx.Fill(128, 128, 128, 255)
	return tx
}

func TestPipelineStateString(t *testing.T) {
	tests := []struct {
		s    PipelineState
		want string
	}{
		{StateUninitialized, "uninitialized"},
		{StateInitializing, "initializing"},
		{StateReady, "ready"},
		{StateProcessing, "processing"},
		{StateDestroyed, "destroyed"},
		{PipelineState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("PipelineState(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestPipelineInitWithInjectedBackend(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	if p.State() != StateUninitialized {
		t.Fatalf("initial state %v, want uninitialized", p.State())
	}

	kind, err := p.Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if kind != KindCPU {
		t.Errorf("Init kind %v, want KindCPU", kind)
	}
	if p.State() != StateReady {
		t.Errorf("state %v, want ready", p.State())
	}

	// Init on a ready pipeline is a no-op.
	if _, err := p.Init(); err != nil {
		t.Errorf("second Init: %v", err)
	}
}

func TestPipelineInitCPUOnly(t *testing.T) {
	ResetBackendProbes()
	t.Cleanup(ResetBackendProbes)

	p := NewPipeline(WithCPUOnly())
	kind, err := p.Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if kind != KindCPU {
		t.Errorf("kind %v, want KindCPU", kind)
	}
	p.Destroy()
}

func TestPipelineDestroyedIsTerminal(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))
	p.Destroy()

	if p.State() != StateDestroyed {
		t.Fatalf("state %v, want destroyed", p.State())
	}
	if _, err := p.Init(); !errors.Is(err, ErrPipelineDestroyed) {
		t.Errorf("Init after Destroy: got %v, want ErrPipelineDestroyed", err)
	}
	if _, err := p.Process(context.Background(), testGarment(), testTexture(), Config{}); !errors.Is(err, ErrPipelineDestroyed) {
		t.Errorf("Process after Destroy: got %v, want ErrPipelineDestroyed", err)
	}

	// Destroy is idempotent.
	p.Destroy()
}

func TestPipelineDestroyDoesNotCloseInjectedBackend(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))
	if _, err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.Destroy()
	if fake.closed {
		t.Error("injected backend closed by Destroy; its owner closes it")
	}
}

func TestPipelineProcessImplicitInit(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	res, err := p.Process(context.Background(), testGarment(), testTexture(), Config{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if p.State() != StateReady {
		t.Errorf("state after Process %v, want ready", p.State())
	}
	if res.Canvas == nil || res.Canvas.Width() != 32 || res.Canvas.Height() != 32 {
		t.Error("result canvas missing or misshaped")
	}
	if res.RenderingMode != KindCPU {
		t.Errorf("RenderingMode %v, want KindCPU", res.RenderingMode)
	}
	if fake.renders != 1 {
		t.Errorf("backend rendered %d times, want 1", fake.renders)
	}
}

func TestPipelineProcessPatternDetection(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	// Zero config: no classification requested.
	res, err := p.Process(context.Background(), testGarment(), testTexture(), Config{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Pattern != nil {
		t.Error("Pattern set without AutoDetectPattern")
	}

	// Auto-detection on a flat gray swatch lands on generic defaults.
	cfg := Config{AutoDetectPattern: true, Intensity: -1}
	res, err = p.Process(context.Background(), testGarment(), testTexture(), cfg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Pattern == nil {
		t.Fatal("Pattern missing with AutoDetectPattern")
	}
	if res.Pattern.Type != ArchetypeGeneric {
		t.Errorf("Pattern.Type %v, want generic", res.Pattern.Type)
	}
	if fake.lastOpts.BlendMode != BlendOverlay || fake.lastOpts.Intensity != 0.8 {
		t.Errorf("render opts %+v, want generic defaults", fake.lastOpts)
	}
}

func TestPipelineProcessOverrides(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	// Explicit intensity and blend mode beat classifier recommendations.
	cfg := Config{
		AutoDetectPattern: true,
		Intensity:         0.25,
		BlendMode:         BlendMultiply,
		BlendModeSet:      true,
	}
	if _, err := p.Process(context.Background(), testGarment(), testTexture(), cfg); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if fake.lastOpts.Intensity != 0.25 {
		t.Errorf("Intensity %v, want 0.25", fake.lastOpts.Intensity)
	}
	if fake.lastOpts.BlendMode != BlendMultiply {
		t.Errorf("BlendMode %v, want multiply", fake.lastOpts.BlendMode)
	}

	// Out-of-range explicit intensity is clamped.
	cfg.Intensity = 3.0
	if _, err := p.Process(context.Background(), testGarment(), testTexture(), cfg); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if fake.lastOpts.Intensity != 1.0 {
		t.Errorf("Intensity %v, want clamped 1.0", fake.lastOpts.Intensity)
	}
}

func TestPipelineProcessWorkingResolution(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	garment := NewRaster(64, 32)
	checkerboard(garment)
	texture := NewRaster(16, 16)
	texture.Fill(90, 90, 90, 255)

	// The garment is bounded to 32 on its longer side; the texture is
	// brought to the same working resolution.
	cfg := Config{MaxTextureSize: 32}
	res, err := p.Process(context.Background(), garment, texture, cfg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Canvas.Width() != 32 || res.Canvas.Height() != 16 {
		t.Errorf("canvas %dx%d, want 32x16", res.Canvas.Width(), res.Canvas.Height())
	}
	if res.MaskStats.TotalPixels != 32*16 {
		t.Errorf("mask stats over %d pixels, want %d", res.MaskStats.TotalPixels, 32*16)
	}
}

func TestPipelineProcessStats(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	for i := 0; i < 3; i++ {
		if _, err := p.Process(context.Background(), testGarment(), testTexture(), Config{}); err != nil {
			t.Fatalf("Process %d: %v", i, err)
		}
	}

	stats := p.Stats()
	if stats.RenderCount != 3 {
		t.Errorf("RenderCount %d, want 3", stats.RenderCount)
	}
	if stats.TotalRenderTimeMs < 0 || stats.LastRenderTimeMs < 0 {
		t.Error("negative render timings")
	}
	want := stats.TotalRenderTimeMs / 3
	if absF(stats.AvgRenderTimeMs-want) > 1e-9 {
		t.Errorf("AvgRenderTimeMs %v, want %v", stats.AvgRenderTimeMs, want)
	}
}

func TestPipelineProcessCancelledContext(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Process(ctx, testGarment(), testTexture(), Config{}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if fake.renders != 0 {
		t.Error("render ran despite cancelled context")
	}
}

func TestPipelineProcessBadSource(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake))

	if _, err := p.Process(context.Background(), 42, testTexture(), Config{}); !errors.Is(err, ErrUnsupportedSourceType) {
		t.Errorf("garment source: got %v, want ErrUnsupportedSourceType", err)
	}
	if _, err := p.Process(context.Background(), testGarment(), []byte{}, Config{}); !errors.Is(err, ErrEmptyData) {
		t.Errorf("texture source: got %v, want ErrEmptyData", err)
	}
	if p.State() != StateReady {
		t.Errorf("state %v after failed Process, want ready", p.State())
	}
}

func TestPipelineProcessRenderError(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakeBackend{kind: KindCPU, supported: true, fail: boom}
	p := NewPipeline(WithBackend(fake))

	if _, err := p.Process(context.Background(), testGarment(), testTexture(), Config{}); !errors.Is(err, boom) {
		t.Errorf("got %v, want backend error", err)
	}
	if p.Stats().RenderCount != 0 {
		t.Error("failed render counted in stats")
	}
}

// maskDropSegmenter excludes everything, standing in for an external
// segmentation model.
type maskDropSegmenter struct{}

func (maskDropSegmenter) Segment(garment, mask *Raster) (*Raster, error) {
	refined := NewRaster(mask.Width(), mask.Height())
	refined.Fill(0, 0, 0, 255)
	return refined, nil
}

// badSegmenter returns a mask with the wrong dimensions.
type badSegmenter struct{}

func (badSegmenter) Segment(garment, mask *Raster) (*Raster, error) {
	return NewRaster(1, 1), nil
}

func TestPipelineSegmenterRefinesMask(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake), WithSegmenter(maskDropSegmenter{}))

	res, err := p.Process(context.Background(), testGarment(), testTexture(), Config{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.MaskStats.Coverage != 0 {
		t.Errorf("coverage %v, want 0 from segmenter", res.MaskStats.Coverage)
	}
}

func TestPipelineSegmenterDimensionMismatch(t *testing.T) {
	fake := &fakeBackend{kind: KindCPU, supported: true}
	p := NewPipeline(WithBackend(fake), WithSegmenter(badSegmenter{}))

	if _, err := p.Process(context.Background(), testGarment(), testTexture(), Config{}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}
