// Command drapedemo composites a fabric swatch onto a garment photo.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/drape"
	_ "github.com/gogpu/drape/gpu" // enable GPU compositing
)

func main() {
	var (
		garmentPath = flag.String("garment", "garment.png", "garment image")
		texturePath = flag.String("texture", "swatch.png", "fabric swatch image")
		output      = flag.String("output", "out.png", "output file")
		intensity   = flag.Float64("intensity", -1, "texture strength 0-1, negative = auto")
		mode        = flag.String("mode", "", "blend mode: multiply, overlay, softLight, lace (empty = auto)")
		maxSize     = flag.Int("max-size", drape.DefaultMaxTextureSize, "working resolution bound")
		cpuOnly     = flag.Bool("cpu", false, "force the CPU compositor")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		drape.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := drape.DefaultConfig()
	cfg.Intensity = *intensity
	cfg.MaxTextureSize = *maxSize
	cfg.Debug = *verbose
	if *mode != "" {
		cfg.BlendMode = parseMode(*mode)
		cfg.BlendModeSet = true
	}

	var opts []drape.PipelineOption
	if *cpuOnly {
		opts = append(opts, drape.WithCPUOnly())
	}
	p := drape.NewPipeline(opts...)
	defer p.Destroy()

	res, err := p.Process(context.Background(), *garmentPath, *texturePath, cfg)
	if err != nil {
		log.Fatalf("Failed to composite: %v", err)
	}

	if res.Pattern != nil {
		log.Printf("Pattern: %s (confidence %.2f), blend %s, intensity %.2f",
			res.Pattern.Type, res.Pattern.Confidence,
			res.Pattern.BlendMode, res.Pattern.Intensity)
	}
	log.Printf("Coverage %.1f%%, %s backend, %.1fms",
		res.MaskStats.Coverage*100, res.RenderingMode, res.RenderTimeMs)

	if err := res.Canvas.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Saved %s", *output)
}

func parseMode(s string) drape.BlendMode {
	switch s {
	case "multiply":
		return drape.BlendMultiply
	case "overlay":
		return drape.BlendOverlay
	case "softLight":
		return drape.BlendSoftLight
	case "lace":
		return drape.BlendLace
	default:
		log.Fatalf("Unknown blend mode %q", s)
		return drape.BlendOverlay
	}
}
