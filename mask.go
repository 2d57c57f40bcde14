package drape

import "math"

// MaskOptions controls garment mask generation.
type MaskOptions struct {
	// ExcludeSkin removes pixels matching skin-tone heuristics.
	ExcludeSkin bool

	// ExcludeBackground removes flat regions matching border colors.
	ExcludeBackground bool

	// MorphologyIterations is the number of opening rounds (erosion
	// followed by dilation) applied to remove isolated noise.
	MorphologyIterations int

	// MinRegionSize flips 4-connected included regions smaller than
	// this pixel count to excluded. Zero disables the pass.
	MinRegionSize int
}

// DefaultMaskOptions returns the mask options used by the pipeline when
// the caller does not override them.
func DefaultMaskOptions() MaskOptions {
	return MaskOptions{
		ExcludeSkin:          true,
		ExcludeBackground:    true,
		MorphologyIterations: 1,
		MinRegionSize:        64,
	}
}

// MaskStats summarizes an inclusion mask.
type MaskStats struct {
	TotalPixels    int
	IncludedPixels int
	ExcludedPixels int

	// Coverage is IncludedPixels / TotalPixels.
	Coverage float64
}

// Mask generation thresholds.
const (
	maskIncluded = 255
	maskExcluded = 0

	// maskThreshold separates include from exclude when reading a mask
	// channel. Values above it count as included.
	maskThreshold = 127

	bgUniformityDist   = 15.0 // RGB distance for a band pixel to match its mean
	bgUniformityFrac   = 0.8  // band fraction that must match before it becomes a reference
	bgMatchScale       = 1.5  // reference match distance = scale * uniformity distance
	bgEdgeThreshold    = 20.0 // luma gradient that counts as local texture
	bgEdgeRadius       = 5    // neighborhood radius for local edge density
	bgLowEdgeDensity   = 0.05 // below this the neighborhood counts as flat
	bgBorderBandFrac   = 0.10 // border band size as fraction of the shorter dimension
	skinLumaMin        = 80.0
	skinLumaMax        = 220.0
	skinRedBlueDelta   = 20
	skinRedGreenRatioL = 1.05
	skinRedGreenRatioH = 2.0
)

// GenerateMask produces the texture-inclusion mask for a garment image.
// The mask has the garment's dimensions; channel values are exactly 0
// (exclude) or 255 (include). An all-background or all-skin garment
// yields a near-empty mask, which is a valid result, not an error.
func GenerateMask(garment *Raster, opts MaskOptions) (*Raster, MaskStats, error) {
	if garment == nil || garment.PixelCount() == 0 {
		return nil, MaskStats{}, ErrZeroArea
	}

	width := garment.Width()
	height := garment.Height()
	values := make([]uint8, width*height)
	for i := range values {
		values[i] = maskIncluded
	}

	if opts.ExcludeBackground {
		excludeBackground(garment, values)
	}
	if opts.ExcludeSkin {
		excludeSkin(garment, values)
	}
	for range opts.MorphologyIterations {
		erode3x3(values, width, height)
		dilate3x3(values, width, height)
	}
	if opts.MinRegionSize > 0 {
		removeSmallRegions(values, width, height, opts.MinRegionSize)
	}

	mask := NewRaster(width, height)
	pix := mask.Pix()
	included := 0
	for i, v := range values {
		if v > maskThreshold {
			included++
		}
		o := i * 4
		pix[o] = v
		pix[o+1] = v
		pix[o+2] = v
		pix[o+3] = 255
	}

	total := width * height
	stats := MaskStats{
		TotalPixels:    total,
		IncludedPixels: included,
		ExcludedPixels: total - included,
		Coverage:       float64(included) / float64(total),
	}

	Logger().Debug("mask generated",
		"width", width, "height", height,
		"coverage", stats.Coverage,
		"excludeSkin", opts.ExcludeSkin,
		"excludeBackground", opts.ExcludeBackground)

	return mask, stats, nil
}

// ReadMaskStats recomputes MaskStats from an existing mask raster.
func ReadMaskStats(mask *Raster) MaskStats {
	total := mask.PixelCount()
	if total == 0 {
		return MaskStats{}
	}
	pix := mask.Pix()
	included := 0
	for i := 0; i < len(pix); i += 4 {
		if pix[i] > maskThreshold {
			included++
		}
	}
	return MaskStats{
		TotalPixels:    total,
		IncludedPixels: included,
		ExcludedPixels: total - included,
		Coverage:       float64(included) / float64(total),
	}
}

// excludeBackground samples a band on each image edge; bands whose color
// is sufficiently uniform register their mean as a background reference.
// Pixels are then excluded when they match a reference color or sit in a
// flat low-texture neighborhood. With no uniform border band the garment
// is assumed to fill the frame and nothing is excluded.
func excludeBackground(garment *Raster, values []uint8) {
	width := garment.Width()
	height := garment.Height()

	band := min(width, height) / 10
	if band < 1 {
		band = 1
	}

	var refs [][3]float64
	addBand := func(x0, y0, x1, y1 int) {
		if mean, ok := uniformBandMean(garment, x0, y0, x1, y1); ok {
			refs = append(refs, mean)
		}
	}
	addBand(0, 0, width, band)               // top
	addBand(0, height-band, width, height)   // bottom
	addBand(0, 0, band, height)              // left
	addBand(width-band, 0, width, height)    // right

	if len(refs) == 0 {
		return
	}

	density := localEdgeDensity(garment, bgEdgeRadius)
	matchDist := bgMatchScale * bgUniformityDist

	pix := garment.Pix()
	for i := 0; i < len(values); i++ {
		o := i * 4
		r := float64(pix[o])
		g := float64(pix[o+1])
		b := float64(pix[o+2])

		matched := false
		for _, ref := range refs {
			if rgbDistance(r, g, b, ref) < matchDist {
				matched = true
				break
			}
		}
		if matched || density[i] < bgLowEdgeDensity {
			values[i] = maskExcluded
		}
	}
}

// uniformBandMean computes the mean color of the given rectangle and
// reports whether enough of its pixels sit close to that mean for the
// band to act as a background reference.
func uniformBandMean(garment *Raster, x0, y0, x1, y1 int) ([3]float64, bool) {
	pix := garment.Pix()
	width := garment.Width()

	var sum [3]float64
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			o := (y*width + x) * 4
			sum[0] += float64(pix[o])
			sum[1] += float64(pix[o+1])
			sum[2] += float64(pix[o+2])
			count++
		}
	}
	if count == 0 {
		return [3]float64{}, false
	}

	mean := [3]float64{sum[0] / float64(count), sum[1] / float64(count), sum[2] / float64(count)}

	near := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			o := (y*width + x) * 4
			if rgbDistance(float64(pix[o]), float64(pix[o+1]), float64(pix[o+2]), mean) < bgUniformityDist {
				near++
			}
		}
	}

	return mean, float64(near)/float64(count) > bgUniformityFrac
}

// rgbDistance is the Euclidean distance between a pixel and a reference.
func rgbDistance(r, g, b float64, ref [3]float64) float64 {
	dr := r - ref[0]
	dg := g - ref[1]
	db := b - ref[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// localEdgeDensity returns, per pixel, the fraction of its square
// neighborhood whose luma gradient exceeds the edge threshold. Edges are
// precomputed into a bitmap and counted through a summed-area table, so
// the per-pixel cost is independent of the radius.
func localEdgeDensity(garment *Raster, radius int) []float64 {
	width := garment.Width()
	height := garment.Height()
	pix := garment.Pix()

	luma := make([]float64, width*height)
	for i, o := 0, 0; o < len(pix); i, o = i+1, o+4 {
		luma[i] = lumaOf(pix[o], pix[o+1], pix[o+2])
	}

	// Edge bitmap: gradient above threshold in either axis.
	edges := make([]uint8, width*height)
	for y := range height {
		for x := range width {
			i := y*width + x
			if x+1 < width && math.Abs(luma[i+1]-luma[i]) > bgEdgeThreshold {
				edges[i] = 1
				continue
			}
			if y+1 < height && math.Abs(luma[i+width]-luma[i]) > bgEdgeThreshold {
				edges[i] = 1
			}
		}
	}

	// Summed-area table, one row and column of zero padding.
	sw := width + 1
	sat := make([]int32, sw*(height+1))
	for y := range height {
		var rowSum int32
		for x := range width {
			rowSum += int32(edges[y*width+x])
			sat[(y+1)*sw+x+1] = sat[y*sw+x+1] + rowSum
		}
	}

	density := make([]float64, width*height)
	for y := range height {
		y0 := max(0, y-radius)
		y1 := min(height-1, y+radius)
		for x := range width {
			x0 := max(0, x-radius)
			x1 := min(width-1, x+radius)
			count := sat[(y1+1)*sw+x1+1] - sat[y0*sw+x1+1] - sat[(y1+1)*sw+x0] + sat[y0*sw+x0]
			area := (y1 - y0 + 1) * (x1 - x0 + 1)
			density[y*width+x] = float64(count) / float64(area)
		}
	}
	return density
}

// excludeSkin removes pixels matching skin-tone heuristics: two HSV
// ranges covering the common tone spread, plus an RGB-domain rule that
// catches tones the HSV ranges miss.
func excludeSkin(garment *Raster, values []uint8) {
	pix := garment.Pix()
	for i := 0; i < len(values); i++ {
		o := i * 4
		if isSkinTone(pix[o], pix[o+1], pix[o+2]) {
			values[i] = maskExcluded
		}
	}
}

// isSkinTone reports whether an RGB pixel falls in the skin-tone ranges.
func isSkinTone(r, g, b uint8) bool {
	h, s, v := rgbToHSV(r, g, b)

	if h <= 25 && s >= 0.23 && s <= 0.68 && v >= 0.35 && v <= 0.95 {
		return true
	}
	if h > 25 && h <= 50 && s >= 0.15 && s <= 0.68 && v >= 0.20 && v <= 0.95 {
		return true
	}

	// RGB fallback: warm tones ordered r > g > b with bounded ratios.
	if r > g && g > b && int(r)-int(b) > skinRedBlueDelta {
		ratio := float64(r) / float64(g)
		luma := lumaOf(r, g, b)
		if ratio > skinRedGreenRatioL && ratio < skinRedGreenRatioH &&
			luma >= skinLumaMin && luma <= skinLumaMax {
			return true
		}
	}
	return false
}

// rgbToHSV converts 8-bit RGB to hue (degrees 0-360), saturation and
// value (both 0-1).
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	v = maxC
	if maxC > 0 {
		s = delta / maxC
	}
	if delta == 0 {
		return 0, s, v
	}

	switch maxC {
	case rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// erode3x3 applies a 3x3 minimum filter to the mask channel in place.
func erode3x3(values []uint8, width, height int) {
	morph3x3(values, width, height, true)
}

// dilate3x3 applies a 3x3 maximum filter to the mask channel in place.
func dilate3x3(values []uint8, width, height int) {
	morph3x3(values, width, height, false)
}

func morph3x3(values []uint8, width, height int, minimum bool) {
	src := make([]uint8, len(values))
	copy(src, values)

	for y := range height {
		for x := range width {
			best := src[y*width+x]
			for dy := -1; dy <= 1; dy++ {
				sy := y + dy
				if sy < 0 || sy >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					sx := x + dx
					if sx < 0 || sx >= width {
						continue
					}
					v := src[sy*width+sx]
					if minimum && v < best || !minimum && v > best {
						best = v
					}
				}
			}
			values[y*width+x] = best
		}
	}
}

// removeSmallRegions labels 4-connected included components with an
// explicit flood-fill stack and flips components smaller than minSize to
// excluded. Iterative to keep stack depth bounded on large regions.
func removeSmallRegions(values []uint8, width, height, minSize int) {
	visited := make([]bool, len(values))
	stack := make([]int, 0, 1024)
	region := make([]int, 0, 1024)

	for start := range values {
		if visited[start] || values[start] <= maskThreshold {
			continue
		}

		stack = append(stack[:0], start)
		region = region[:0]
		visited[start] = true

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region = append(region, i)

			x := i % width
			y := i / width
			push := func(n int) {
				if !visited[n] && values[n] > maskThreshold {
					visited[n] = true
					stack = append(stack, n)
				}
			}
			if x > 0 {
				push(i - 1)
			}
			if x < width-1 {
				push(i + 1)
			}
			if y > 0 {
				push(i - width)
			}
			if y < height-1 {
				push(i + width)
			}
		}

		if len(region) < minSize {
			for _, i := range region {
				values[i] = maskExcluded
			}
		}
	}
}
