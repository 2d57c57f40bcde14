package drape

import "math"

// FeatureVector holds the statistical and structural features extracted
// from a swatch. All values are pure functions of the pixel data.
type FeatureVector struct {
	// Brightness is the mean Rec.601 luma over all pixels, 0-255.
	Brightness float64

	// EdgeDensity is the fraction of interior pixels whose luma differs
	// from the right or lower neighbor by more than the edge threshold.
	EdgeDensity float64

	// Transparency is the fraction of pixels with alpha below 200.
	// Near-opaque antialiasing edges count as opaque.
	Transparency float64

	// ColorVariance measures how unevenly pixels distribute over a
	// coarse 8x8x8 color quantization: variance of bucket occupancy
	// around the mean occupancy, normalized by the unique-bucket count.
	ColorVariance float64

	// UniqueColors is the number of occupied quantization buckets.
	UniqueColors int

	// PatternScore estimates self-similarity under small translations,
	// 0-1. High values indicate repeating ornamental structure.
	PatternScore float64

	// Smoothness is 1 - min(1, meanGradientMagnitude/100).
	Smoothness float64

	// ContrastRatio is (maxLuma+5)/(minLuma+5), always >= 1 in practice.
	ContrastRatio float64
}

// Feature extraction thresholds.
const (
	featureAlphaOpaque   = 200 // alpha at or above this counts as opaque
	featureEdgeThreshold = 30  // luma delta that counts as an edge
	featureMatchDelta    = 20  // luma delta that still counts as a pattern match
	featureGridStep      = 8   // sampling stride for the self-similarity probe
	featureMaxOffset     = 32  // largest translation probed for self-similarity
)

// ExtractFeatures computes the feature vector of a swatch.
// Returns ErrZeroArea for an empty image.
func ExtractFeatures(swatch *Raster) (FeatureVector, error) {
	if swatch == nil || swatch.PixelCount() == 0 {
		return FeatureVector{}, ErrZeroArea
	}

	width := swatch.Width()
	height := swatch.Height()
	pix := swatch.Pix()
	total := float64(width * height)

	// Precompute the luma plane once; every feature below reads it.
	luma := make([]float64, width*height)
	var lumaSum float64
	minLuma, maxLuma := 255.0, 0.0
	transparent := 0
	var buckets [512]int

	for i, p := 0, 0; p < len(pix); i, p = i+1, p+4 {
		l := lumaOf(pix[p], pix[p+1], pix[p+2])
		luma[i] = l
		lumaSum += l
		if l < minLuma {
			minLuma = l
		}
		if l > maxLuma {
			maxLuma = l
		}
		if pix[p+3] < featureAlphaOpaque {
			transparent++
		}
		bucket := int(pix[p]>>5)<<6 | int(pix[p+1]>>5)<<3 | int(pix[p+2]>>5)
		buckets[bucket]++
	}

	fv := FeatureVector{
		Brightness:    lumaSum / total,
		Transparency:  float64(transparent) / total,
		ContrastRatio: (maxLuma + 5) / (minLuma + 5),
	}

	fv.ColorVariance, fv.UniqueColors = bucketVariance(buckets[:], total)
	fv.EdgeDensity, fv.Smoothness = gradientFeatures(luma, width, height)
	fv.PatternScore = selfSimilarity(luma, width, height)

	return fv, nil
}

// bucketVariance computes occupancy variance over the non-empty
// quantization buckets, normalized by the unique-bucket count.
func bucketVariance(buckets []int, total float64) (variance float64, unique int) {
	for _, c := range buckets {
		if c > 0 {
			unique++
		}
	}
	if unique == 0 {
		return 0, 0
	}

	mean := total / float64(unique)
	var sum float64
	for _, c := range buckets {
		if c > 0 {
			d := float64(c) - mean
			sum += d * d
		}
	}
	return sum / float64(unique), unique
}

// gradientFeatures computes edge density and smoothness in one pass over
// the interior pixels (those with both a right and a lower neighbor).
func gradientFeatures(luma []float64, width, height int) (edgeDensity, smoothness float64) {
	if width < 2 || height < 2 {
		return 0, 1
	}

	edges := 0
	var gradSum float64
	interior := 0

	for y := 0; y < height-1; y++ {
		row := y * width
		for x := 0; x < width-1; x++ {
			l := luma[row+x]
			h := luma[row+x+1] - l
			v := luma[row+width+x] - l
			if math.Abs(h) > featureEdgeThreshold || math.Abs(v) > featureEdgeThreshold {
				edges++
			}
			gradSum += math.Sqrt(h*h + v*v)
			interior++
		}
	}

	edgeDensity = float64(edges) / float64(interior)
	smoothness = 1 - math.Min(1, gradSum/float64(interior)/100)
	return edgeDensity, smoothness
}

// selfSimilarity probes translational repetition: luma is compared
// between sample points and the same points shifted by a grid of small
// offsets. Each offset's match rate feeds the average. An image too
// small to sample scores zero.
func selfSimilarity(luma []float64, width, height int) float64 {
	margin := featureMaxOffset
	if width <= 2*margin || height <= 2*margin {
		// Shrink the probe for small swatches.
		margin = min(width, height) / 4
		if margin < featureGridStep {
			return 0
		}
	}

	var offsetSum float64
	offsets := 0

	for dy := -margin; dy <= margin; dy += featureGridStep {
		for dx := -margin; dx <= margin; dx += featureGridStep {
			if dx == 0 && dy == 0 {
				continue
			}

			matches, samples := 0, 0
			for y := margin; y < height-margin; y += featureGridStep {
				for x := margin; x < width-margin; x += featureGridStep {
					base := luma[y*width+x]
					shifted := luma[(y+dy)*width+x+dx]
					if math.Abs(base-shifted) < featureMatchDelta {
						matches++
					}
					samples++
				}
			}
			if samples == 0 {
				continue
			}
			offsetSum += float64(matches) / float64(samples)
			offsets++
		}
	}

	if offsets == 0 {
		return 0
	}
	return offsetSum / float64(offsets)
}
