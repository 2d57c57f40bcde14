package filter

// BoxBlur applies a separable box blur of the given radius to a packed
// RGBA buffer in place. Each output pixel is the unweighted mean of the
// (2*radius+1)-wide window, clamped at image edges. Two passes, one per
// axis; the horizontal pass writes to scratch, the vertical pass writes
// back to pix.
func BoxBlur(pix []uint8, width, height, radius int) {
	if radius <= 0 || width <= 0 || height <= 0 {
		return
	}

	scratch := make([]uint8, len(pix))
	blurAxis(pix, scratch, width, height, radius, true)
	blurAxis(scratch, pix, width, height, radius, false)
}

// blurAxis runs one box-blur pass along x (horizontal=true) or y.
// Uses a running sum per channel so the cost is independent of radius.
func blurAxis(src, dst []uint8, width, height, radius int, horizontal bool) {
	length, lines := width, height
	if !horizontal {
		length, lines = height, width
	}

	at := func(line, i int) int {
		if horizontal {
			return (line*width + i) * 4
		}
		return (i*width + line) * 4
	}

	for line := range lines {
		var sum [4]int
		count := 0

		// Prime the window around index 0.
		for i := -radius; i <= radius; i++ {
			j := clampIndex(i, length)
			o := at(line, j)
			for c := range 4 {
				sum[c] += int(src[o+c])
			}
			count++
		}

		for i := range length {
			o := at(line, i)
			for c := range 4 {
				dst[o+c] = uint8((sum[c] + count/2) / count)
			}

			// Slide the window: drop i-radius, add i+radius+1.
			drop := at(line, clampIndex(i-radius, length))
			add := at(line, clampIndex(i+radius+1, length))
			for c := range 4 {
				sum[c] += int(src[add+c]) - int(src[drop+c])
			}
		}
	}
}

// clampIndex clamps i into [0, length).
func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}
