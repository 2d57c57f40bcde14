package blend

import (
	"math"
	"testing"
)

func TestMultiplyChan(t *testing.T) {
	tests := []struct {
		name       string
		base, tex  byte
		want       byte
	}{
		{"black base", 0, 200, 0},
		{"black texture", 200, 0, 0},
		{"white base passes texture", 255, 37, 37},
		{"white both", 255, 255, 255},
		{"half half", 128, 128, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MultiplyChan(tt.base, tt.tex)
			if diff := int(got) - int(tt.want); diff < -1 || diff > 1 {
				t.Errorf("MultiplyChan(%d, %d) = %d, want %d (±1)", tt.base, tt.tex, got, tt.want)
			}
		})
	}
}

func TestMultiplyChanWhiteBaseExact(t *testing.T) {
	// White base must pass the texture through pixel-exact.
	for tex := 0; tex <= 255; tex++ {
		if got := MultiplyChan(255, byte(tex)); got != byte(tex) {
			t.Fatalf("MultiplyChan(255, %d) = %d, want %d", tex, got, tex)
		}
	}
}

func TestOverlayChan(t *testing.T) {
	ref := func(base, tex byte) float64 {
		b := float64(base) / 255
		s := float64(tex) / 255
		if b < 0.5 {
			return 2 * b * s
		}
		return 1 - 2*(1-b)*(1-s)
	}

	for _, base := range []byte{0, 10, 64, 127, 128, 129, 200, 255} {
		for _, tex := range []byte{0, 50, 128, 255} {
			got := float64(OverlayChan(base, tex)) / 255
			want := ref(base, tex)
			if math.Abs(got-want) > 2.0/255 {
				t.Errorf("OverlayChan(%d, %d) = %.4f, want %.4f", base, tex, got, want)
			}
		}
	}
}

func TestSoftLightChan(t *testing.T) {
	tests := []struct {
		name      string
		base, tex byte
	}{
		{"mid on mid", 128, 128},
		{"dark texture darkens", 200, 30},
		{"bright texture lightens", 100, 220},
		{"sqrt branch", 200, 255},
		{"low base polynomial branch", 40, 255},
	}

	ref := func(base, tex byte) float64 {
		b := float64(base) / 255
		s := float64(tex) / 255
		if s <= 0.5 {
			return b - (1-2*s)*b*(1-b)
		}
		var d float64
		if b <= 0.25 {
			d = ((16*b-12)*b + 4) * b
		} else {
			d = math.Sqrt(b)
		}
		return b + (2*s-1)*(d-b)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(SoftLightChan(tt.base, tt.tex)) / 255
			want := ref(tt.base, tt.tex)
			if math.Abs(got-want) > 1.0/255 {
				t.Errorf("SoftLightChan(%d, %d) = %.4f, want %.4f", tt.base, tt.tex, got, want)
			}
		})
	}
}

func TestSoftLightMidTextureNeutral(t *testing.T) {
	// Texture at exactly 0.5 leaves the base unchanged.
	for _, base := range []byte{0, 64, 128, 200, 255} {
		b := float64(base) / 255
		s := 127.5 / 255
		want := b - (1-2*s)*b*(1-b)
		got := float64(SoftLightChan(base, 128)) / 255
		if math.Abs(got-want) > 2.0/255 {
			t.Errorf("SoftLightChan(%d, 128) = %.4f, want ~%.4f", base, got, want)
		}
	}
}

func TestLacePixel(t *testing.T) {
	t.Run("bright texture stays near base", func(t *testing.T) {
		// White texture area is a fabric gap: result pulls only 30%
		// toward overlay, keeping the garment visible.
		r, g, b := Pixel(Lace, 100, 100, 100, 255, 255, 255)
		or := OverlayChan(100, 255)
		wantR := Mix(100, or, 0.3)
		if r != wantR || g != wantR || b != wantR {
			t.Errorf("Pixel(Lace, gray, white) = (%d,%d,%d), want all %d", r, g, b, wantR)
		}
	})

	t.Run("dark texture registers strongly", func(t *testing.T) {
		r, _, _ := Pixel(Lace, 200, 200, 200, 20, 20, 20)
		mr := MultiplyChan(200, 20)
		want := Mix(200, mr, 0.7)
		if r != want {
			t.Errorf("Pixel(Lace, light, dark) r = %d, want %d", r, want)
		}
		if r >= 200 {
			t.Errorf("dark lace motif should darken the base, got %d", r)
		}
	})

	t.Run("threshold keys on texture luma", func(t *testing.T) {
		// Pure blue has luma ~29 despite a 255 channel: motif branch.
		r, _, bb := Pixel(Lace, 200, 200, 200, 0, 0, 255)
		if r != Mix(200, MultiplyChan(200, 0), 0.7) {
			t.Errorf("blue texture should use the motif branch, r = %d", r)
		}
		if bb != Mix(200, MultiplyChan(200, 255), 0.7) {
			t.Errorf("unexpected blue channel %d", bb)
		}
	})
}

func TestLaceAlpha(t *testing.T) {
	if got := LaceAlpha(255, 0, 1); got != 255 {
		t.Errorf("transparent texture must not attenuate alpha, got %d", got)
	}
	if got := LaceAlpha(255, 255, 0); got != 255 {
		t.Errorf("zero intensity must not attenuate alpha, got %d", got)
	}
	got := LaceAlpha(255, 255, 1)
	if got != toByte(0.9) {
		t.Errorf("full attenuation = %d, want %d", got, toByte(0.9))
	}
}

func TestMix(t *testing.T) {
	tests := []struct {
		a, b byte
		t    float64
		want byte
	}{
		{0, 255, 0, 0},
		{0, 255, 1, 255},
		{0, 255, 0.5, 128},
		{100, 200, 0.25, 125},
		{200, 100, 0.5, 150},
	}
	for _, tt := range tests {
		if got := Mix(tt.a, tt.b, tt.t); got != tt.want {
			t.Errorf("Mix(%d, %d, %v) = %d, want %d", tt.a, tt.b, tt.t, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Multiply, "multiply"},
		{Overlay, "overlay"},
		{SoftLight, "softLight"},
		{Lace, "lace"},
		{Mode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestLuma(t *testing.T) {
	if got := Luma(255, 255, 255); got != 255 {
		t.Errorf("Luma(white) = %v, want 255", got)
	}
	if got := Luma(0, 0, 0); got != 0 {
		t.Errorf("Luma(black) = %v, want 0", got)
	}
	// Green dominates the weighting.
	if Luma(0, 255, 0) <= Luma(255, 0, 0) {
		t.Error("green luma should exceed red luma")
	}
}
