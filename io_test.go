package drape

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeSourceRasterClones(t *testing.T) {
	orig := NewRaster(4, 4)
	orig.Fill(10, 20, 30, 255)

	got, err := DecodeSource(orig)
	if err != nil {
		t.Fatalf("DecodeSource: %v", err)
	}
	// Mutating the result must not touch the original.
	got.Fill(0, 0, 0, 0)
	if r, _, _, _ := orig.RGBA(0, 0); r != 10 {
		t.Error("DecodeSource returned the original raster, not a clone")
	}
}

func TestDecodeSourceImage(t *testing.T) {
	src := NewRaster(3, 2)
	src.Fill(50, 60, 70, 255)

	// *Raster implements image.Image; pass it as one.
	got, err := DecodeSource(src.ToImage())
	if err != nil {
		t.Fatalf("DecodeSource: %v", err)
	}
	if got.Width() != 3 || got.Height() != 2 {
		t.Errorf("dimensions %dx%d, want 3x2", got.Width(), got.Height())
	}
	if r, g, b, a := got.RGBA(1, 1); r != 50 || g != 60 || b != 70 || a != 255 {
		t.Errorf("pixel (%d,%d,%d,%d), want (50,60,70,255)", r, g, b, a)
	}
}

func TestDecodeSourceUnsupported(t *testing.T) {
	for _, src := range []any{nil, 42, 3.14, (*Raster)(nil)} {
		if _, err := DecodeSource(src); !errors.Is(err, ErrUnsupportedSourceType) {
			t.Errorf("DecodeSource(%T): got %v, want ErrUnsupportedSourceType", src, err)
		}
	}
}

func TestDecodeBytesEmpty(t *testing.T) {
	if _, err := DecodeBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("got %v, want ErrEmptyData", err)
	}
}

func TestDecodeBytesGarbage(t *testing.T) {
	if _, err := DecodeBytes([]byte("not an image")); !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("got %v, want ErrDecodeFailure", err)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	src := NewRaster(8, 6)
	checkerboard(src)
	src.SetRGBA(3, 3, 200, 100, 50, 128)

	data, err := Export(src, FormatPNG, 0)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if got.Width() != 8 || got.Height() != 6 {
		t.Fatalf("dimensions %dx%d, want 8x6", got.Width(), got.Height())
	}
	// PNG is lossless; the buffers must match byte for byte.
	for i := range src.Pix() {
		if got.Pix()[i] != src.Pix()[i] {
			t.Fatalf("byte %d: got %d, want %d", i, got.Pix()[i], src.Pix()[i])
		}
	}
}

func TestJPEGRoundTrip(t *testing.T) {
	src := NewRaster(16, 16)
	src.Fill(120, 60, 30, 255)

	data, err := Export(src, FormatJPEG, 95)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	// JPEG is lossy; a flat field should still land close.
	r, g, b, a := got.RGBA(8, 8)
	if absInt(int(r)-120) > 8 || absInt(int(g)-60) > 8 || absInt(int(b)-30) > 8 {
		t.Errorf("pixel (%d,%d,%d) too far from (120,60,30)", r, g, b)
	}
	if a != 255 {
		t.Errorf("alpha %d, want 255", a)
	}
}

func TestJPEGFlattensTransparencyOntoWhite(t *testing.T) {
	src := NewRaster(8, 8)
	src.Fill(0, 0, 0, 0) // fully transparent black

	var buf bytes.Buffer
	if err := src.EncodeJPEG(&buf, 90); err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	got, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	r, g, b, _ := got.RGBA(4, 4)
	if r < 245 || g < 245 || b < 245 {
		t.Errorf("pixel (%d,%d,%d), want near white", r, g, b)
	}
}

func TestExportInvalidInput(t *testing.T) {
	if _, err := Export(nil, FormatPNG, 0); !errors.Is(err, ErrZeroArea) {
		t.Errorf("nil raster: got %v, want ErrZeroArea", err)
	}
	if _, err := Export(NewRaster(0, 0), FormatPNG, 0); !errors.Is(err, ErrZeroArea) {
		t.Errorf("zero-area raster: got %v, want ErrZeroArea", err)
	}
	if _, err := Export(NewRaster(2, 2), Format(7), 0); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestExportJPEGQualityClamped(t *testing.T) {
	src := NewRaster(8, 8)
	src.Fill(100, 100, 100, 255)

	// Out-of-range qualities must still encode.
	for _, q := range []int{-5, 0, 1, 100, 400} {
		if _, err := Export(src, FormatJPEG, q); err != nil {
			t.Errorf("quality %d: %v", q, err)
		}
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swatch.png")

	src := NewRaster(5, 5)
	checkerboard(src)
	if err := src.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	got, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	for i := range src.Pix() {
		if got.Pix()[i] != src.Pix()[i] {
			t.Fatalf("byte %d differs after round trip", i)
		}
	}

	// DecodeSource accepts the path directly.
	viaSource, err := DecodeSource(path)
	if err != nil {
		t.Fatalf("DecodeSource(path): %v", err)
	}
	if viaSource.Width() != 5 || viaSource.Height() != 5 {
		t.Errorf("dimensions %dx%d, want 5x5", viaSource.Width(), viaSource.Height())
	}
}

func TestLoadImageMissingFile(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want wrapped os.ErrNotExist", err)
	}
}

func TestFormatString(t *testing.T) {
	if FormatPNG.String() != "png" || FormatJPEG.String() != "jpeg" || Format(9).String() != "unknown" {
		t.Error("format names wrong")
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
