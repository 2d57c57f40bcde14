package drape

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	// Registered decoders for auto-detection in image.Decode.
	_ "image/gif"

	_ "golang.org/x/image/webp"
)

// Format identifies an output encoding for Export.
type Format int

// Supported output formats.
const (
	FormatPNG Format = iota
	FormatJPEG
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	default:
		return "unknown"
	}
}

// DefaultJPEGQuality is used by Export when the quality argument is zero.
const DefaultJPEGQuality = 90

// DecodeSource decodes an image from any supported source value:
//
//   - []byte: encoded image data (PNG, JPEG, GIF, WebP)
//   - io.Reader: encoded image stream
//   - image.Image: adopted directly
//   - *Raster: cloned, so the caller keeps ownership of the original
//   - string: path of an image file on disk
//
// Any other type returns ErrUnsupportedSourceType.
func DecodeSource(src any) (*Raster, error) {
	switch v := src.(type) {
	case nil:
		return nil, ErrUnsupportedSourceType
	case *Raster:
		if v == nil {
			return nil, ErrUnsupportedSourceType
		}
		return v.Clone(), nil
	case image.Image:
		return FromImage(v), nil
	case []byte:
		return DecodeBytes(v)
	case io.Reader:
		return Decode(v)
	case string:
		return LoadImage(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSourceType, src)
	}
}

// Decode decodes an image from the given reader, auto-detecting the format.
// Supported formats: PNG, JPEG, GIF, WebP.
func Decode(r io.Reader) (*Raster, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return FromImage(img), nil
}

// DecodeBytes decodes an image from a byte slice, auto-detecting the format.
func DecodeBytes(data []byte) (*Raster, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// LoadImage loads an image from the given file path, auto-detecting the format.
func LoadImage(path string) (*Raster, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("drape: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Export encodes a raster into the given format and returns the bytes.
// For FormatJPEG, quality is clamped to 1-100; pass 0 to use
// DefaultJPEGQuality. The quality argument is ignored for FormatPNG.
func Export(r *Raster, format Format, quality int) ([]byte, error) {
	if r == nil || r.PixelCount() == 0 {
		return nil, ErrZeroArea
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := r.EncodePNG(&buf); err != nil {
			return nil, err
		}
	case FormatJPEG:
		if err := r.EncodeJPEG(&buf, quality); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("drape: unsupported output format %d", format)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes the raster as PNG to the given writer.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.ToImage()); err != nil {
		return fmt.Errorf("drape: encode PNG: %w", err)
	}
	return nil
}

// EncodeJPEG encodes the raster as JPEG to the given writer.
// Quality is clamped to 1-100; zero selects DefaultJPEGQuality.
// Transparency is flattened onto white, matching JPEG's opaque model.
func (r *Raster) EncodeJPEG(w io.Writer, quality int) error {
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for i := 0; i < len(r.pix); i += 4 {
		a := uint16(r.pix[i+3])
		img.Pix[i] = uint8((uint16(r.pix[i])*a + 255*(255-a)) / 255)
		img.Pix[i+1] = uint8((uint16(r.pix[i+1])*a + 255*(255-a)) / 255)
		img.Pix[i+2] = uint8((uint16(r.pix[i+2])*a + 255*(255-a)) / 255)
		img.Pix[i+3] = 255
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("drape: encode JPEG: %w", err)
	}
	return nil
}

// SavePNG saves the raster as a PNG file.
func (r *Raster) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("drape: create file: %w", err)
	}

	if err := r.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// SaveJPEG saves the raster as a JPEG file with the given quality.
func (r *Raster) SaveJPEG(path string, quality int) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("drape: create file: %w", err)
	}

	if err := r.EncodeJPEG(f, quality); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
