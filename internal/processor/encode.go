package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
)

// webpQuality is the fixed quality handed to the WebP codec; the user's
// quality choice only applies to JPEG.
const webpQuality = 1.0

// Codec writes img in one container format. quality is nil for formats that
// have no quality knob.
type Codec interface {
	Encode(w io.Writer, img image.Image, quality *float64) error
}

// CodecFunc adapts a function to Codec.
type CodecFunc func(w io.Writer, img image.Image, quality *float64) error

func (f CodecFunc) Encode(w io.Writer, img image.Image, quality *float64) error {
	return f(w, img, quality)
}

// Encoder turns rasters into encoded bytes using a per-format codec table.
type Encoder struct {
	codecs map[Format]Codec
}

// NewEncoder returns an Encoder with the built-in codecs for every format.
func NewEncoder() *Encoder {
	return &Encoder{codecs: map[Format]Codec{
		FormatJPEG: CodecFunc(encodeJPEG),
		FormatPNG:  CodecFunc(encodePNG),
		FormatBMP:  CodecFunc(encodeBMP),
		FormatWEBP: CodecFunc(encodeWEBP),
		FormatGIF:  CodecFunc(encodeGIF),
	}}
}

// WithCodec replaces the codec used for format.
func (e *Encoder) WithCodec(format Format, codec Codec) *Encoder {
	e.codecs[format] = codec
	return e
}

// QualityFor applies the per-format quality policy: JPEG uses the caller's
// value, WEBP is pinned to maximum, lossless formats take none.
func QualityFor(format Format, quality float64) *float64 {
	switch format {
	case FormatJPEG:
		q := quality
		return &q
	case FormatWEBP:
		q := webpQuality
		return &q
	default:
		return nil
	}
}

func (e *Encoder) Encode(img image.Image, format Format, quality float64) ([]byte, error) {
	codec, ok := e.codecs[format]
	if !ok {
		return nil, &EncodeError{Format: format, Err: fmt.Errorf("no encoder for format %q", format)}
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, img, QualityFor(format, quality)); err != nil {
		return nil, &EncodeError{Format: format, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &EncodeError{Format: format, Err: errors.New("encoder produced no output")}
	}
	return buf.Bytes(), nil
}

func encodeJPEG(w io.Writer, img image.Image, quality *float64) error {
	opts := &jpeg.Options{Quality: jpeg.DefaultQuality}
	if quality != nil {
		opts.Quality = jpegQuality(*quality)
	}
	return jpeg.Encode(w, img, opts)
}

// jpegQuality maps a [0,1] quality onto the 1..100 scale of image/jpeg.
func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

func encodePNG(w io.Writer, img image.Image, _ *float64) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	return enc.Encode(w, img)
}

func encodeBMP(w io.Writer, img image.Image, _ *float64) error {
	return bmp.Encode(w, img)
}

// encodeWEBP always writes lossless VP8L, which is the maximum-quality
// setting the policy asks for.
func encodeWEBP(w io.Writer, img image.Image, _ *float64) error {
	return nativewebp.Encode(w, img, nil)
}

func encodeGIF(w io.Writer, img image.Image, _ *float64) error {
	return gif.Encode(w, img, nil)
}
