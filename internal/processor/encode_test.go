package processor

import (
	"bytes"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fliprotate/pkg/imgutil"
)

// recordingCodec captures the quality it was called with and delegates to
// an inner codec (or writes a single byte).
type recordingCodec struct {
	calls   int
	quality *float64
	inner   Codec
}

func (r *recordingCodec) Encode(w io.Writer, img image.Image, quality *float64) error {
	r.calls++
	r.quality = quality
	if r.inner != nil {
		return r.inner.Encode(w, img, quality)
	}
	_, err := w.Write([]byte{0x01})
	return err
}

func TestEncoderQualityPolicy(t *testing.T) {
	img := gradientImage(2, 2)

	t.Run("jpeg passes user quality", func(t *testing.T) {
		for _, q := range []float64{0, 0.35, 0.9, 1} {
			rec := &recordingCodec{}
			enc := NewEncoder().WithCodec(FormatJPEG, rec)
			_, err := enc.Encode(img, FormatJPEG, q)
			require.NoError(t, err)
			require.NotNil(t, rec.quality)
			assert.Equal(t, q, *rec.quality)
		}
	})

	t.Run("webp pinned to max", func(t *testing.T) {
		rec := &recordingCodec{}
		enc := NewEncoder().WithCodec(FormatWEBP, rec)
		_, err := enc.Encode(img, FormatWEBP, 0.2)
		require.NoError(t, err)
		require.NotNil(t, rec.quality)
		assert.Equal(t, 1.0, *rec.quality)
	})

	for _, format := range []Format{FormatPNG, FormatBMP} {
		t.Run(string(format)+" has no quality", func(t *testing.T) {
			rec := &recordingCodec{}
			enc := NewEncoder().WithCodec(format, rec)
			_, err := enc.Encode(img, format, 0.5)
			require.NoError(t, err)
			assert.Equal(t, 1, rec.calls)
			assert.Nil(t, rec.quality)
		})
	}
}

func TestEncoderEmptyOutput(t *testing.T) {
	silent := CodecFunc(func(io.Writer, image.Image, *float64) error { return nil })
	enc := NewEncoder().WithCodec(FormatPNG, silent)

	_, err := enc.Encode(gradientImage(1, 1), FormatPNG, 1)
	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, FormatPNG, encErr.Format)
	assert.Equal(t, KindEncode, KindOf(err))
}

func TestEncoderCodecFailure(t *testing.T) {
	failing := CodecFunc(func(io.Writer, image.Image, *float64) error { return errors.New("boom") })
	enc := NewEncoder().WithCodec(FormatJPEG, failing)

	_, err := enc.Encode(gradientImage(1, 1), FormatJPEG, 0.5)
	assert.Equal(t, KindEncode, KindOf(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestEncoderUnknownFormat(t *testing.T) {
	_, err := NewEncoder().Encode(gradientImage(1, 1), Format("tiff"), 1)
	assert.Equal(t, KindEncode, KindOf(err))
}

func TestEncoderBuiltinCodecsProduceDecodableOutput(t *testing.T) {
	img := gradientImage(6, 4)
	want := map[Format]imgutil.Kind{
		FormatJPEG: imgutil.KindJPEG,
		FormatPNG:  imgutil.KindPNG,
		FormatBMP:  imgutil.KindBMP,
		FormatWEBP: imgutil.KindWEBP,
		FormatGIF:  imgutil.KindGIF,
	}

	for format, kind := range want {
		t.Run(string(format), func(t *testing.T) {
			data, err := NewEncoder().Encode(img, format, 0.8)
			require.NoError(t, err)

			got, err := imgutil.SniffReader(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, kind, got)

			decoded, _, err := image.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, img.Bounds().Size(), decoded.Bounds().Size())
		})
	}
}

func TestJPEGQualityScale(t *testing.T) {
	assert.Equal(t, 1, jpegQuality(0))
	assert.Equal(t, 90, jpegQuality(0.9))
	assert.Equal(t, 100, jpegQuality(1))
}
