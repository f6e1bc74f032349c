package processor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForExtension(t *testing.T) {
	cases := map[string]Format{
		"jpg":  FormatJPEG,
		"JPEG": FormatJPEG,
		".png": FormatPNG,
		"PNG":  FormatPNG,
		"WebP": FormatWEBP,
		"bmp":  FormatBMP,
		"gif":  FormatGIF,
		"heic": Format("heic"),
		"":     FormatWEBP,
	}
	for ext, want := range cases {
		assert.Equal(t, want, FormatForExtension(ext), "extension %q", ext)
	}
}

func TestMediaItemExtension(t *testing.T) {
	assert.Equal(t, "webp", MediaItem{Ext: "webp", Name: "a.png", FilePath: "/x/a.bmp"}.Extension())
	assert.Equal(t, "png", MediaItem{Name: "holiday.shot.png", FilePath: "/x/a.bmp"}.Extension())
	assert.Equal(t, "bmp", MediaItem{FilePath: "/x/a.bmp"}.Extension())
	assert.Equal(t, "jpg", MediaItem{Name: "Holiday", FilePath: "/x/holiday.jpg"}.Extension())
	assert.Equal(t, "", MediaItem{FilePath: "/x/README"}.Extension())
}

func TestIsImage(t *testing.T) {
	for _, ext := range []string{"jpg", "JPEG", "png", "webp", "bmp", "GIF"} {
		assert.True(t, IsImage(MediaItem{Ext: ext}), ext)
	}
	for _, ext := range []string{"txt", "tiff", "mp4", ""} {
		assert.False(t, IsImage(MediaItem{Ext: ext}), ext)
	}
}

func TestNewRunConfig(t *testing.T) {
	cfg, err := NewRunConfig("rotate-90", "jpg", "0.75", "overwrite")
	require.NoError(t, err)
	assert.Equal(t, RunConfig{Action: ActionRotate90, Format: FormatJPEG, Quality: 0.75, SaveMode: SaveModeOverwrite}, cfg)

	invalid := [][4]string{
		{"rotate-45", "png", "0.9", "new"},
		{"rotate-90", "gif", "0.9", "new"},
		{"rotate-90", "png", "1.5", "new"},
		{"rotate-90", "png", "abc", "new"},
		{"rotate-90", "png", "0.9", "append"},
	}
	for _, in := range invalid {
		_, err := NewRunConfig(in[0], in[1], in[2], in[3])
		assert.Error(t, err, "%v", in)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := errors.Join(errors.New("context"), &WriteError{Path: "/x", Err: errors.New("disk full")})
	assert.Equal(t, KindWrite, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
