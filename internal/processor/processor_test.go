package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fliprotate/pkg/imgutil"
)

func TestRunBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	first := writePNG(t, filepath.Join(dir, "first.png"), 4, 2)
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not really a png"), 0o644))
	third := writePNG(t, filepath.Join(dir, "third.png"), 3, 5)

	lib := &fakeLibrary{tempDir: t.TempDir()}
	cfg := RunConfig{Action: ActionRotate90, Format: FormatPNG, Quality: 0.9, SaveMode: SaveModeNew}

	summary, results, err := NewCoordinator(lib, nil).Run(context.Background(), []MediaItem{
		{ID: "1", FilePath: first},
		{ID: "2", FilePath: broken},
		{ID: "3", FilePath: third},
	}, cfg)
	require.NoError(t, err)

	assert.Equal(t, Summary{Total: 3, Succeeded: 2, Failed: 1}, summary)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)

	assert.Equal(t, broken, results[1].Path)
	assert.Equal(t, KindImageLoad, KindOf(results[1].Err))
	assert.NotEmpty(t, results[1].Message())

	require.Len(t, lib.addedData, 2)
	assertPNGSize(t, lib.addedData[0], 2, 4)
	assertPNGSize(t, lib.addedData[1], 5, 3)
}

func TestRunBatchFiltersNonImages(t *testing.T) {
	dir := t.TempDir()
	img := writePNG(t, filepath.Join(dir, "keep.png"), 2, 2)
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))

	lib := &fakeLibrary{tempDir: t.TempDir()}
	cfg := RunConfig{Action: ActionFlipVertical, Format: FormatWEBP, Quality: 0.9, SaveMode: SaveModeNew}

	summary, results, err := NewCoordinator(lib, nil).Run(context.Background(), []MediaItem{
		{FilePath: img},
		{FilePath: notes, Ext: "txt"},
	}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, results, 1)
	assert.Equal(t, img, results[0].Item.FilePath)
}

func TestRunOverwriteDerivesFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, filepath.Join(dir, "Shot.PNG"), 3, 2)

	pngRec := &recordingCodec{inner: CodecFunc(encodePNG)}
	jpegRec := &recordingCodec{}
	enc := NewEncoder().WithCodec(FormatPNG, pngRec).WithCodec(FormatJPEG, jpegRec)
	lib := &fakeLibrary{}
	cfg := RunConfig{Action: ActionRotate270, Format: FormatJPEG, Quality: 0.5, SaveMode: SaveModeOverwrite}

	summary, results, err := NewCoordinator(lib, nil, WithEncoder(enc)).Run(context.Background(), []MediaItem{
		{ID: "shot", FilePath: src},
	}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, pngRec.calls)
	assert.Equal(t, 0, jpegRec.calls)
	assert.Equal(t, src, results[0].Path)
	assert.Equal(t, SaveModeOverwrite, results[0].Mode)
	assert.Equal(t, []string{"shot"}, lib.refreshed)

	kind, err := imgutil.SniffFile(src)
	require.NoError(t, err)
	assert.Equal(t, imgutil.KindPNG, kind)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assertPNGSize(t, data, 2, 3)
}

func TestRunRotate180TwiceRestoresSource(t *testing.T) {
	dir := t.TempDir()
	original := gradientImage(5, 3)
	src := filepath.Join(dir, "pic.png")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, original))
	require.NoError(t, f.Close())

	coord := NewCoordinator(&fakeLibrary{}, nil)
	cfg := RunConfig{Action: ActionRotate180, Format: FormatJPEG, Quality: 0.9, SaveMode: SaveModeOverwrite}
	items := []MediaItem{{FilePath: src}}

	for i := 0; i < 2; i++ {
		summary, _, err := coord.Run(context.Background(), items, cfg)
		require.NoError(t, err)
		require.Equal(t, 1, summary.Succeeded)
	}

	got, err := loadImage(src)
	require.NoError(t, err)
	require.Equal(t, original.Bounds(), got.Bounds())
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, original.RGBAAt(x, y), rgbaAt(got, x, y))
		}
	}
}

func TestRunEmitsProgress(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, filepath.Join(dir, "a.png"), 1, 1)
	b := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	updates := make(chan ProgressUpdate, 8)
	coord := NewCoordinator(&fakeLibrary{tempDir: t.TempDir()}, nil, WithUpdates(updates))
	cfg := RunConfig{Action: ActionFlipHorizontal, Format: FormatBMP, Quality: 1, SaveMode: SaveModeNew}

	_, _, err := coord.Run(context.Background(), []MediaItem{{FilePath: a}, {FilePath: b}}, cfg)
	require.NoError(t, err)
	close(updates)

	var got []ProgressUpdate
	for u := range updates {
		got = append(got, u)
	}
	assert.Equal(t, []ProgressUpdate{
		{TotalDelta: 2},
		{SucceededDelta: 1, Current: a},
		{FailedDelta: 1, Current: b},
	}, got)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, _, err := NewCoordinator(&fakeLibrary{}, nil).Run(context.Background(), nil, RunConfig{Action: "spin"})
	assert.Error(t, err)
}

func TestRunOverwriteGIFSourceStaysGIF(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, filepath.Join(dir, "img.png"), 2, 2)

	cfg := RunConfig{Action: ActionRotate90, Format: FormatPNG, Quality: 1, SaveMode: SaveModeOverwrite}
	summary, results, err := NewCoordinator(&fakeLibrary{}, nil).Run(context.Background(), []MediaItem{
		{FilePath: src, Ext: "gif"},
	}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	kind, err := imgutil.SniffFile(results[0].Path)
	require.NoError(t, err)
	assert.Equal(t, imgutil.KindGIF, kind)
}

func TestRunOverwriteAnimatedGIFKeepsFirstFrame(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blink.gif")

	pal := color.Palette{color.Black, color.White}
	first := image.NewPaletted(image.Rect(0, 0, 3, 2), pal)
	first.SetColorIndex(0, 0, 1)
	second := image.NewPaletted(image.Rect(0, 0, 3, 2), pal)
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, gif.EncodeAll(f, &gif.GIF{Image: []*image.Paletted{first, second}, Delay: []int{10, 10}}))
	require.NoError(t, f.Close())

	cfg := RunConfig{Action: ActionRotate90, Format: FormatWEBP, Quality: 1, SaveMode: SaveModeOverwrite}
	summary, _, err := NewCoordinator(&fakeLibrary{}, nil).Run(context.Background(), []MediaItem{{FilePath: src}}, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	out, err := os.Open(src)
	require.NoError(t, err)
	defer out.Close()
	anim, err := gif.DecodeAll(out)
	require.NoError(t, err)

	require.Len(t, anim.Image, 1)
	assert.Equal(t, image.Rect(0, 0, 2, 3), anim.Image[0].Bounds())
	// top-left white pixel of the first frame lands top-right after rotate-90
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(anim.Image[0], 1, 0))
}

func writePNG(t *testing.T, path string, w, h int) string {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, gradientImage(w, h)))
	return path
}

func assertPNGSize(t *testing.T, data []byte, w, h int) {
	t.Helper()

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, w, cfg.Width)
	assert.Equal(t, h, cfg.Height)
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}
