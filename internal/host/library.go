// Package host implements the media-library collaborators the processor
// saves into: a directory-backed library and an S3-backed variant.
package host

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"fliprotate/internal/processor"
)

// VisualsDir is the hidden directory under the library root that holds
// thumbnails and palettes.
const VisualsDir = ".fliprotate"

// ThumbnailSize bounds the longer edge of generated thumbnails.
const ThumbnailSize = 256

// FSLibrary is a library rooted at a directory on local disk.
type FSLibrary struct {
	root    string
	tempDir string
	logger  *zap.Logger
}

// NewFSLibrary creates root if needed. An empty tempDir uses a
// "fliprotate" directory under os.TempDir.
func NewFSLibrary(root, tempDir string, logger *zap.Logger) (*FSLibrary, error) {
	if root == "" {
		return nil, fmt.Errorf("library root required")
	}
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "fliprotate")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	return &FSLibrary{root: root, tempDir: tempDir, logger: logger}, nil
}

func (l *FSLibrary) Root() string {
	return l.root
}

func (l *FSLibrary) TempDir(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.tempDir, 0o750); err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}
	return l.tempDir, nil
}

// AddFromPath copies path into the library root under a collision-safe name.
func (l *FSLibrary) AddFromPath(ctx context.Context, path string) error {
	_, err := l.add(ctx, path)
	return err
}

func (l *FSLibrary) add(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := filepath.Base(path)
	ext := filepath.Ext(name)
	dst, dstPath, err := processor.CreateUnique(l.root, strings.TrimSuffix(name, ext), ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("copy into library: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}

	l.logger.Info("Added item to library", zap.String("source", path), zap.String("path", dstPath))
	return dstPath, nil
}

// Palette is the sidecar written next to a thumbnail.
type Palette struct {
	ID     string   `json:"id"`
	Path   string   `json:"path"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Colors []string `json:"colors"`
}

// RefreshVisuals regenerates the thumbnail and palette for item.
func (l *FSLibrary) RefreshVisuals(ctx context.Context, item processor.MediaItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := decodeFile(item.FilePath)
	if err != nil {
		return err
	}

	dir := filepath.Join(l.root, VisualsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	id := item.ID
	if id == "" {
		id = ItemID(item.FilePath)
	}

	thumb := Thumbnail(img, ThumbnailSize)
	if err := writeThumbnail(filepath.Join(dir, id+".png"), thumb); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}

	b := img.Bounds()
	palette := Palette{
		ID:     id,
		Path:   item.FilePath,
		Width:  b.Dx(),
		Height: b.Dy(),
		Colors: DominantColors(thumb, 5),
	}
	data, err := json.MarshalIndent(palette, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write palette: %w", err)
	}

	l.logger.Debug("Refreshed item visuals", zap.String("item", id), zap.String("path", item.FilePath))
	return nil
}

// Thumbnail scales img so its longer edge is at most size pixels.
func Thumbnail(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > size || h > size {
		if w >= h {
			h = max(1, h*size/w)
			w = size
		} else {
			w = max(1, w*size/h)
			h = size
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
