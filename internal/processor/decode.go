package processor

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"fliprotate/pkg/imgutil"
)

// loadImage decodes the raster at path. Every failure is an ImageLoadError.
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ImageLoadError{Path: path, Err: err}
	}
	defer file.Close()

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		return nil, &ImageLoadError{Path: path, Err: err}
	}
	if kind == imgutil.KindUnknown {
		return nil, &ImageLoadError{Path: path, Err: fmt.Errorf("unsupported image type")}
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, &ImageLoadError{Path: path, Err: err}
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &ImageLoadError{Path: path, Err: err}
	}
	return img, nil
}
