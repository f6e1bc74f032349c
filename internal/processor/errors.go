package processor

import (
	"errors"
	"fmt"
)

// ErrorKind names the pipeline stage an item failed in.
type ErrorKind string

const (
	KindImageLoad  ErrorKind = "ImageLoadError"
	KindEncode     ErrorKind = "EncodeError"
	KindWrite      ErrorKind = "WriteError"
	KindLibraryAdd ErrorKind = "LibraryAddError"
)

// ImageLoadError is returned when a source cannot be opened or decoded.
type ImageLoadError struct {
	Path string
	Err  error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("load image %s: %v", e.Path, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// EncodeError is returned when an encoder fails or produces no output.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// WriteError is returned when output bytes cannot be placed on disk.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// LibraryAddError is returned when the host library rejects a new file. The
// file at Path is left in place.
type LibraryAddError struct {
	Path string
	Err  error
}

func (e *LibraryAddError) Error() string {
	return fmt.Sprintf("add %s to library: %v", e.Path, e.Err)
}

func (e *LibraryAddError) Unwrap() error { return e.Err }

// KindOf classifies err by pipeline stage; unknown errors return "".
func KindOf(err error) ErrorKind {
	var (
		loadErr  *ImageLoadError
		encErr   *EncodeError
		writeErr *WriteError
		addErr   *LibraryAddError
	)
	switch {
	case errors.As(err, &loadErr):
		return KindImageLoad
	case errors.As(err, &encErr):
		return KindEncode
	case errors.As(err, &writeErr):
		return KindWrite
	case errors.As(err, &addErr):
		return KindLibraryAdd
	default:
		return ""
	}
}
