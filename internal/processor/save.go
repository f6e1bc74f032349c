package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Library is the host media library the save strategies report to.
type Library interface {
	// TempDir returns a writable scratch directory.
	TempDir(ctx context.Context) (string, error)
	// AddFromPath registers the file at path as a new library item.
	AddFromPath(ctx context.Context, path string) error
	// RefreshVisuals regenerates derived visuals (thumbnail, palette) for item.
	RefreshVisuals(ctx context.Context, item MediaItem) error
}

// OverwriteStrategy replaces the source file in place.
type OverwriteStrategy struct {
	library Library
	logger  *zap.Logger
}

func NewOverwriteStrategy(library Library, logger *zap.Logger) *OverwriteStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverwriteStrategy{library: library, logger: logger}
}

// Save writes data over item.FilePath. A failed visuals refresh is logged
// and does not fail the save.
func (s *OverwriteStrategy) Save(ctx context.Context, data []byte, item MediaItem) (SavedLocation, error) {
	dest := item.FilePath
	if err := writeReplacing(dest, data); err != nil {
		return SavedLocation{}, &WriteError{Path: dest, Err: err}
	}

	if s.library != nil {
		if err := s.library.RefreshVisuals(ctx, item); err != nil {
			s.logger.Warn("Failed to refresh item visuals",
				zap.String("item", item.ID),
				zap.String("path", dest),
				zap.Error(err))
		}
	}

	return SavedLocation{Path: dest, Mode: SaveModeOverwrite}, nil
}

// writeReplacing stages data in a temp file beside dest and renames it over
// dest, keeping dest's permissions. An existing dest must itself be writable.
func writeReplacing(dest string, data []byte) error {
	mode := fs.FileMode(0o644)
	info, err := os.Stat(dest)
	switch {
	case err == nil:
		mode = info.Mode().Perm()
		if err := checkWritable(dest); err != nil {
			return err
		}
	case !os.IsNotExist(err):
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "fliprotate-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return replaceFile(tmpFile.Name(), dest)
}

func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

// NewFileStrategy writes a separate file into the library's temp directory
// and hands it to the library.
type NewFileStrategy struct {
	library Library
	logger  *zap.Logger
}

func NewNewFileStrategy(library Library, logger *zap.Logger) *NewFileStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewFileStrategy{library: library, logger: logger}
}

// Save writes data as <base>.<format> (or <base>_N.<format> on collision),
// registers it with the library and then removes the temp copy. When the
// library rejects the file it is left on disk.
func (s *NewFileStrategy) Save(ctx context.Context, data []byte, item MediaItem, format Format) (SavedLocation, error) {
	if s.library == nil {
		return SavedLocation{}, &WriteError{Path: item.FilePath, Err: errors.New("no library configured")}
	}

	tempDir, err := s.library.TempDir(ctx)
	if err != nil {
		return SavedLocation{}, &WriteError{Path: item.FilePath, Err: fmt.Errorf("resolve temp directory: %w", err)}
	}

	name := filepath.Base(item.FilePath)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	ext := "." + string(format)

	file, newPath, err := CreateUnique(tempDir, base, ext)
	if err != nil {
		return SavedLocation{}, &WriteError{Path: filepath.Join(tempDir, base+ext), Err: err}
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return SavedLocation{}, &WriteError{Path: newPath, Err: err}
	}
	if err := file.Close(); err != nil {
		return SavedLocation{}, &WriteError{Path: newPath, Err: err}
	}

	if err := s.library.AddFromPath(ctx, newPath); err != nil {
		return SavedLocation{}, &LibraryAddError{Path: newPath, Err: err}
	}

	if err := os.Remove(newPath); err != nil {
		s.logger.Warn("Failed to delete temp file",
			zap.String("path", newPath),
			zap.Error(err))
	}

	return SavedLocation{Path: newPath, Mode: SaveModeNew}, nil
}

// CreateUnique exclusively creates base+ext in dir, falling back to
// base_1+ext, base_2+ext and so on. An existing file is never reused.
func CreateUnique(dir, base, ext string) (*os.File, string, error) {
	candidate := filepath.Join(dir, base+ext)
	for counter := 1; ; counter++ {
		file, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}
}
