package host

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fliprotate/internal/processor"
)

// ItemID derives a stable identifier for the file at path.
func ItemID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// NewItem describes the file at path as a media item.
func NewItem(path string) processor.MediaItem {
	name := filepath.Base(path)
	return processor.MediaItem{
		ID:       ItemID(path),
		FilePath: path,
		Ext:      strings.TrimPrefix(filepath.Ext(name), "."),
		Name:     name,
	}
}

// Selection expands files and directories into media items. Directories are
// walked recursively; hidden visuals directories are skipped. Every regular
// file is returned so the processor can decide which ones are images.
func Selection(paths []string) ([]processor.MediaItem, error) {
	var items []processor.MediaItem
	seen := make(map[string]bool)

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		items = append(items, NewItem(path))
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if d.Name() == VisualsDir {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	return items, nil
}
