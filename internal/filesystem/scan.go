package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
)

// Entry is one discovered media file.
type Entry struct {
	Name string
	Path string
	Size int64
	Kind mediatypes.MediaKind
}

// Read loads the file's contents.
func (e Entry) Read() ([]byte, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.Path, err)
	}
	return data, nil
}

// ListMedia walks dir and returns every photo and video file found,
// skipping hidden files and unrecognized extensions.
func ListMedia(dir string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		kind := mediatypes.GetKind(strings.ToLower(filepath.Ext(name)))
		if kind == mediatypes.KindOther {
			logging.Debug("Skipping non-media file %s", path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		entries = append(entries, Entry{
			Name: name,
			Path: path,
			Size: info.Size(),
			Kind: kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	logging.Info("Found %d media files in %s", len(entries), dir)
	return entries, nil
}
