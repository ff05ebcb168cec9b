// Package scanner discovers the files under a download root.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/clock"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// DefaultMaxFiles caps the number of files enumerated per scan.
const DefaultMaxFiles = 5000

// ErrRootNotDirectory is returned when the root exists but is a file.
var ErrRootNotDirectory = errors.New("root is not a directory")

// Result is the outcome of a scan.
type Result struct {
	// Items are fresh candidates keyed by slash-separated relative path.
	Items map[string]*state.FileItem

	// Truncated is set when the file cap stopped enumeration early.
	Truncated bool

	// Skipped counts directories that could not be read.
	Skipped int
}

// Scanner walks a root directory.
type Scanner struct {
	fs       fsops.FS
	maxFiles int
}

// New creates a Scanner. A non-positive maxFiles selects DefaultMaxFiles.
func New(fsys fsops.FS, maxFiles int) *Scanner {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Scanner{fs: fsys, maxFiles: maxFiles}
}

// Scan enumerates regular files under root, recursively, up to the cap.
// Symlinks and other non-regular files are ignored. Unreadable
// subdirectories are skipped; an unreadable root fails the scan.
func (s *Scanner) Scan(root string) (*Result, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}

	result := &Result{Items: make(map[string]*state.FileItem)}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			slog.Debug("skipping unreadable path", "path", path, "error", walkErr)
			result.Skipped++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if len(result.Items) >= s.maxFiles {
			result.Truncated = true
			return fs.SkipAll
		}

		fi, err := d.Info()
		if err != nil {
			slog.Debug("skipping file", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		name := d.Name()
		result.Items[rel] = state.NewFileItem(
			rel,
			name,
			Extension(name),
			fi.Size(),
			clock.Truncate(fi.ModTime()),
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root %s: %w", root, err)
	}

	return result, nil
}

// Extension returns the lowercase extension of name including the dot.
// Dotfiles such as ".env" have no extension.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return strings.ToLower(ext)
}
