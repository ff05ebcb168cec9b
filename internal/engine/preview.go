package engine

import (
	"fmt"
	"path/filepath"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// Preview returns the item with its content preview, extracting and caching
// the preview on first access.
func (e *Engine) Preview(relPath string) (*state.FileItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}
	item, ok := reg.Items[relPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
	}

	if item.Preview == nil {
		if err := requireScannedRoot(reg); err != nil {
			return nil, err
		}
		item.Preview = e.extract(reg, relPath)
		if err := e.save(); err != nil {
			return nil, err
		}
	}
	return item.Clone(), nil
}

// extract runs the previewer on the item's file under the root.
func (e *Engine) extract(reg *state.Registry, relPath string) *state.Preview {
	if err := e.fs.ValidateRelPath(relPath); err != nil {
		return &state.Preview{Kind: state.KindMetadata, Notes: err.Error()}
	}
	return e.previewer.Extract(filepath.Join(reg.Root, filepath.FromSlash(relPath)))
}
