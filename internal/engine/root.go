package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// CleanRootInput trims whitespace and surrounding quotes, as left behind by
// paths pasted from a file manager.
func CleanRootInput(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"'`)
	return strings.TrimSpace(path)
}

// SetRoot sets the download area to organize. The path is not required to
// exist until scan time. Items are kept when the root changes; their
// relative paths belong to the root they were scanned under, so suggest and
// apply refuse to run until the new root is scanned.
func (e *Engine) SetRoot(path string) (*StatusResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cleaned := CleanRootInput(path)
	if cleaned == "" {
		return nil, ErrNoRoot
	}
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPathError, err)
	}

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}

	if reg.Root != abs && len(reg.Items) > 0 {
		slog.Info("root changed, rescan required", "old", reg.Root, "new", abs, "items", len(reg.Items))
	}
	if reg.ScannedRoot == "" && len(reg.Items) > 0 {
		reg.ScannedRoot = reg.Root
	}
	reg.Root = abs

	if err := e.save(); err != nil {
		return nil, err
	}
	return e.status(reg), nil
}

// requireScannedRoot fails when the items were scanned under another root.
func requireScannedRoot(reg *state.Registry) error {
	if reg.RescanRequired() {
		return fmt.Errorf("%w: items were scanned under %s; rescan required", ErrPathError, reg.ScannedRoot)
	}
	return nil
}

// SetMode sets how apply relocates files.
func (e *Engine) SetMode(mode string) (*StatusResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := state.Mode(strings.ToLower(strings.TrimSpace(mode)))
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %q (want move or copy)", ErrInvalidMode, mode)
	}

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}
	reg.Mode = m

	if err := e.save(); err != nil {
		return nil, err
	}
	return e.status(reg), nil
}
