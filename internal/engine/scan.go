package engine

import (
	"fmt"
	"log/slog"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// Scan rebuilds the item registry from the root.
//
// By default the registry is replaced: every file becomes a fresh candidate
// and prior tags, suggestions and approvals are discarded. With Merge, items
// still on disk keep their prior state and items no longer on disk are
// dropped, except done items, which are kept as history. A missing or
// unreadable root fails the scan without touching the registry.
func (e *Engine) Scan(req *ScanRequest) (*ScanResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}
	if reg.Root == "" {
		return nil, ErrNoRoot
	}

	found, err := e.scanner.Scan(reg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPathError, err)
	}

	result := &ScanResult{
		Found:     len(found.Items),
		Truncated: found.Truncated,
	}

	if req != nil && req.Merge {
		result.Kept, result.Dropped = mergeItems(reg.Items, found.Items)
	}
	reg.Items = found.Items
	reg.ScannedRoot = reg.Root

	if err := e.save(); err != nil {
		return nil, err
	}

	result.Counts = reg.Counts()
	slog.Info("scan complete",
		"root", reg.Root,
		"found", result.Found,
		"merge", req != nil && req.Merge,
		"kept", result.Kept,
		"dropped", result.Dropped,
		"truncated", result.Truncated)
	return result, nil
}

// mergeItems carries prior review state from old into fresh, which is
// modified in place. A preview is kept only while the file's size and
// modification time are unchanged. Done items missing from fresh are carried
// over unchanged.
func mergeItems(old, fresh map[string]*state.FileItem) (kept, dropped int) {
	for relPath, prev := range old {
		cur, ok := fresh[relPath]
		if !ok {
			if prev.Status == state.StatusDone {
				fresh[relPath] = prev
				kept++
				continue
			}
			dropped++
			continue
		}

		cur.Status = prev.Status
		cur.Approved = prev.Approved
		cur.Suggestion = prev.Suggestion
		cur.EditedName = prev.EditedName
		cur.EditedFolder = prev.EditedFolder
		cur.DoneDestination = prev.DoneDestination
		if prev.Size == cur.Size && prev.ModifiedTime.Equal(cur.ModifiedTime) {
			cur.Preview = prev.Preview
		}
		kept++
	}
	return kept, dropped
}
