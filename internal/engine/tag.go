package engine

import (
	"fmt"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// BulkSetStatus tags the selected items as candidate or never. Done items
// are skipped, since done is terminal. Tagging always clears approval.
func (e *Engine) BulkSetStatus(req *BulkStatusRequest) (*BulkStatusResult, error) {
	if req.Status != state.StatusCandidate && req.Status != state.StatusNever {
		return nil, fmt.Errorf("%w: %q (want candidate or never)", ErrInvalidStatus, req.Status)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}

	result := &BulkStatusResult{
		Updated:     []string{},
		SkippedDone: []string{},
		Missing:     []string{},
	}
	seen := make(map[string]bool, len(req.RelPaths))
	for _, relPath := range req.RelPaths {
		if seen[relPath] {
			continue
		}
		seen[relPath] = true

		item, ok := reg.Items[relPath]
		switch {
		case !ok:
			result.Missing = append(result.Missing, relPath)
		case item.Status == state.StatusDone:
			result.SkippedDone = append(result.SkippedDone, relPath)
		default:
			item.Status = req.Status
			item.Approved = false
			result.Updated = append(result.Updated, relPath)
		}
	}

	if len(result.Updated) > 0 {
		if err := e.save(); err != nil {
			return nil, err
		}
	}
	return result, nil
}
