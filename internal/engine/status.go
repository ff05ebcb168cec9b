package engine

import (
	"fmt"
	"strings"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/audit"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// Status returns the registry summary.
func (e *Engine) Status() (*StatusResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}
	return e.status(reg), nil
}

func (e *Engine) status(reg *state.Registry) *StatusResult {
	res := &StatusResult{
		Root:           reg.Root,
		Mode:           reg.Mode,
		Counts:         reg.Counts(),
		AllowedFolders: e.opts.Taxonomy.Options(),
		FallbackFolder: e.opts.Taxonomy.Fallback,
		RescanRequired: reg.RescanRequired(),
	}
	for _, item := range reg.Items {
		if item.Status != state.StatusCandidate {
			continue
		}
		if item.Suggestion != nil {
			res.Suggested++
		}
		if item.Approved {
			res.Approved++
		}
	}
	return res
}

// Review lists items matching the status filter and relpath query, ordered
// by lowercase relpath.
func (e *Engine) Review(req *ReviewRequest) ([]*state.FileItem, error) {
	filter := strings.ToLower(strings.TrimSpace(req.Filter))
	switch filter {
	case "", "all":
		filter = ""
	case string(state.StatusCandidate), string(state.StatusNever), string(state.StatusDone):
	default:
		return nil, fmt.Errorf("%w: filter %q (want all, candidate, never or done)", ErrInvalidStatus, req.Filter)
	}
	query := strings.ToLower(strings.TrimSpace(req.Query))

	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}

	out := []*state.FileItem{}
	for _, relPath := range reg.SortedRelPaths() {
		item := reg.Items[relPath]
		if filter != "" && string(item.Status) != filter {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(relPath), query) {
			continue
		}
		out = append(out, item.Clone())
	}
	return out, nil
}

// Item returns one item.
func (e *Engine) Item(relPath string) (*state.FileItem, error) {
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
	return item.Clone(), nil
}

// AuditTail returns the last n audit entries, newest last.
func (e *Engine) AuditTail(n int) ([]audit.Entry, error) {
	return e.auditLog.Tail(n)
}
