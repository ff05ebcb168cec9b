package engine

import (
	"sort"
	"strings"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/naming"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// ProposalManager bridges advisor output and user review.
type ProposalManager struct {
	Taxonomy     naming.Taxonomy
	Threshold    float64
	MaxNameChars int
}

// Accept records a fresh suggestion: the edits start from the suggestion
// and approval is preset when the confidence reaches the threshold.
func (m ProposalManager) Accept(item *state.FileItem, sug *state.Suggestion) {
	item.Suggestion = sug
	item.EditedName = m.cleanName(item, sug.SuggestedName)
	item.EditedFolder = m.Taxonomy.Resolve(sug.SuggestedFolder)
	item.Approved = sug.Confidence >= m.Threshold
}

// ProposalEdit is one item's review input. Nil fields are left unchanged.
type ProposalEdit struct {
	Approved *bool
	Folder   *string
	Name     *string
}

// Edit applies a user edit. Folders outside the taxonomy collapse to the
// fallback and names are re-sanitized. Items that are not reviewable are
// left untouched; the return value reports whether anything changed.
func (m ProposalManager) Edit(item *state.FileItem, edit ProposalEdit) bool {
	if !item.IsReviewable() {
		return false
	}

	changed := false
	if edit.Folder != nil {
		folder := m.Taxonomy.Resolve(*edit.Folder)
		if folder != item.EditedFolder {
			item.EditedFolder = folder
			changed = true
		}
	}
	if edit.Name != nil {
		name := m.cleanName(item, *edit.Name)
		if name != item.EditedName {
			item.EditedName = name
			changed = true
		}
	}
	if edit.Approved != nil && *edit.Approved != item.Approved {
		item.Approved = *edit.Approved
		changed = true
	}
	return changed
}

// cleanName sanitizes name, keeps the item's extension and falls back to
// the current edit or the original name when nothing usable is left.
func (m ProposalManager) cleanName(item *state.FileItem, name string) string {
	fallback := item.EditedName
	if fallback == "" {
		fallback = item.Name
	}
	return naming.WithExtension(name, item.Extension, fallback, m.MaxNameChars)
}

// UpdateProposals applies user review to the listed items.
func (e *Engine) UpdateProposals(req *UpdateProposalsRequest) (*UpdateProposalsResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}

	edits := make(map[string]*ProposalEdit)
	editFor := func(relPath string) *ProposalEdit {
		if edits[relPath] == nil {
			edits[relPath] = &ProposalEdit{}
		}
		return edits[relPath]
	}
	for relPath, v := range req.Approved {
		editFor(relPath).Approved = &v
	}
	for relPath, v := range req.Folder {
		editFor(relPath).Folder = &v
	}
	for relPath, v := range req.Name {
		editFor(relPath).Name = &v
	}

	keys := make([]string, 0, len(edits))
	for k := range edits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &UpdateProposalsResult{Updated: []string{}, Ignored: []string{}}
	for _, relPath := range keys {
		item, ok := reg.Items[relPath]
		if !ok || !item.IsReviewable() {
			result.Ignored = append(result.Ignored, relPath)
			continue
		}
		if e.proposals.Edit(item, *edits[relPath]) {
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

// Proposals lists candidates with a suggestion, most confident first.
func (e *Engine) Proposals() ([]*state.FileItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}

	out := []*state.FileItem{}
	for _, item := range reg.Items {
		if item.IsReviewable() {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Suggestion.Confidence, out[j].Suggestion.Confidence
		if ci != cj {
			return ci > cj
		}
		return strings.ToLower(out[i].RelPath) < strings.ToLower(out[j].RelPath)
	})
	return out, nil
}
