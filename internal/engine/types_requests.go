package engine

import "github.com/hkcmoris/onedrive-ai-organizer/internal/state"

// ScanRequest represents a request to rescan the root.
type ScanRequest struct {
	// Merge keeps prior state for relpaths still on disk instead of
	// replacing the registry
	Merge bool
}

// BulkStatusRequest represents a request to re-tag items.
type BulkStatusRequest struct {
	// RelPaths are the selected items
	RelPaths []string

	// Status is the new status: candidate or never
	Status state.Status
}

// SuggestRequest represents a request to run a suggestion batch.
type SuggestRequest struct {
	// Limit is the maximum number of advisor calls; clamped to [1, max]
	Limit int
}

// UpdateProposalsRequest represents user review of proposals. Each map is
// keyed by relpath; absent keys leave the field unchanged.
type UpdateProposalsRequest struct {
	Approved map[string]bool
	Folder   map[string]string
	Name     map[string]string
}

// ApplyRequest represents a request to apply approved proposals.
type ApplyRequest struct {
	// DryRun performs planning only without making changes
	DryRun bool
}

// ReviewRequest filters the item listing.
type ReviewRequest struct {
	// Filter is all, candidate, never or done (empty means all)
	Filter string

	// Query is a case-insensitive substring of the relpath
	Query string
}
