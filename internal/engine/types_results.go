package engine

import (
	"github.com/hkcmoris/onedrive-ai-organizer/internal/planner"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// ScanResult represents the result of a scan.
type ScanResult struct {
	// Found is the number of files enumerated
	Found int

	// Kept is the number of items whose prior state survived a merge
	Kept int

	// Dropped is the number of prior items no longer on disk (merge only)
	Dropped int

	// Truncated is set when the file cap stopped enumeration
	Truncated bool

	// Counts are the registry counts after the scan
	Counts state.Counts
}

// BulkStatusResult represents the result of re-tagging.
type BulkStatusResult struct {
	// Updated are relpaths whose status was set
	Updated []string

	// SkippedDone are relpaths left alone because they are done
	SkippedDone []string

	// Missing are relpaths not in the registry
	Missing []string
}

// SuggestOutcome is the per-item result of a suggestion batch.
type SuggestOutcome struct {
	RelPath    string
	Suggestion *state.Suggestion
	Approved   bool

	// Err is set when the advisor could not be reached; the item keeps no
	// suggestion and is retried by the next batch
	Err error
}

// SuggestResult represents the result of a suggestion batch.
type SuggestResult struct {
	Outcomes []SuggestOutcome

	// Remaining is the number of candidates still without a suggestion
	Remaining int
}

// Failed returns the number of outcomes with an error.
func (r *SuggestResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// UpdateProposalsResult represents the result of a proposal update.
type UpdateProposalsResult struct {
	// Updated are relpaths that changed
	Updated []string

	// Ignored are relpaths that are missing or not reviewable
	Ignored []string
}

// ApplyOutcome is the per-item result of an apply batch.
type ApplyOutcome struct {
	RelPath    string
	SourcePath string
	DestRel    string
	DestPath   string

	// OK is true once the move or copy reported success
	OK bool

	// Refused marks an overwrite refusal; the source was not touched
	Refused bool

	Err error
}

// ApplyResult represents the result of applying approved proposals.
type ApplyResult struct {
	// Plan is the generated plan
	Plan *planner.ApplyPlan

	// Outcomes has one entry per planned operation (empty if DryRun)
	Outcomes []ApplyOutcome

	// Batch is the audit batch ID (empty if DryRun)
	Batch string

	DryRun bool
}

// Succeeded returns the number of successful outcomes.
func (r *ApplyResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK {
			n++
		}
	}
	return n
}

// StatusResult represents the registry summary.
type StatusResult struct {
	Root           string
	Mode           state.Mode
	Counts         state.Counts
	AllowedFolders []string
	FallbackFolder string

	// Suggested is the number of candidates with a suggestion
	Suggested int

	// Approved is the number of candidates approved for apply
	Approved int

	// RescanRequired is set when the items were scanned under another root
	RescanRequired bool
}
