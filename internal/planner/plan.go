package planner

import "github.com/hkcmoris/onedrive-ai-organizer/internal/state"

// ApplyPlan represents a plan to relocate approved candidates.
type ApplyPlan struct {
	// Mode is the relocation mode for every operation
	Mode state.Mode

	// Operations is one entry per eligible item, ordered by relative path
	Operations []Operation

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict
}

// Operation represents a single relocation to execute.
type Operation struct {
	// Type is the operation type: "move" or "copy"
	Type string

	// RelPath is the item key (source path relative to the root)
	RelPath string

	// SourcePath is the absolute source path
	SourcePath string

	// DestRel is the destination relative to the root: folder/name
	DestRel string

	// DestPath is the absolute destination path
	DestPath string

	// Folder and Name are the resolved destination parts
	Folder string
	Name   string

	// Err is set when no safe destination could be computed. Such
	// operations are reported as failures without touching the filesystem.
	Err error
}

// ConflictKind classifies a Conflict.
type ConflictKind string

// Conflict kinds
const (
	// ConflictExists means a file already sits at the destination.
	ConflictExists ConflictKind = "exists"

	// ConflictDuplicate means an earlier item in the batch claims the same
	// destination.
	ConflictDuplicate ConflictKind = "duplicate"

	// ConflictInvalid means the destination path is unsafe.
	ConflictInvalid ConflictKind = "invalid"

	// ConflictUnknown means the destination could not be checked.
	ConflictUnknown ConflictKind = "unknown"
)

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// RelPath is the item whose operation conflicts
	RelPath string

	// Path is the destination path where the conflict was detected
	Path string

	// Kind classifies the conflict
	Kind ConflictKind

	// Reason is a human-readable explanation of the conflict
	Reason string
}

// Operation type constants
const (
	OpMove = "move"
	OpCopy = "copy"
)

// NewApplyPlan creates a new empty ApplyPlan.
func NewApplyPlan(mode state.Mode) *ApplyPlan {
	return &ApplyPlan{
		Mode:       mode,
		Operations: []Operation{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *ApplyPlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *ApplyPlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *ApplyPlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// ConflictFor returns the conflict recorded for relPath, or nil.
func (p *ApplyPlan) ConflictFor(relPath string) *Conflict {
	for i := range p.Conflicts {
		if p.Conflicts[i].RelPath == relPath {
			return &p.Conflicts[i]
		}
	}
	return nil
}
