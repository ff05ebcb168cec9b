package planner

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/naming"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// Destination resolves where an item goes: the edited folder collapsed into
// the taxonomy, and the edited name sanitized with the item's extension.
// Items without an edited name keep their current name.
func Destination(item *state.FileItem, taxonomy naming.Taxonomy, maxNameChars int) (folder, name string) {
	folder = taxonomy.Resolve(item.EditedFolder)

	name = item.EditedName
	if name == "" {
		name = item.Name
	}
	name = naming.WithExtension(name, item.Extension, item.Name, maxNameChars)
	return folder, name
}

// BuildApplyPlan generates a deterministic plan for every approved candidate
// in reg. Items in any other state are not part of the plan.
func BuildApplyPlan(
	reg *state.Registry,
	taxonomy naming.Taxonomy,
	maxNameChars int,
	fs fsops.FS,
) (*ApplyPlan, error) {
	if reg.Root == "" {
		return nil, fmt.Errorf("registry has no root")
	}
	if !reg.Mode.Valid() {
		return nil, fmt.Errorf("invalid apply mode %q", reg.Mode)
	}

	plan := NewApplyPlan(reg.Mode)
	checker := NewConflictChecker(fs)

	opType := OpMove
	if reg.Mode == state.ModeCopy {
		opType = OpCopy
	}

	for _, relPath := range reg.SortedRelPaths() {
		item := reg.Items[relPath]
		if !item.IsEligibleForApply() {
			continue
		}

		folder, name := Destination(item, taxonomy, maxNameChars)
		destRel := path.Join(folder, name)

		op := Operation{
			Type:       opType,
			RelPath:    relPath,
			SourcePath: filepath.Join(reg.Root, filepath.FromSlash(relPath)),
			DestRel:    destRel,
			DestPath:   filepath.Join(reg.Root, filepath.FromSlash(destRel)),
			Folder:     folder,
			Name:       name,
		}

		if name == "" {
			op.Err = fmt.Errorf("empty destination name")
		} else if err := fs.ValidateRelPath(destRel); err != nil {
			op.Err = err
		} else if err := fs.ValidateRelPath(relPath); err != nil {
			op.Err = fmt.Errorf("source: %w", err)
		}

		if op.Err != nil {
			plan.AddConflict(Conflict{
				RelPath: relPath,
				Path:    destRel,
				Kind:    ConflictInvalid,
				Reason:  op.Err.Error(),
			})
			plan.AddOperation(op)
			continue
		}

		if conflict := checker.CheckPath(relPath, op.DestPath); conflict != nil {
			plan.AddConflict(*conflict)
		}
		plan.AddOperation(op)
	}

	return plan, nil
}
