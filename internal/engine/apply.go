package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/audit"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/planner"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// Apply relocates every approved candidate.
//
// Algorithm steps:
// 1. Verify the root exists
// 2. Build the plan (approved candidates, resolved destinations, conflicts)
// 3. Return the plan alone for DryRun
// 4. Per operation: create the destination folder, refuse an occupied
// destination, move or copy, append an audit entry
// 5. Mark an item done only after its move or copy succeeded, and persist
//
// Items are independent: a failed item stays a candidate and the batch goes
// on. Only a failure to persist the registry aborts the batch.
func (e *Engine) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}
	if reg.Root == "" {
		return nil, ErrNoRoot
	}
	if err := requireScannedRoot(reg); err != nil {
		return nil, err
	}
	info, err := e.fs.Stat(reg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPathError, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPathError, reg.Root)
	}

	plan, err := planner.BuildApplyPlan(reg, e.opts.Taxonomy, e.opts.MaxNameChars, e.fs)
	if err != nil {
		return nil, fmt.Errorf("failed to build apply plan: %w", err)
	}

	if req.DryRun {
		return &ApplyResult{
			Plan:     plan,
			Outcomes: []ApplyOutcome{},
			DryRun:   true,
		}, nil
	}

	result := &ApplyResult{
		Plan:     plan,
		Outcomes: []ApplyOutcome{},
		Batch:    e.auditLog.NewBatchID(),
	}

	for _, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := e.executeOperation(plan, op)
		result.Outcomes = append(result.Outcomes, outcome)
		e.record(result.Batch, reg.Mode, outcome)

		if !outcome.OK {
			slog.Warn("apply failed",
				"relpath", op.RelPath,
				"dest", op.DestRel,
				"refused", outcome.Refused,
				"error", outcome.Err)
			continue
		}

		item := reg.Items[op.RelPath]
		item.Status = state.StatusDone
		item.DoneDestination = op.DestRel
		item.Approved = false

		if err := e.save(); err != nil {
			return result, err
		}
		slog.Debug("applied", "relpath", op.RelPath, "dest", op.DestRel, "mode", reg.Mode)
	}

	return result, nil
}

// executeOperation performs one relocation. A destination already claimed
// (case-insensitively) by an earlier item of the batch is refused. The
// on-disk destination check happens here, after planning, and is never
// skipped.
func (e *Engine) executeOperation(plan *planner.ApplyPlan, op planner.Operation) ApplyOutcome {
	outcome := ApplyOutcome{
		RelPath:    op.RelPath,
		SourcePath: op.SourcePath,
		DestRel:    op.DestRel,
		DestPath:   op.DestPath,
	}

	if op.Err != nil {
		outcome.Err = fmt.Errorf("invalid destination: %w", op.Err)
		return outcome
	}
	if c := plan.ConflictFor(op.RelPath); c != nil && c.Kind == planner.ConflictDuplicate {
		outcome.Refused = true
		outcome.Err = fmt.Errorf("%w: %s (%s)", ErrOverwriteRefused, op.DestRel, c.Reason)
		return outcome
	}

	if err := e.fs.MkdirAll(filepath.Dir(op.DestPath), 0755); err != nil {
		outcome.Err = fmt.Errorf("failed to create destination folder: %w", err)
		return outcome
	}

	exists, err := e.fs.Exists(op.DestPath)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to check destination: %w", err)
		return outcome
	}
	if exists {
		outcome.Refused = true
		outcome.Err = fmt.Errorf("%w: %s", ErrOverwriteRefused, op.DestRel)
		return outcome
	}

	switch op.Type {
	case planner.OpCopy:
		err = e.fs.Copy(op.SourcePath, op.DestPath)
	case planner.OpMove:
		err = e.fs.Move(op.SourcePath, op.DestPath)
	default:
		err = fmt.Errorf("unknown operation type: %s", op.Type)
	}
	if err != nil {
		if errors.Is(err, fsops.ErrDestinationExists) {
			outcome.Refused = true
			outcome.Err = fmt.Errorf("%w: %s", ErrOverwriteRefused, op.DestRel)
			return outcome
		}
		if errors.Is(err, os.ErrNotExist) {
			outcome.Err = fmt.Errorf("source missing: %w", err)
			return outcome
		}
		outcome.Err = err
		return outcome
	}

	outcome.OK = true
	return outcome
}

// record appends the audit entry for one attempt. A failed append is logged
// and does not fail the item.
func (e *Engine) record(batch string, mode state.Mode, o ApplyOutcome) {
	entry := audit.Entry{
		Batch:   batch,
		Action:  audit.ActionApply,
		Mode:    string(mode),
		Rel:     o.RelPath,
		Src:     o.SourcePath,
		Dest:    o.DestPath,
		OK:      o.OK,
		Refused: o.Refused,
	}
	if o.Err != nil {
		entry.Error = o.Err.Error()
	}
	if err := e.auditLog.Append(entry); err != nil {
		slog.Warn("failed to write audit entry", "relpath", o.RelPath, "error", err)
	}
}
