package planner

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/naming"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

var testTaxonomy = naming.NewTaxonomy([]string{"Finance/Invoices/2024", "Work/Docs"}, "_ToSort")

func approvedItem(relPath, folder, name string) *state.FileItem {
	item := state.NewFileItem(relPath, filepath.Base(relPath), filepath.Ext(relPath), 1, time.Time{})
	item.Suggestion = &state.Suggestion{SuggestedName: name, SuggestedFolder: folder, Confidence: 0.9}
	item.EditedFolder = folder
	item.EditedName = name
	item.Approved = true
	return item
}

func testRegistry(mode state.Mode, items ...*state.FileItem) *state.Registry {
	reg := state.NewRegistry(mode, testTaxonomy.Folders, testTaxonomy.Fallback)
	reg.Root = "/root"
	for _, item := range items {
		reg.Items[item.RelPath] = item
	}
	return reg
}

func TestBuildApplyPlan_SelectsEligibleItems(t *testing.T) {
	never := approvedItem("never.pdf", "Work/Docs", "Never.pdf")
	never.Status = state.StatusNever
	done := approvedItem("done.pdf", "Work/Docs", "Done.pdf")
	done.Status = state.StatusDone
	unapproved := approvedItem("later.pdf", "Work/Docs", "Later.pdf")
	unapproved.Approved = false

	reg := testRegistry(state.ModeMove,
		approvedItem("b.pdf", "Work/Docs", "B.pdf"),
		approvedItem("A.pdf", "Finance/Invoices/2024", "Invoice.pdf"),
		never, done, unapproved,
	)

	plan, err := BuildApplyPlan(reg, testTaxonomy, 180, newMockFS())
	if err != nil {
		t.Fatalf("BuildApplyPlan failed: %v", err)
	}

	if len(plan.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d: %+v", len(plan.Operations), plan.Operations)
	}
	if plan.HasConflicts() {
		t.Errorf("expected no conflicts, got %+v", plan.Conflicts)
	}

	op := plan.Operations[0]
	if op.RelPath != "A.pdf" {
		t.Errorf("operations should be ordered case-insensitively, first = %s", op.RelPath)
	}
	if op.Type != OpMove {
		t.Errorf("Type = %s, want move", op.Type)
	}
	if op.DestRel != "Finance/Invoices/2024/Invoice.pdf" {
		t.Errorf("DestRel = %s", op.DestRel)
	}
	if op.DestPath != filepath.Join("/root", "Finance", "Invoices", "2024", "Invoice.pdf") {
		t.Errorf("DestPath = %s", op.DestPath)
	}
	if op.SourcePath != filepath.Join("/root", "A.pdf") {
		t.Errorf("SourcePath = %s", op.SourcePath)
	}
}

func TestBuildApplyPlan_CopyMode(t *testing.T) {
	reg := testRegistry(state.ModeCopy, approvedItem("a.pdf", "Work/Docs", "A.pdf"))

	plan, err := BuildApplyPlan(reg, testTaxonomy, 180, newMockFS())
	if err != nil {
		t.Fatalf("BuildApplyPlan failed: %v", err)
	}
	if plan.Operations[0].Type != OpCopy {
		t.Errorf("Type = %s, want copy", plan.Operations[0].Type)
	}
}

func TestBuildApplyPlan_ResolvesDestination(t *testing.T) {
	outside := approvedItem("x.pdf", "Random/NotAllowed", "X")
	noName := approvedItem("keep.txt", "Work/Docs", "")

	reg := testRegistry(state.ModeMove, outside, noName)

	plan, err := BuildApplyPlan(reg, testTaxonomy, 180, newMockFS())
	if err != nil {
		t.Fatalf("BuildApplyPlan failed: %v", err)
	}

	byRel := map[string]Operation{}
	for _, op := range plan.Operations {
		byRel[op.RelPath] = op
	}
	if got := byRel["x.pdf"].DestRel; got != "_ToSort/X.pdf" {
		t.Errorf("folder outside taxonomy should collapse to fallback, got %s", got)
	}
	if got := byRel["keep.txt"].DestRel; got != "Work/Docs/keep.txt" {
		t.Errorf("empty edited name should keep the original name, got %s", got)
	}
}

func TestBuildApplyPlan_Conflicts(t *testing.T) {
	fs := newMockFS()
	fs.setExists(filepath.Join("/root", "Work", "Docs", "Taken.pdf"), true)

	reg := testRegistry(state.ModeMove,
		approvedItem("a.pdf", "Work/Docs", "Taken.pdf"),
		approvedItem("b.pdf", "Work/Docs", "Same.pdf"),
		approvedItem("c.pdf", "Work/Docs", "same.pdf"),
	)

	plan, err := BuildApplyPlan(reg, testTaxonomy, 180, fs)
	if err != nil {
		t.Fatalf("BuildApplyPlan failed: %v", err)
	}

	if len(plan.Operations) != 3 {
		t.Errorf("conflicting items still get operations, got %d", len(plan.Operations))
	}
	if c := plan.ConflictFor("a.pdf"); c == nil || c.Kind != ConflictExists {
		t.Errorf("a.pdf conflict = %+v, want exists", c)
	}
	if c := plan.ConflictFor("b.pdf"); c != nil {
		t.Errorf("b.pdf should be free, got %+v", c)
	}
	if c := plan.ConflictFor("c.pdf"); c == nil || c.Kind != ConflictDuplicate {
		t.Errorf("c.pdf conflict = %+v, want duplicate", c)
	}
}

func TestBuildApplyPlan_InvalidSource(t *testing.T) {
	reg := testRegistry(state.ModeMove, approvedItem("../escape.pdf", "Work/Docs", "E.pdf"))

	plan, err := BuildApplyPlan(reg, testTaxonomy, 180, newMockFS())
	if err != nil {
		t.Fatalf("BuildApplyPlan failed: %v", err)
	}
	if plan.Operations[0].Err == nil {
		t.Error("escaping source should carry an error")
	}
	if c := plan.ConflictFor("../escape.pdf"); c == nil || c.Kind != ConflictInvalid {
		t.Errorf("conflict = %+v, want invalid", c)
	}
}

func TestBuildApplyPlan_RegistryErrors(t *testing.T) {
	reg := testRegistry(state.ModeMove)
	reg.Root = ""
	if _, err := BuildApplyPlan(reg, testTaxonomy, 180, newMockFS()); err == nil {
		t.Error("expected error for missing root")
	}

	reg = testRegistry("shuffle")
	if _, err := BuildApplyPlan(reg, testTaxonomy, 180, newMockFS()); err == nil {
		t.Error("expected error for invalid mode")
	}
}
