package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/audit"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

func applyAll(t *testing.T, env *testEnv) *ApplyResult {
	t.Helper()
	res, err := env.engine.Apply(context.Background(), &ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return res
}

// suggestAll gives every candidate the same folder with its own name.
func suggestAll(t *testing.T, env *testEnv, folder string, names map[string]string) {
	t.Helper()
	for file, name := range names {
		env.advisor.SetResponse(file, respond(folder, name, "0.9"))
	}
	runSuggest(t, env, 50)
}

func TestApply_MovesApprovedItem(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("invoice_2024_03.pdf", "pdf bytes")
	env.scan()
	suggestAll(t, env, "Finance/Invoices/2024", map[string]string{
		"invoice_2024_03.pdf": "Invoice_2024-03-01.pdf",
	})

	res := applyAll(t, env)

	if res.Succeeded() != 1 || res.Batch == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if env.exists("invoice_2024_03.pdf") {
		t.Error("source should be gone in move mode")
	}
	if got := env.readFile("Finance/Invoices/2024/Invoice_2024-03-01.pdf"); got != "pdf bytes" {
		t.Errorf("destination content = %q", got)
	}

	item := env.item("invoice_2024_03.pdf")
	if item.Status != state.StatusDone {
		t.Errorf("Status = %q, want done", item.Status)
	}
	if item.DoneDestination != "Finance/Invoices/2024/Invoice_2024-03-01.pdf" {
		t.Errorf("DoneDestination = %q", item.DoneDestination)
	}
}

func TestApply_RefusesExistingDestination(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("report.pdf", "new")
	env.writeFile("Work/Docs/Report.pdf", "existing")
	env.scan()
	if _, err := env.engine.BulkSetStatus(&BulkStatusRequest{
		RelPaths: []string{"Work/Docs/Report.pdf"},
		Status:   state.StatusNever,
	}); err != nil {
		t.Fatal(err)
	}
	suggestAll(t, env, "Work/Docs", map[string]string{"report.pdf": "Report.pdf"})

	dry, err := env.engine.Apply(context.Background(), &ApplyRequest{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !dry.Plan.HasConflicts() {
		t.Error("dry run should report the occupied destination")
	}

	res := applyAll(t, env)

	if len(res.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(res.Outcomes))
	}
	out := res.Outcomes[0]
	if out.OK || !out.Refused || !errors.Is(out.Err, ErrOverwriteRefused) {
		t.Errorf("expected refusal, got %+v", out)
	}
	if got := env.readFile("report.pdf"); got != "new" {
		t.Errorf("source modified: %q", got)
	}
	if got := env.readFile("Work/Docs/Report.pdf"); got != "existing" {
		t.Errorf("existing file modified: %q", got)
	}
	item := env.item("report.pdf")
	if item.Status != state.StatusCandidate || !item.Approved {
		t.Errorf("refused item should stay an approved candidate: %+v", item)
	}
}

func TestApply_CopyModeKeepsSource(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.SetMode("copy"); err != nil {
		t.Fatal(err)
	}
	env.writeFile("photo.png", "img")
	env.scan()
	suggestAll(t, env, "Media/Images", map[string]string{"photo.png": "Beach"})

	res := applyAll(t, env)

	if res.Succeeded() != 1 {
		t.Fatalf("unexpected outcomes: %+v", res.Outcomes)
	}
	if got := env.readFile("photo.png"); got != "img" {
		t.Errorf("source should be kept in copy mode, got %q", got)
	}
	if got := env.readFile("Media/Images/Beach.png"); got != "img" {
		t.Errorf("copy content = %q", got)
	}
	if env.item("photo.png").Status != state.StatusDone {
		t.Error("copied item should be done")
	}
}

func TestApply_SkipsUnapprovedAndDone(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("a.txt", "a")
	env.writeFile("b.txt", "b")
	env.scan()
	env.advisor.SetResponse("a.txt", respond("Work/Docs", "A.txt", "0.9"))
	env.advisor.SetResponse("b.txt", respond("Work/Docs", "B.txt", "0.3"))
	runSuggest(t, env, 10)

	first := applyAll(t, env)
	if len(first.Outcomes) != 1 || first.Outcomes[0].RelPath != "a.txt" {
		t.Fatalf("only the approved item should be applied: %+v", first.Outcomes)
	}

	second := applyAll(t, env)
	if len(second.Outcomes) != 0 {
		t.Errorf("done items must not be applied again: %+v", second.Outcomes)
	}
	if env.exists("Work/Docs/B.txt") || !env.exists("b.txt") {
		t.Error("unapproved item should not move")
	}
}

func TestApply_DryRunTouchesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("a.txt", "a")
	env.scan()
	suggestAll(t, env, "Work/Docs", map[string]string{"a.txt": "A.txt"})

	res, err := env.engine.Apply(context.Background(), &ApplyRequest{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.DryRun || len(res.Plan.Operations) != 1 || len(res.Outcomes) != 0 {
		t.Errorf("unexpected dry run result: %+v", res)
	}
	if res.Plan.Operations[0].DestRel != "Work/Docs/A.txt" {
		t.Errorf("DestRel = %q", res.Plan.Operations[0].DestRel)
	}
	if !env.exists("a.txt") || env.exists("Work/Docs/A.txt") {
		t.Error("dry run must not touch the filesystem")
	}
	if env.item("a.txt").Status != state.StatusCandidate {
		t.Error("dry run must not change status")
	}
	entries, err := env.engine.AuditTail(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run must not write audit entries, got %d", len(entries))
	}
}

func TestApply_DuplicateDestinations(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("one.txt", "1")
	env.writeFile("two.txt", "2")
	env.scan()
	suggestAll(t, env, "Work/Docs", map[string]string{
		"one.txt": "Notes.txt",
		"two.txt": "notes.txt",
	})

	res := applyAll(t, env)

	if res.Succeeded() != 1 {
		t.Fatalf("exactly one of the colliding items should move: %+v", res.Outcomes)
	}
	if res.Outcomes[1].OK || !res.Outcomes[1].Refused {
		t.Errorf("second item should be refused: %+v", res.Outcomes[1])
	}
	if got := env.readFile("two.txt"); got != "2" {
		t.Errorf("refused source modified: %q", got)
	}
}

func TestApply_WritesAuditEntries(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("a.txt", "a")
	env.writeFile("b.txt", "b")
	env.writeFile("Work/Docs/B.txt", "taken")
	env.scan()
	suggestAll(t, env, "Work/Docs", map[string]string{"a.txt": "A.txt", "b.txt": "B.txt"})

	res := applyAll(t, env)

	entries, err := env.engine.AuditTail(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Batch != res.Batch || e.Action != audit.ActionApply || e.Mode != "move" {
			t.Errorf("unexpected entry: %+v", e)
		}
	}
	if !entries[0].OK || entries[0].Rel != "a.txt" {
		t.Errorf("first entry should record the move: %+v", entries[0])
	}
	if entries[1].OK || !entries[1].Refused || entries[1].Error == "" {
		t.Errorf("second entry should record the refusal: %+v", entries[1])
	}
}

func TestApply_StatePersists(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("a.txt", "a")
	env.scan()
	suggestAll(t, env, "Work/Docs", map[string]string{"a.txt": "A.txt"})
	applyAll(t, env)

	env.engine = env.newEngine()

	item := env.item("a.txt")
	if item.Status != state.StatusDone || item.DoneDestination != "Work/Docs/A.txt" {
		t.Errorf("state not persisted: %+v", item)
	}
	status, err := env.engine.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status.Root != env.root || status.Counts.Done != 1 {
		t.Errorf("unexpected status after reload: %+v", status)
	}
}

func TestApply_MissingRoot(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.SetRoot(env.root + "/gone"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.engine.Apply(context.Background(), &ApplyRequest{}); !errors.Is(err, ErrPathError) {
		t.Errorf("error = %v, want ErrPathError", err)
	}
}
