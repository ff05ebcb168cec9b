package state

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	allowed := []string{"Finance/Taxes", "_ToSort"}
	reg := NewRegistry(ModeMove, allowed, "_ToSort")

	if reg.Mode != ModeMove {
		t.Errorf("Mode = %q, want move", reg.Mode)
	}
	if reg.Items == nil || len(reg.Items) != 0 {
		t.Errorf("expected empty initialized Items, got %v", reg.Items)
	}
	if reg.FallbackFolder != "_ToSort" {
		t.Errorf("FallbackFolder = %q", reg.FallbackFolder)
	}

	allowed[0] = "mutated"
	if reg.AllowedFolders[0] != "Finance/Taxes" {
		t.Error("NewRegistry should copy the folder list")
	}
}

func TestNewFileItem(t *testing.T) {
	mtime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	item := NewFileItem("sub/invoice_2024_03.pdf", "invoice_2024_03.pdf", ".pdf", 1024, mtime)

	if item.Status != StatusCandidate {
		t.Errorf("Status = %q, want candidate", item.Status)
	}
	if item.Approved {
		t.Error("new items must not be approved")
	}
	if item.Preview != nil || item.Suggestion != nil {
		t.Error("new items start without preview and suggestion")
	}
	if !item.ModifiedTime.Equal(mtime) {
		t.Errorf("ModifiedTime = %v", item.ModifiedTime)
	}
}

func TestRegistry_Counts(t *testing.T) {
	reg := NewRegistry(ModeCopy, nil, "_ToSort")
	if got := reg.Counts(); got != (Counts{}) {
		t.Errorf("empty registry counts = %+v, want zeros", got)
	}

	reg.Items["a"] = &FileItem{Status: StatusCandidate}
	reg.Items["b"] = &FileItem{Status: StatusNever}
	reg.Items["c"] = &FileItem{Status: StatusDone}
	reg.Items["d"] = &FileItem{Status: StatusDone}

	want := Counts{Total: 4, Candidate: 1, Never: 1, Done: 2}
	if got := reg.Counts(); got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
}

func TestRegistry_SortedRelPaths(t *testing.T) {
	reg := NewRegistry(ModeMove, nil, "_ToSort")
	for _, k := range []string{"b.txt", "A.txt", "a/z.txt", "C.txt"} {
		reg.Items[k] = &FileItem{RelPath: k}
	}

	got := reg.SortedRelPaths()
	want := []string{"A.txt", "a/z.txt", "b.txt", "C.txt"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedRelPaths() = %v, want %v", got, want)
		}
	}
}

func TestRegistry_RescanRequired(t *testing.T) {
	item := NewFileItem("a.txt", "a.txt", ".txt", 1, time.Time{})
	tests := []struct {
		name    string
		root    string
		scanned string
		items   bool
		want    bool
	}{
		{name: "scanned under current root", root: "/a", scanned: "/a", items: true, want: false},
		{name: "root changed", root: "/b", scanned: "/a", items: true, want: true},
		{name: "root changed without items", root: "/b", scanned: "/a", items: false, want: false},
		{name: "scanned root unknown", root: "/b", scanned: "", items: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(ModeMove, nil, "_ToSort")
			reg.Root = tt.root
			reg.ScannedRoot = tt.scanned
			if tt.items {
				reg.Items[item.RelPath] = item
			}
			if got := reg.RescanRequired(); got != tt.want {
				t.Errorf("RescanRequired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileItem_Eligibility(t *testing.T) {
	tests := []struct {
		name       string
		item       FileItem
		apply      bool
		reviewable bool
	}{
		{name: "approved candidate with suggestion", item: FileItem{Status: StatusCandidate, Approved: true, Suggestion: &Suggestion{}}, apply: true, reviewable: true},
		{name: "unapproved candidate", item: FileItem{Status: StatusCandidate, Suggestion: &Suggestion{}}, apply: false, reviewable: true},
		{name: "candidate without suggestion", item: FileItem{Status: StatusCandidate}, apply: false, reviewable: false},
		{name: "approved but done", item: FileItem{Status: StatusDone, Approved: true, Suggestion: &Suggestion{}}, apply: false, reviewable: false},
		{name: "approved but never", item: FileItem{Status: StatusNever, Approved: true, Suggestion: &Suggestion{}}, apply: false, reviewable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.IsEligibleForApply(); got != tt.apply {
				t.Errorf("IsEligibleForApply() = %v, want %v", got, tt.apply)
			}
			if got := tt.item.IsReviewable(); got != tt.reviewable {
				t.Errorf("IsReviewable() = %v, want %v", got, tt.reviewable)
			}
		})
	}
}

func TestDecodeRegistry_Normalizes(t *testing.T) {
	raw := `{"root":"/dl","mode":"copy","items":{"x.txt":{"name":"x.txt"},"gone":null}}`

	reg, err := decodeRegistry([]byte(raw))
	if err != nil {
		t.Fatalf("decodeRegistry failed: %v", err)
	}

	item, ok := reg.Items["x.txt"]
	if !ok {
		t.Fatal("expected x.txt item")
	}
	if item.RelPath != "x.txt" {
		t.Errorf("RelPath = %q, want key", item.RelPath)
	}
	if item.Status != StatusCandidate {
		t.Errorf("Status = %q, want candidate default", item.Status)
	}
	if _, ok := reg.Items["gone"]; ok {
		t.Error("nil items should be dropped")
	}
}

func TestMode_Valid(t *testing.T) {
	for mode, want := range map[Mode]bool{ModeMove: true, ModeCopy: true, "rename": false, "": false} {
		if got := mode.Valid(); got != want {
			t.Errorf("Mode(%q).Valid() = %v, want %v", mode, got, want)
		}
	}
}

func TestFileItem_JSONFieldNames(t *testing.T) {
	item := NewFileItem("a.pdf", "a.pdf", ".pdf", 1, time.Time{})
	item.Suggestion = &Suggestion{SuggestedName: "b.pdf", SuggestedFolder: "_ToSort", Confidence: 0.5}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"relpath", "status", "approved", "preview", "suggestion", "editedName", "editedFolder"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing JSON field %q", key)
		}
	}
	if _, ok := fields["doneDestination"]; ok {
		t.Error("doneDestination should be omitted until set")
	}
}
