package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/advisor"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/audit"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/clock"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/naming"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/scanner"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

var testFolders = []string{
	"Finance/Invoices/2024",
	"Finance/Invoices/2025",
	"Work/Docs",
	"Media/Images",
	"_ToSort",
}

// fakePreviewer returns canned previews keyed by base name and counts calls.
type fakePreviewer struct {
	mu       sync.Mutex
	texts    map[string]string
	calls    map[string]int
	fallback state.Kind
}

func newFakePreviewer() *fakePreviewer {
	return &fakePreviewer{
		texts:    make(map[string]string),
		calls:    make(map[string]int),
		fallback: state.KindText,
	}
}

func (p *fakePreviewer) Extract(path string) *state.Preview {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := filepath.Base(path)
	p.calls[name]++
	return &state.Preview{Kind: p.fallback, Text: p.texts[name]}
}

type testEnv struct {
	t         *testing.T
	root      string
	dataDir   string
	fs        *fsops.RealFS
	store     *state.FileStateStore
	previewer *fakePreviewer
	advisor   *advisor.Fake
	auditLog  *audit.Log
	engine    *Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		t:         t,
		root:      t.TempDir(),
		dataDir:   t.TempDir(),
		fs:        fsops.NewRealFS(),
		previewer: newFakePreviewer(),
		advisor:   advisor.NewFake(),
	}
	env.store = state.NewFileStateStore(env.fs, filepath.Join(env.dataDir, "state.json"))
	env.auditLog = audit.New(env.fs, filepath.Join(env.dataDir, "actions.jsonl"),
		clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	env.engine = env.newEngine()

	if _, err := env.engine.SetRoot(env.root); err != nil {
		t.Fatalf("SetRoot failed: %v", err)
	}
	return env
}

// newEngine builds an engine over the same state, as a new process would.
func (env *testEnv) newEngine() *Engine {
	opts := DefaultOptions(naming.NewTaxonomy(testFolders, "_ToSort"))
	return New(
		env.store,
		env.fs,
		scanner.New(env.fs, 0),
		env.previewer,
		env.advisor,
		env.auditLog,
		opts,
	)
}

func (env *testEnv) writeFile(relPath, content string) string {
	env.t.Helper()
	path := filepath.Join(env.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatal(err)
	}
	return path
}

func (env *testEnv) readFile(relPath string) string {
	env.t.Helper()
	data, err := os.ReadFile(filepath.Join(env.root, filepath.FromSlash(relPath)))
	if err != nil {
		env.t.Fatalf("failed to read %s: %v", relPath, err)
	}
	return string(data)
}

func (env *testEnv) exists(relPath string) bool {
	_, err := os.Stat(filepath.Join(env.root, filepath.FromSlash(relPath)))
	return err == nil
}

func (env *testEnv) scan() *ScanResult {
	env.t.Helper()
	res, err := env.engine.Scan(&ScanRequest{})
	if err != nil {
		env.t.Fatalf("Scan failed: %v", err)
	}
	return res
}

func (env *testEnv) item(relPath string) *state.FileItem {
	env.t.Helper()
	item, err := env.engine.Item(relPath)
	if err != nil {
		env.t.Fatalf("Item(%s) failed: %v", relPath, err)
	}
	return item
}

func respond(folder, name string, confidence string) string {
	return `{"suggestedName": "` + name + `", "suggestedFolder": "` + folder + `", "confidence": ` + confidence + `, "reason": "test"}`
}

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }
