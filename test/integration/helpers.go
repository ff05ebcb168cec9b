package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/advisor"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/audit"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/clock"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/config"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/engine"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/extract"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/hash"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/naming"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/scanner"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// testStateStore is an in-memory state store for testing. It keeps the
// encoded registry so callers never share pointers with it.
type testStateStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func newTestStateStore() *testStateStore {
	return &testStateStore{}
}

func (s *testStateStore) Load() (*state.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, os.ErrNotExist
	}
	var reg state.Registry
	if err := json.Unmarshal(s.data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *testStateStore) Save(reg *state.Registry) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// testEnvironment sets up a complete test environment: a real download
// folder, the real extractor and a scripted advisor.
type testEnvironment struct {
	t        *testing.T
	root     string
	dataDir  string
	fs       *fsops.RealFS
	store    *testStateStore
	advisor  *advisor.Fake
	clock    *clock.FakeClock
	auditLog *audit.Log
	engine   *engine.Engine
}

func newTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()

	env := &testEnvironment{
		t:       t,
		root:    t.TempDir(),
		dataDir: t.TempDir(),
		fs:      fsops.NewRealFS(),
		store:   newTestStateStore(),
		advisor: advisor.NewFake(),
		clock:   clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	paths := config.PathsAt(env.dataDir)
	env.auditLog = audit.New(env.fs, paths.ActionsLog, env.clock)

	cfg := config.Default()
	opts := engine.DefaultOptions(naming.NewTaxonomy(cfg.AllowedFolders, cfg.FallbackFolder))

	env.engine = engine.New(
		env.store,
		env.fs,
		scanner.New(env.fs, cfg.Limits.MaxFilesScan),
		extract.New(hash.NewSHA256Hasher(cfg.Limits.HashMaxBytes), cfg.Limits.MaxTextChars),
		env.advisor,
		env.auditLog,
		opts,
	)

	if _, err := env.engine.SetRoot(env.root); err != nil {
		t.Fatalf("SetRoot failed: %v", err)
	}
	return env
}

// path returns the absolute path of relPath under the root.
func (env *testEnvironment) path(relPath string) string {
	return filepath.Join(env.root, filepath.FromSlash(relPath))
}

func (env *testEnvironment) writeFile(relPath string, content []byte) {
	env.t.Helper()
	path := env.path(relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		env.t.Fatal(err)
	}
}

func (env *testEnvironment) readFile(relPath string) string {
	env.t.Helper()
	data, err := os.ReadFile(env.path(relPath))
	if err != nil {
		env.t.Fatalf("failed to read %s: %v", relPath, err)
	}
	return string(data)
}

func (env *testEnvironment) exists(relPath string) bool {
	_, err := os.Stat(env.path(relPath))
	return err == nil
}

func (env *testEnvironment) item(relPath string) *state.FileItem {
	env.t.Helper()
	item, err := env.engine.Item(relPath)
	if err != nil {
		env.t.Fatalf("Item(%s) failed: %v", relPath, err)
	}
	return item
}

func suggestion(folder, name string, confidence float64, reason string) string {
	data, _ := json.Marshal(map[string]any{
		"suggestedName":   name,
		"suggestedFolder": folder,
		"confidence":      confidence,
		"reason":          reason,
	})
	return string(data)
}
