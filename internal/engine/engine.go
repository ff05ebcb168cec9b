// Package engine provides the core business logic for organizer operations.
//
// The engine package acts as the orchestration layer between CLI commands and
// lower-level operations. It owns the in-memory registry and serializes every
// operation behind one mutex, so concurrent callers can never interleave
// saves.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Scan: Populates the registry from the root (replace or merge)
//   - RunSuggestions: Previews and advisor calls for pending candidates
//   - ProposalManager: Merges advisor output with user review
//   - Apply: Guarded relocation with audit logging
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/advisor"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/audit"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/naming"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/scanner"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// Previewer builds content previews. It must not fail; problems are
// reported in Preview.Notes.
type Previewer interface {
	Extract(path string) *state.Preview
}

// Options holds the tunables the engine enforces.
type Options struct {
	Taxonomy             naming.Taxonomy
	DefaultMode          state.Mode
	AutoApproveThreshold float64
	MaxNameChars         int
	MaxReasonChars       int
	MaxPreviewChars      int
	SuggestLimitDefault  int
	SuggestLimitMax      int

	// AdvisorPause spaces consecutive advisor calls; <= 0 disables.
	AdvisorPause time.Duration
}

// DefaultOptions returns the stock limits with the given taxonomy.
func DefaultOptions(taxonomy naming.Taxonomy) Options {
	return Options{
		Taxonomy:             taxonomy,
		DefaultMode:          state.ModeMove,
		AutoApproveThreshold: 0.75,
		MaxNameChars:         naming.DefaultMaxNameChars,
		MaxReasonChars:       advisor.DefaultMaxReasonChars,
		MaxPreviewChars:      4000,
		SuggestLimitDefault:  10,
		SuggestLimitMax:      50,
	}
}

// Engine orchestrates all organizer operations.
// It is the main API surface called by the CLI.
type Engine struct {
	mu sync.Mutex

	stateStore state.StateStore
	fs         fsops.FS
	scanner    *scanner.Scanner
	previewer  Previewer
	advisor    advisor.Advisor
	auditLog   *audit.Log
	opts       Options

	policy    advisor.Policy
	proposals ProposalManager
	limiter   *rate.Limiter

	// reg is loaded on first use and saved after every mutation.
	reg *state.Registry
}

// New creates a new Engine with the given dependencies.
func New(
	stateStore state.StateStore,
	fs fsops.FS,
	scn *scanner.Scanner,
	previewer Previewer,
	adv advisor.Advisor,
	auditLog *audit.Log,
	opts Options,
) *Engine {
	if !opts.DefaultMode.Valid() {
		opts.DefaultMode = state.ModeMove
	}

	e := &Engine{
		stateStore: stateStore,
		fs:         fs,
		scanner:    scn,
		previewer:  previewer,
		advisor:    adv,
		auditLog:   auditLog,
		opts:       opts,
		policy: advisor.Policy{
			Taxonomy:       opts.Taxonomy,
			MaxNameChars:   opts.MaxNameChars,
			MaxReasonChars: opts.MaxReasonChars,
		},
		proposals: ProposalManager{
			Taxonomy:     opts.Taxonomy,
			Threshold:    opts.AutoApproveThreshold,
			MaxNameChars: opts.MaxNameChars,
		},
	}
	if opts.AdvisorPause > 0 {
		e.limiter = rate.NewLimiter(rate.Every(opts.AdvisorPause), 1)
	}
	return e
}

// registry returns the in-memory registry, loading it or creating a default
// on first use. Callers must hold e.mu.
func (e *Engine) registry() (*state.Registry, error) {
	if e.reg != nil {
		return e.reg, nil
	}

	reg, err := e.stateStore.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrStateUnreadable, err)
		}
		slog.Debug("no saved state, starting fresh")
		reg = state.NewRegistry(e.opts.DefaultMode, e.opts.Taxonomy.Folders, e.opts.Taxonomy.Fallback)
	}
	if !reg.Mode.Valid() {
		reg.Mode = e.opts.DefaultMode
	}

	// The configured taxonomy is authoritative; the saved copy records what
	// the last run used.
	reg.AllowedFolders = append([]string(nil), e.opts.Taxonomy.Folders...)
	reg.FallbackFolder = e.opts.Taxonomy.Fallback

	e.reg = reg
	return reg, nil
}

// save persists the registry. Callers must hold e.mu.
func (e *Engine) save() error {
	if err := e.stateStore.Save(e.reg); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Taxonomy returns the folder taxonomy in display order.
func (e *Engine) Taxonomy() naming.Taxonomy {
	return e.opts.Taxonomy
}

// clampLimit bounds a requested batch size.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		limit = e.opts.SuggestLimitDefault
	}
	if limit < 1 {
		limit = 1
	}
	if e.opts.SuggestLimitMax > 0 && limit > e.opts.SuggestLimitMax {
		limit = e.opts.SuggestLimitMax
	}
	return limit
}
