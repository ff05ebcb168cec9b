package cli

import (
	"encoding/json"
	"fmt"

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

// loadSettings resolves the data directory and the effective config:
// the YAML file overlaid with flag and environment overrides.
func loadSettings() (*config.Paths, *config.Config, error) {
	var paths *config.Paths
	if dir := settings.GetString("data_dir"); dir != "" {
		paths = config.PathsAt(dir)
	} else {
		p, err := config.DefaultPaths()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get config paths: %w", err)
		}
		paths = p
	}

	cfgPath := settings.GetString("config")
	if cfgPath == "" {
		cfgPath = paths.Config
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	if model := settings.GetString("advisor.model"); model != "" {
		cfg.Advisor.Model = model
	}
	if url := settings.GetString("advisor.base_url"); url != "" {
		cfg.Advisor.BaseURL = url
	}
	return paths, cfg, nil
}

// session is an engine wired to real implementations, plus what commands
// need to render its results.
type session struct {
	*engine.Engine
	paths *config.Paths
	cfg   *config.Config
	close func() error
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() (*session, error) {
	paths, cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	fs := fsops.NewRealFS()
	closeFn := func() error { return nil }

	var stateStore state.StateStore
	switch cfg.StateBackend {
	case config.BackendSQLite:
		db, err := state.OpenSQLiteStateStore(paths.StateDB)
		if err != nil {
			return nil, err
		}
		stateStore = db
		closeFn = db.Close
	default:
		stateStore = state.NewFileStateStore(fs, paths.StateJSON)
	}

	taxonomy := naming.NewTaxonomy(cfg.AllowedFolders, cfg.FallbackFolder)
	opts := engine.Options{
		Taxonomy:             taxonomy,
		DefaultMode:          state.Mode(cfg.DefaultMode),
		AutoApproveThreshold: cfg.Threshold(),
		MaxNameChars:         cfg.Limits.MaxNameChars,
		MaxReasonChars:       cfg.Limits.MaxReasonChars,
		MaxPreviewChars:      cfg.Limits.MaxTextChars,
		SuggestLimitDefault:  cfg.Limits.SuggestLimitDefault,
		SuggestLimitMax:      cfg.Limits.SuggestLimitMax,
		AdvisorPause:         cfg.Advisor.Pause,
	}

	adv := advisor.NewOpenAI(advisor.OpenAIConfig{
		BaseURL:         cfg.Advisor.BaseURL,
		APIKey:          cfg.Advisor.APIKey,
		Model:           cfg.Advisor.Model,
		Temperature:     cfg.Advisor.Temperature,
		Timeout:         cfg.Advisor.Timeout,
		Fallback:        cfg.FallbackFolder,
		MaxPreviewChars: cfg.Limits.MaxTextChars,
	})

	eng := engine.New(
		stateStore,
		fs,
		scanner.New(fs, cfg.Limits.MaxFilesScan),
		extract.New(hash.NewSHA256Hasher(cfg.Limits.HashMaxBytes), cfg.Limits.MaxTextChars),
		adv,
		audit.New(fs, paths.ActionsLog, &clock.RealClock{}),
		opts,
	)

	return &session{Engine: eng, paths: paths, cfg: cfg, close: closeFn}, nil
}

// withEngine runs fn against a fresh session and closes it afterwards.
func withEngine(fn func(s *session) error) error {
	s, err := newEngine()
	if err != nil {
		return err
	}
	defer func() {
		_ = s.close()
	}()
	return fn(s)
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errString renders an optional error for JSON output.
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
