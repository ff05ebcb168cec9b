package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// DefaultAllowedFolders is the taxonomy used when the config file names none.
var DefaultAllowedFolders = []string{
	"Finance/Invoices/2024",
	"Finance/Invoices/2025",
	"Finance/Taxes",
	"Finance/Contracts",
	"Work/IT",
	"Work/Docs",
	"Work/Clients",
	"Dev/Docs",
	"Dev/Assets",
	"Dev/Tools",
	"Design/AI",
	"Design/PSD",
	"Design/SVG",
	"Media/Images",
	"Media/Screenshots",
	"Installers",
	"_ToSort",
}

// Backend names for StateBackend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config mirrors config.yaml.
type Config struct {
	AllowedFolders []string `yaml:"allowed_folders"`
	FallbackFolder string   `yaml:"fallback_folder"`
	DefaultMode    string   `yaml:"default_mode"`   // "move" or "copy"
	StateBackend   string   `yaml:"state_backend"`  // "json" or "sqlite"

	Limits  LimitsConfig  `yaml:"limits"`
	Advisor AdvisorConfig `yaml:"advisor"`

	// AutoApproveThreshold is the confidence at or above which a fresh
	// suggestion is pre-approved. An explicit 0 approves every suggestion;
	// leaving it unset selects DefaultAutoApproveThreshold.
	AutoApproveThreshold *float64 `yaml:"auto_approve_threshold"`
}

// DefaultAutoApproveThreshold applies when auto_approve_threshold is unset.
const DefaultAutoApproveThreshold = 0.75

// Threshold returns the effective auto-approval threshold.
func (c *Config) Threshold() float64 {
	if c.AutoApproveThreshold == nil {
		return DefaultAutoApproveThreshold
	}
	return *c.AutoApproveThreshold
}

// LimitsConfig bounds per-file work.
type LimitsConfig struct {
	MaxTextChars        int   `yaml:"max_text_chars"`
	MaxFilesScan        int   `yaml:"max_files_scan"`
	HashMaxBytes        int64 `yaml:"hash_max_bytes"`
	MaxReasonChars      int   `yaml:"max_reason_chars"`
	MaxNameChars        int   `yaml:"max_name_chars"`
	SuggestLimitDefault int   `yaml:"suggest_limit_default"`
	SuggestLimitMax     int   `yaml:"suggest_limit_max"`
}

// AdvisorConfig points at an OpenAI-compatible chat completion endpoint.
// Ollama serves one at /v1.
type AdvisorConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"` // supports ${VAR}
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Pause       time.Duration `yaml:"pause"` // delay between consecutive calls; negative disables
}

// Default returns a Config with every field populated.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero values.
func (c *Config) applyDefaults() {
	if len(c.AllowedFolders) == 0 {
		c.AllowedFolders = append([]string(nil), DefaultAllowedFolders...)
	}
	if c.FallbackFolder == "" {
		c.FallbackFolder = "_ToSort"
	}
	if c.DefaultMode == "" {
		c.DefaultMode = string(state.ModeMove)
	}
	if c.StateBackend == "" {
		c.StateBackend = BackendJSON
	}
	if c.AutoApproveThreshold == nil {
		threshold := DefaultAutoApproveThreshold
		c.AutoApproveThreshold = &threshold
	}

	l := &c.Limits
	if l.MaxTextChars == 0 {
		l.MaxTextChars = 4000
	}
	if l.MaxFilesScan == 0 {
		l.MaxFilesScan = 5000
	}
	if l.HashMaxBytes == 0 {
		l.HashMaxBytes = 2_000_000
	}
	if l.MaxReasonChars == 0 {
		l.MaxReasonChars = 300
	}
	if l.MaxNameChars == 0 {
		l.MaxNameChars = 180
	}
	if l.SuggestLimitDefault == 0 {
		l.SuggestLimitDefault = 10
	}
	if l.SuggestLimitMax == 0 {
		l.SuggestLimitMax = 50
	}

	a := &c.Advisor
	if a.BaseURL == "" {
		a.BaseURL = "http://127.0.0.1:11434/v1"
	}
	if a.Model == "" {
		a.Model = "llama3.1:8b"
	}
	if a.APIKey == "" {
		a.APIKey = "ollama"
	}
	if a.Temperature == 0 {
		a.Temperature = 0.2
	}
	if a.Timeout == 0 {
		a.Timeout = 600 * time.Second
	}
	if a.Pause == 0 {
		a.Pause = 50 * time.Millisecond
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if !state.Mode(c.DefaultMode).Valid() {
		return fmt.Errorf("default_mode must be move or copy, got %q", c.DefaultMode)
	}
	if c.StateBackend != BackendJSON && c.StateBackend != BackendSQLite {
		return fmt.Errorf("state_backend must be json or sqlite, got %q", c.StateBackend)
	}
	if t := c.Threshold(); t < 0 || t > 1 {
		return fmt.Errorf("auto_approve_threshold must be within [0, 1], got %v", t)
	}
	for _, folder := range append([]string{c.FallbackFolder}, c.AllowedFolders...) {
		if folder != path.Clean(folder) {
			return fmt.Errorf("allowed folder %q is not in canonical form", folder)
		}
		if err := fsops.ValidateRelPath(folder); err != nil {
			return fmt.Errorf("allowed folder %q: %w", folder, err)
		}
	}
	if c.Advisor.Timeout < 0 {
		return fmt.Errorf("advisor.timeout must not be negative")
	}
	return nil
}

// Load reads the YAML config at path, expands ${VAR} references and fills
// defaults. A missing file yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML, used by `organizer config init`.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
