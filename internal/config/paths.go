// Package config manages organizer configuration and filesystem paths.
//
// Configuration includes the location of the organizer data directory, which
// can be customized via environment variables, and the YAML config file that
// defines the folder taxonomy, extraction limits and advisor endpoint. The
// default root is ~/.organizer/ containing state, the audit log and config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnv overrides the data directory.
const RootEnv = "ORGANIZER_ROOT"

// Paths contains all the filesystem paths used by the organizer.
type Paths struct {
	// Root is the base directory for all organizer data (default: ~/.organizer)
	Root string

	// StateJSON is the registry file for the json backend
	StateJSON string

	// StateDB is the registry database for the sqlite backend
	StateDB string

	// ActionsLog is the append-only audit log
	ActionsLog string

	// Config is the path to the config file
	Config string
}

// DefaultPaths returns the default paths for the organizer.
// Paths can be overridden with environment variables:
// - ORGANIZER_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(RootEnv)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".organizer")
	}

	return PathsAt(root), nil
}

// PathsAt returns the layout under an explicit root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:       root,
		StateJSON:  filepath.Join(root, "state.json"),
		StateDB:    filepath.Join(root, "state.db"),
		ActionsLog: filepath.Join(root, "actions.jsonl"),
		Config:     filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.Root, err)
	}
	return nil
}
