package planner

import (
	"fmt"
	"strings"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
)

// ConflictChecker checks destinations for an apply batch.
type ConflictChecker struct {
	fs fsops.FS

	// claimed maps a case-folded destination to the item claiming it.
	// OneDrive folders are case-insensitive on Windows and macOS.
	claimed map[string]string
}

// NewConflictChecker creates a new ConflictChecker.
func NewConflictChecker(fs fsops.FS) *ConflictChecker {
	return &ConflictChecker{
		fs:      fs,
		claimed: make(map[string]string),
	}
}

// CheckPath checks for conflicts at destPath for the item relPath and claims
// the destination when it is free. Returns a Conflict if one is detected, or
// nil if the path is safe to use.
func (c *ConflictChecker) CheckPath(relPath, destPath string) *Conflict {
	key := strings.ToLower(destPath)
	if owner, taken := c.claimed[key]; taken {
		return &Conflict{
			RelPath: relPath,
			Path:    destPath,
			Kind:    ConflictDuplicate,
			Reason:  fmt.Sprintf("Destination already claimed by %s in this batch", owner),
		}
	}

	exists, err := c.fs.Exists(destPath)
	if err != nil {
		return &Conflict{
			RelPath: relPath,
			Path:    destPath,
			Kind:    ConflictUnknown,
			Reason:  fmt.Sprintf("Failed to check path: %v", err),
		}
	}

	c.claimed[key] = relPath

	if exists {
		return &Conflict{
			RelPath: relPath,
			Path:    destPath,
			Kind:    ConflictExists,
			Reason:  "File exists at destination (overwrite refused)",
		}
	}

	return nil
}

// IsClaimed returns true if destPath was claimed by an earlier check.
func (c *ConflictChecker) IsClaimed(destPath string) bool {
	_, ok := c.claimed[strings.ToLower(destPath)]
	return ok
}
