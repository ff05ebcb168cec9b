// Package state manages the persisted item registry.
//
// The registry is the single record of what the organizer knows about the
// download area: the configured root, the apply mode, the allowed folder
// taxonomy, and one FileItem per discovered file keyed by its slash-separated
// path relative to the root.
//
// Key concepts:
//   - Registry: the whole persisted record, rewritten in full on every save
//   - FileItem: one discovered file and its review state
//   - Preview / Suggestion: cached extractor and advisor output
//   - StateStore: interface for loading and saving the registry
//
// Stores do no locking of their own. Callers serialize mutating operations.
package state
