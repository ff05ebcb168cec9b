// Package naming normalizes user- and advisor-supplied destination names.
//
// Nothing in this package rejects input: invalid filenames are rewritten to a
// portable form and unknown folders collapse to the fallback bucket.
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxNameChars bounds sanitized filenames, in runes.
const DefaultMaxNameChars = 180

var (
	// Characters Windows (and therefore OneDrive) refuses in file names.
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Sanitize rewrites name into a filename that is safe on Windows, macOS and
// Linux: reserved characters become '_', whitespace runs collapse to a single
// space, trailing dots and spaces are dropped and the result is at most
// maxChars runes. The result may be empty.
func Sanitize(name string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxNameChars
	}

	name = norm.NFC.String(strings.ToValidUTF8(name, ""))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, " .")

	if utf8.RuneCountInString(name) > maxChars {
		name = truncateRunes(name, maxChars)
		name = strings.TrimRight(name, " .")
	}
	return name
}

// WithExtension sanitizes name and guarantees it ends with ext
// (case-insensitively). When the extension is missing it is appended to the
// sanitized stem, shortening the stem so the extension always survives the
// length bound. If nothing usable remains, fallback is sanitized instead.
func WithExtension(name, ext, fallback string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxNameChars
	}

	clean := Sanitize(name, maxChars)
	if clean == "" {
		clean = Sanitize(fallback, maxChars)
	}
	if ext == "" || HasExtension(clean, ext) {
		return clean
	}

	stem := strings.TrimSuffix(clean, filepath.Ext(clean))
	stem = Sanitize(stem, maxChars-utf8.RuneCountInString(ext))
	if stem == "" {
		stem = Sanitize(strings.TrimSuffix(fallback, filepath.Ext(fallback)), maxChars-utf8.RuneCountInString(ext))
	}
	return stem + ext
}

// HasExtension reports whether name ends with ext, ignoring case.
func HasExtension(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Taxonomy is the closed set of destination folders plus the fallback bucket.
type Taxonomy struct {
	Folders  []string
	Fallback string
}

// NewTaxonomy creates a Taxonomy. The fallback is always a member.
func NewTaxonomy(folders []string, fallback string) Taxonomy {
	return Taxonomy{Folders: folders, Fallback: fallback}
}

// Contains reports whether folder is an allowed destination. The fallback
// bucket is always allowed.
func (t Taxonomy) Contains(folder string) bool {
	if folder == t.Fallback {
		return true
	}
	for _, f := range t.Folders {
		if f == folder {
			return true
		}
	}
	return false
}

// Resolve returns folder when it is allowed, the fallback otherwise.
func (t Taxonomy) Resolve(folder string) string {
	folder = strings.TrimSpace(folder)
	if folder != "" && t.Contains(folder) {
		return folder
	}
	return t.Fallback
}

// Options returns the folders offered to users and the advisor, ending with
// the fallback bucket exactly once.
func (t Taxonomy) Options() []string {
	out := make([]string, 0, len(t.Folders)+1)
	seenFallback := false
	for _, f := range t.Folders {
		if f == t.Fallback {
			seenFallback = true
		}
		out = append(out, f)
	}
	if !seenFallback && t.Fallback != "" {
		out = append(out, t.Fallback)
	}
	return out
}
