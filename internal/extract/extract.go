// Package extract turns a file into a bounded, best-effort content preview.
//
// Dispatch is by lowercase extension through a fixed lookup table into one
// variant per content kind. Unrecognized extensions use the metadata variant.
// Every variant reports failures as a note on the returned preview; Extract
// itself never fails and never panics.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/clock"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/hash"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// DefaultMaxTextChars bounds the preview text of every kind.
const DefaultMaxTextChars = 4000

// Per-kind limits.
const (
	pdfMaxPages       = 3
	docxMaxParagraphs = 80
	xlsxMaxSheets     = 20
	xlsxMaxHeaderCell = 60
	xlsxMaxHeaderLen  = 25
	svgRawPrefixChars = 800
	svgMaxReadBytes   = 1 << 20
	jsonMaxKeys       = 60
	jsonMaxReadBytes  = 8 << 20
)

// extensions maps a lowercase extension (with dot) to its content kind.
var extensions = map[string]state.Kind{
	".exe": state.KindBinary,
	".msi": state.KindBinary,
	".dll": state.KindBinary,

	".zip": state.KindArchive,
	".rar": state.KindArchive,
	".7z":  state.KindArchive,
	".tar": state.KindArchive,
	".gz":  state.KindArchive,
	".tgz": state.KindArchive,

	".ai":  state.KindDesign,
	".psd": state.KindDesign,

	".txt": state.KindText,
	".md":  state.KindText,
	".log": state.KindLog,
	".csv": state.KindCSV,

	".json": state.KindJSON,
	".docx": state.KindDocx,
	".xlsx": state.KindXlsx,
	".xlsm": state.KindXlsx,
	".pdf":  state.KindPDF,

	".jpg":  state.KindImage,
	".jpeg": state.KindImage,
	".png":  state.KindImage,
	".webp": state.KindImage,
	".gif":  state.KindImage,
	".bmp":  state.KindImage,

	".svg": state.KindSVG,
}

// variant extracts one content kind. A nil decode means metadata only.
type variant struct {
	// note prefixes failure notes, e.g. "pdf parse failed"
	note   string
	decode func(e *Extractor, path string, p *state.Preview) error
}

var variants = map[state.Kind]variant{
	state.KindBinary:   {note: "hash failed", decode: (*Extractor).decodeBinary},
	state.KindArchive:  {},
	state.KindDesign:   {},
	state.KindImage:    {note: "image decode failed", decode: (*Extractor).decodeImage},
	state.KindText:     {note: "read failed", decode: (*Extractor).decodeText},
	state.KindLog:      {note: "read failed", decode: (*Extractor).decodeText},
	state.KindCSV:      {note: "read failed", decode: (*Extractor).decodeText},
	state.KindJSON:     {note: "read failed", decode: (*Extractor).decodeJSON},
	state.KindDocx:     {note: "docx parse failed", decode: (*Extractor).decodeDocx},
	state.KindXlsx:     {note: "xlsx parse failed", decode: (*Extractor).decodeXlsx},
	state.KindPDF:      {note: "pdf parse failed", decode: (*Extractor).decodePDF},
	state.KindSVG:      {note: "svg read failed", decode: (*Extractor).decodeSVG},
	state.KindMetadata: {},
}

// KindForExtension returns the content kind for ext, which may be given with
// or without a leading dot and in any case.
func KindForExtension(ext string) state.Kind {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if kind, ok := extensions[ext]; ok {
		return kind
	}
	return state.KindMetadata
}

// Extractor builds previews.
type Extractor struct {
	hasher       hash.Hasher
	maxTextChars int
}

// New creates an Extractor. A non-positive maxTextChars selects
// DefaultMaxTextChars.
func New(hasher hash.Hasher, maxTextChars int) *Extractor {
	if maxTextChars <= 0 {
		maxTextChars = DefaultMaxTextChars
	}
	return &Extractor{
		hasher:       hasher,
		maxTextChars: maxTextChars,
	}
}

// MaxTextChars returns the text budget.
func (e *Extractor) MaxTextChars() int {
	return e.maxTextChars
}

// Extract builds the preview for the file at path. Failures, including
// decoder panics, are recorded in Preview.Notes.
func (e *Extractor) Extract(path string) (p *state.Preview) {
	kind := KindForExtension(filepath.Ext(path))
	v := variants[kind]

	p = &state.Preview{Kind: kind}

	info, err := os.Stat(path)
	if err != nil {
		p.Notes = fmt.Sprintf("stat failed: %v", err)
		return p
	}
	p.Size = info.Size()
	p.ModifiedTime = clock.Truncate(info.ModTime())

	if v.decode == nil {
		return p
	}

	defer func() {
		if r := recover(); r != nil {
			p.Text = ""
			p.Notes = fmt.Sprintf("%s: %v", v.note, r)
		}
	}()

	if err := v.decode(e, path, p); err != nil {
		p.Notes = fmt.Sprintf("%s: %v", v.note, err)
	}
	return p
}

func (e *Extractor) decodeBinary(path string, p *state.Preview) error {
	sum, err := e.hasher.HashFile(path)
	if err != nil {
		return err
	}
	p.Hash = sum
	return nil
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
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

// collapseSpace replaces every whitespace run with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinBounded joins non-empty parts with newlines, stopping once the
// accumulated length exceeds max, then truncates to max.
func joinBounded(parts []string, max int) string {
	var kept []string
	total := 0
	for _, part := range parts {
		if part == "" {
			continue
		}
		kept = append(kept, part)
		total += utf8.RuneCountInString(part)
		if total > max {
			break
		}
	}
	return truncate(strings.Join(kept, "\n"), max)
}
