package state

import (
	"sort"
	"strings"
	"time"
)

// Status is the review state of a FileItem.
type Status string

const (
	// StatusCandidate items are eligible for suggestion and apply.
	StatusCandidate Status = "candidate"

	// StatusNever items are excluded until explicitly re-tagged.
	StatusNever Status = "never"

	// StatusDone items were relocated successfully. Terminal.
	StatusDone Status = "done"
)

// Mode is how apply relocates files.
type Mode string

const (
	// ModeMove renames the source to the destination.
	ModeMove Mode = "move"

	// ModeCopy copies the source, leaving it in place.
	ModeCopy Mode = "copy"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeMove || m == ModeCopy
}

// Kind is the content kind a Preview was extracted as.
type Kind string

const (
	KindBinary   Kind = "binary"
	KindArchive  Kind = "archive"
	KindDesign   Kind = "design"
	KindImage    Kind = "image"
	KindText     Kind = "text"
	KindLog      Kind = "log"
	KindCSV      Kind = "csv"
	KindJSON     Kind = "json"
	KindDocx     Kind = "docx"
	KindXlsx     Kind = "xlsx"
	KindPDF      Kind = "pdf"
	KindSVG      Kind = "svg"
	KindMetadata Kind = "metadata"
)

// Registry is the full persisted state.
type Registry struct {
	// Root is the download area being organized
	Root string `json:"root"`

	// ScannedRoot is the root the items were discovered under
	ScannedRoot string `json:"scannedRoot,omitempty"`

	// Mode is the apply mode ("move" or "copy")
	Mode Mode `json:"mode"`

	// Items maps relative path to item
	Items map[string]*FileItem `json:"items"`

	// AllowedFolders is the destination taxonomy
	AllowedFolders []string `json:"allowedFolders"`

	// FallbackFolder receives anything outside the taxonomy
	FallbackFolder string `json:"fallbackFolder"`
}

// FileItem is one discovered file.
type FileItem struct {
	RelPath      string    `json:"relpath"`
	Name         string    `json:"name"`
	Extension    string    `json:"extension"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modifiedTime"`

	Status Status `json:"status"`

	// Approved only matters while Status is candidate.
	Approved bool `json:"approved"`

	Preview    *Preview    `json:"preview"`
	Suggestion *Suggestion `json:"suggestion"`

	EditedName   string `json:"editedName"`
	EditedFolder string `json:"editedFolder"`

	// DoneDestination is set after a successful apply.
	DoneDestination string `json:"doneDestination,omitempty"`
}

// Preview is the bounded content extracted from a file.
type Preview struct {
	Kind         Kind      `json:"kind"`
	Text         string    `json:"text"`
	Notes        string    `json:"notes"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modifiedTime"`

	// Hash is a capped-read SHA-256 (binary kind only)
	Hash string `json:"hash,omitempty"`

	// Width and Height are pixel dimensions (image kind only)
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// Suggestion is a normalized advisor proposal.
type Suggestion struct {
	SuggestedName   string  `json:"suggestedName"`
	SuggestedFolder string  `json:"suggestedFolder"`
	Confidence      float64 `json:"confidence"`
	Reason          string  `json:"reason"`
}

// Counts summarizes items by status.
type Counts struct {
	Total     int `json:"total"`
	Candidate int `json:"candidate"`
	Never     int `json:"never"`
	Done      int `json:"done"`
}

// NewRegistry creates an empty Registry.
func NewRegistry(mode Mode, allowed []string, fallback string) *Registry {
	folders := make([]string, len(allowed))
	copy(folders, allowed)
	return &Registry{
		Mode:           mode,
		Items:          make(map[string]*FileItem),
		AllowedFolders: folders,
		FallbackFolder: fallback,
	}
}

// NewFileItem creates a fresh candidate with no preview or suggestion.
func NewFileItem(relPath, name, ext string, size int64, modified time.Time) *FileItem {
	return &FileItem{
		RelPath:      relPath,
		Name:         name,
		Extension:    ext,
		Size:         size,
		ModifiedTime: modified,
		Status:       StatusCandidate,
	}
}

// Counts returns the number of items per status. Unknown statuses count as
// candidates.
func (r *Registry) Counts() Counts {
	c := Counts{Total: len(r.Items)}
	for _, item := range r.Items {
		switch item.Status {
		case StatusNever:
			c.Never++
		case StatusDone:
			c.Done++
		default:
			c.Candidate++
		}
	}
	return c
}

// SortedRelPaths returns item keys ordered case-insensitively.
func (r *Registry) SortedRelPaths() []string {
	keys := make([]string, 0, len(r.Items))
	for k := range r.Items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if li != lj {
			return li < lj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// RescanRequired reports whether the items belong to a root other than the
// current one. Registries saved before ScannedRoot existed never require it.
func (r *Registry) RescanRequired() bool {
	return len(r.Items) > 0 && r.ScannedRoot != "" && r.ScannedRoot != r.Root
}

// IsEligibleForApply reports whether apply should attempt the item.
func (i *FileItem) IsEligibleForApply() bool {
	return i.Status == StatusCandidate && i.Approved
}

// IsReviewable reports whether proposal edits apply to the item.
func (i *FileItem) IsReviewable() bool {
	return i.Status == StatusCandidate && i.Suggestion != nil
}

// normalize repairs zero values left by older or hand-edited state files.
func (r *Registry) normalize() {
	if r.Items == nil {
		r.Items = make(map[string]*FileItem)
	}
	for key, item := range r.Items {
		if item == nil {
			delete(r.Items, key)
			continue
		}
		item.RelPath = key
		if item.Status == "" {
			item.Status = StatusCandidate
		}
	}
}

// Clone returns a copy of the item that shares no pointers with it.
func (i *FileItem) Clone() *FileItem {
	c := *i
	if i.Preview != nil {
		p := *i.Preview
		c.Preview = &p
	}
	if i.Suggestion != nil {
		s := *i.Suggestion
		c.Suggestion = &s
	}
	return &c
}
