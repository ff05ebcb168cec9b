// Package advisor asks an external model where a file belongs.
//
// Asking and interpreting are separate steps. An Advisor returns the model's
// raw text; Policy.Normalize turns any text, however malformed, into a
// Suggestion that satisfies the taxonomy, extension and range rules. Transport
// failures are returned as errors wrapping ErrProviderUnavailable so callers
// can leave the item for a later retry.
package advisor

import (
	"context"
	"errors"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// ErrProviderUnavailable wraps network, timeout and HTTP status failures.
var ErrProviderUnavailable = errors.New("advisor unavailable")

// Request is everything the model sees about one file.
type Request struct {
	OriginalFilename string
	Extension        string
	Kind             state.Kind
	ContentPreview   string
	AllowedFolders   []string
}

// Advisor returns a free-form response expected to embed one JSON object.
type Advisor interface {
	Suggest(ctx context.Context, req Request) (string, error)
}
