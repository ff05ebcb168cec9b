package advisor

import (
	"context"
	"sync"
)

// Fake is a deterministic Advisor for tests. Responses and errors are keyed
// by original filename; unknown files get Default.
type Fake struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []Request

	// Default is returned for files without a configured response.
	Default string
}

// NewFake creates a Fake whose default response is empty.
func NewFake() *Fake {
	return &Fake{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

// SetResponse sets the raw response for filename.
func (f *Fake) SetResponse(filename, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[filename] = raw
}

// SetError makes Suggest fail for filename. A nil err clears it.
func (f *Fake) SetError(filename string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, filename)
		return
	}
	f.errs[filename] = err
}

// Suggest records the request and returns the configured response.
func (f *Fake) Suggest(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.errs[req.OriginalFilename]; ok {
		return "", err
	}
	if raw, ok := f.responses[req.OriginalFilename]; ok {
		return raw, nil
	}
	return f.Default, nil
}

// Calls returns the requests seen so far.
func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.calls))
	copy(out, f.calls)
	return out
}
