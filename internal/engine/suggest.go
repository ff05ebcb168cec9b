package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/advisor"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// RunSuggestions asks the advisor about candidates that have no suggestion
// yet, in relpath order, up to the clamped limit. Calls are sequential and
// spaced by the configured pause. An unreachable advisor fails only that
// item, which stays without a suggestion for a later batch; a response that
// cannot be interpreted yields the zero-confidence fallback. Progress is
// saved after every item. Cancelling ctx stops the batch between items.
func (e *Engine) RunSuggestions(ctx context.Context, req *SuggestRequest) (*SuggestResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.registry()
	if err != nil {
		return nil, err
	}
	if reg.Root == "" {
		return nil, ErrNoRoot
	}
	if err := requireScannedRoot(reg); err != nil {
		return nil, err
	}

	limit := e.clampLimit(req.Limit)
	result := &SuggestResult{Outcomes: []SuggestOutcome{}}

	for _, relPath := range reg.SortedRelPaths() {
		if len(result.Outcomes) >= limit {
			break
		}
		item := reg.Items[relPath]
		if item.Status != state.StatusCandidate || item.Suggestion != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}

		outcome := e.suggestOne(ctx, reg, item)
		result.Outcomes = append(result.Outcomes, outcome)

		if err := e.save(); err != nil {
			return result, err
		}
	}

	result.Remaining = pendingSuggestions(reg)
	slog.Info("suggestion batch complete",
		"attempted", len(result.Outcomes),
		"failed", result.Failed(),
		"remaining", result.Remaining)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Engine) suggestOne(ctx context.Context, reg *state.Registry, item *state.FileItem) SuggestOutcome {
	outcome := SuggestOutcome{RelPath: item.RelPath}

	if item.Preview == nil {
		item.Preview = e.extract(reg, item.RelPath)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	raw, err := e.advisor.Suggest(ctx, advisor.Request{
		OriginalFilename: item.Name,
		Extension:        item.Extension,
		Kind:             item.Preview.Kind,
		ContentPreview:   item.Preview.Text,
		AllowedFolders:   e.opts.Taxonomy.Options(),
	})
	if err != nil {
		if !errors.Is(err, advisor.ErrProviderUnavailable) && ctx.Err() == nil {
			err = errors.Join(advisor.ErrProviderUnavailable, err)
		}
		slog.Warn("advisor failed", "relpath", item.RelPath, "error", err)
		outcome.Err = err
		return outcome
	}

	sug := e.policy.Normalize(raw, item.Name, item.Extension)
	e.proposals.Accept(item, sug)

	outcome.Suggestion = sug
	outcome.Approved = item.Approved
	slog.Debug("suggested",
		"relpath", item.RelPath,
		"folder", sug.SuggestedFolder,
		"name", sug.SuggestedName,
		"confidence", sug.Confidence)
	return outcome
}

// pendingSuggestions counts candidates still without a suggestion.
func pendingSuggestions(reg *state.Registry) int {
	n := 0
	for _, item := range reg.Items {
		if item.Status == state.StatusCandidate && item.Suggestion == nil {
			n++
		}
	}
	return n
}
