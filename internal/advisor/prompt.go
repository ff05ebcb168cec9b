package advisor

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// SystemPrompt frames every request.
const SystemPrompt = "You are a careful file organization assistant. " +
	"You must return ONLY valid JSON (no markdown, no commentary). " +
	"You propose a better filename and a destination folder from an allowed list. " +
	"If uncertain, set confidence low and choose the fallback folder."

var rules = []string{
	"Destination folder MUST be one of allowed_folders exactly.",
	"Suggested filename must keep the same extension.",
	"Use clear names with dates if present (YYYY-MM-DD), otherwise omit date.",
	"Avoid overly long names; <= 80 characters before extension is ideal.",
	"If you can't infer, pick folder %s and keep filename similar.",
	"Return JSON with keys: suggestedName, suggestedFolder, confidence (0..1), reason.",
}

type task struct {
	OriginalFilename string   `json:"original_filename"`
	Extension        string   `json:"extension"`
	Kind             string   `json:"kind"`
	ContentPreview   string   `json:"content_preview"`
	AllowedFolders   []string `json:"allowed_folders"`
	Rules            []string `json:"rules"`
}

// BuildPrompt renders the user message: a JSON task carrying the file facts,
// the allowed folders and the answer rules. The preview is cut to
// maxPreviewChars runes.
func BuildPrompt(req Request, fallback string, maxPreviewChars int) (string, error) {
	preview := req.ContentPreview
	if maxPreviewChars > 0 && utf8.RuneCountInString(preview) > maxPreviewChars {
		preview = string([]rune(preview)[:maxPreviewChars])
	}

	taskRules := make([]string, len(rules))
	for i, r := range rules {
		if i == 4 {
			r = fmt.Sprintf(r, fallback)
		}
		taskRules[i] = r
	}

	folders := req.AllowedFolders
	if folders == nil {
		folders = []string{}
	}

	data, err := json.Marshal(task{
		OriginalFilename: req.OriginalFilename,
		Extension:        req.Extension,
		Kind:             string(req.Kind),
		ContentPreview:   preview,
		AllowedFolders:   folders,
		Rules:            taskRules,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode task: %w", err)
	}
	return "TASK:\n" + string(data), nil
}
