package advisor

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/naming"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// FallbackReason marks a suggestion built because the response could not be
// interpreted.
const FallbackReason = "could not interpret response"

// DefaultMaxReasonChars bounds Suggestion.Reason, in runes.
const DefaultMaxReasonChars = 300

// Policy holds the rules every suggestion is forced to satisfy.
type Policy struct {
	Taxonomy       naming.Taxonomy
	MaxNameChars   int
	MaxReasonChars int
}

// Fallback is the suggestion used when a response is unusable: keep the
// name, park the file in the fallback bucket with zero confidence.
func (p Policy) Fallback(filename, ext string) *state.Suggestion {
	return &state.Suggestion{
		SuggestedName:   naming.WithExtension(filename, ext, filename, p.MaxNameChars),
		SuggestedFolder: p.Taxonomy.Fallback,
		Confidence:      0,
		Reason:          FallbackReason,
	}
}

// Normalize parses the outermost brace-delimited substring of raw and
// clamps every field. It never fails.
func (p Policy) Normalize(raw, filename, ext string) *state.Suggestion {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return p.Fallback(filename, ext)
	}

	body := raw[start : end+1]
	if !gjson.Valid(body) {
		return p.Fallback(filename, ext)
	}
	obj := gjson.Parse(body)
	if !obj.IsObject() {
		return p.Fallback(filename, ext)
	}

	name := filename
	if v := field(obj, "suggestedName", "suggested_name"); v.Exists() && v.Type != gjson.Null {
		name = v.String()
	}

	return &state.Suggestion{
		SuggestedName:   p.normalizeName(name, filename, ext),
		SuggestedFolder: p.Taxonomy.Resolve(field(obj, "suggestedFolder", "suggested_folder").String()),
		Confidence:      confidence(field(obj, "confidence")),
		Reason:          p.reason(field(obj, "reason")),
	}
}

// normalizeName sanitizes name and forces ext onto its stem when missing.
func (p Policy) normalizeName(name, filename, ext string) string {
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	return naming.WithExtension(name, ext, filename, p.MaxNameChars)
}

func (p Policy) reason(v gjson.Result) string {
	max := p.MaxReasonChars
	if max <= 0 {
		max = DefaultMaxReasonChars
	}
	r := strings.TrimSpace(v.String())
	if utf8.RuneCountInString(r) > max {
		r = string([]rune(r)[:max])
	}
	return r
}

// field returns the first present key.
func field(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// confidence accepts numbers and numeric strings. Anything else, including
// NaN, is zero. The result is clamped to [0, 1].
func confidence(v gjson.Result) float64 {
	var c float64
	switch v.Type {
	case gjson.Number:
		c = v.Float()
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		c = f
	default:
		return 0
	}

	if math.IsNaN(c) {
		return 0
	}
	return math.Max(0, math.Min(1, c))
}
