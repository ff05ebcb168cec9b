package extract

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

var svgTitle = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// readPrefix reads at most maxBytes from path, dropping invalid UTF-8.
func readPrefix(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// textBytes is the read cap for a rune budget: four bytes per rune.
func (e *Extractor) textBytes() int64 {
	return int64(e.maxTextChars) * 4
}

func (e *Extractor) decodeText(path string, p *state.Preview) error {
	raw, err := readPrefix(path, e.textBytes())
	if err != nil {
		return err
	}
	p.Text = truncate(raw, e.maxTextChars)
	return nil
}

// decodeJSON summarizes structure rather than content. Unparsable documents
// fall back to truncated raw text.
func (e *Extractor) decodeJSON(path string, p *state.Preview) error {
	raw, err := readPrefix(path, jsonMaxReadBytes)
	if err != nil {
		return err
	}

	if !gjson.Valid(raw) {
		p.Text = truncate(raw, e.maxTextChars)
		return nil
	}
	p.Text = truncate(summarizeJSON(gjson.Parse(raw)), e.maxTextChars)
	return nil
}

func summarizeJSON(doc gjson.Result) string {
	switch {
	case doc.IsObject():
		var keys []string
		doc.ForEach(func(key, _ gjson.Result) bool {
			keys = append(keys, strconv.Quote(key.String()))
			return len(keys) < jsonMaxKeys
		})
		return "JSON object keys: [" + strings.Join(keys, ", ") + "]"
	case doc.IsArray():
		items := doc.Array()
		first := "empty"
		if len(items) > 0 {
			first = jsonTypeName(items[0])
		}
		return "JSON array length: " + strconv.Itoa(len(items)) + "; first item type: " + first
	default:
		return "JSON type: " + jsonTypeName(doc)
	}
}

func jsonTypeName(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	if v.IsArray() {
		return "array"
	}
	return "object"
}

func (e *Extractor) decodeSVG(path string, p *state.Preview) error {
	raw, err := readPrefix(path, svgMaxReadBytes)
	if err != nil {
		return err
	}
	if m := svgTitle.FindStringSubmatch(raw); m != nil {
		p.Text = truncate("SVG title: "+collapseSpace(m[1]), e.maxTextChars)
		return nil
	}
	p.Text = truncate(raw, min(svgRawPrefixChars, e.maxTextChars))
	return nil
}
