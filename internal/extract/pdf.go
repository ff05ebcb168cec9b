package extract

import (
	"github.com/ledongthuc/pdf"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// decodePDF collects whitespace-normalized text from the first pages.
func (e *Extractor) decodePDF(path string, p *state.Preview) error {
	f, r, err := pdf.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	var pages []string
	total := 0
	for i := 1; i <= r.NumPage() && i <= pdfMaxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return err
		}
		text = collapseSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, text)
		total += len(text)
		if total > e.maxTextChars {
			break
		}
	}

	p.Text = joinBounded(pages, e.maxTextChars)
	return nil
}
