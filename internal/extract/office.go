package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

const docxBody = "word/document.xml"

// decodeDocx concatenates non-empty paragraph text from the main document
// part. Paragraph runs are streamed so large documents stop early.
func (e *Extractor) decodeDocx(path string, p *state.Preview) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = zr.Close()
	}()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return fmt.Errorf("missing %s", docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = rc.Close()
	}()

	paragraphs, err := docxParagraphs(rc, docxMaxParagraphs, e.maxTextChars)
	if err != nil {
		return err
	}
	p.Text = joinBounded(paragraphs, e.maxTextChars)
	return nil
}

// docxParagraphs returns the trimmed text of up to maxParagraphs <w:p>
// elements, stopping early once the collected text exceeds maxChars.
func docxParagraphs(r io.Reader, maxParagraphs, maxChars int) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		out     []string
		current strings.Builder
		seen    int
		total   int
		inText  bool
		depth   int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth > 0 {
					continue
				}
				seen++
				if text := strings.TrimSpace(current.String()); text != "" {
					out = append(out, text)
					total += len(text)
				}
				if seen >= maxParagraphs || total > maxChars {
					return out, nil
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
}

// decodeXlsx lists sheet names and the header row of the first sheet.
func (e *Extractor) decodeXlsx(path string, p *state.Preview) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) > xlsxMaxSheets {
		sheets = sheets[:xlsxMaxSheets]
	}
	lines := []string{"Sheets: " + quoteList(sheets)}

	if len(sheets) > 0 {
		header, err := firstRow(f, sheets[0])
		if err != nil {
			return err
		}
		if len(header) > 0 {
			lines = append(lines, "Header row: "+quoteList(header))
		}
	}

	p.Text = truncate(strings.Join(lines, "\n"), e.maxTextChars)
	return nil
}

// firstRow returns the non-empty cells of the sheet's first row, each cut to
// xlsxMaxHeaderCell characters, at most xlsxMaxHeaderLen of them.
func firstRow(f *excelize.File, sheet string) ([]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		return nil, rows.Error()
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var header []string
	for _, cell := range cols {
		if cell == "" {
			continue
		}
		header = append(header, truncate(cell, xlsxMaxHeaderCell))
		if len(header) == xlsxMaxHeaderLen {
			break
		}
	}
	return header, nil
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
