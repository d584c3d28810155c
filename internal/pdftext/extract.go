package pdftext

import (
	"bytes"

	pdf "github.com/ledongthuc/pdf"

	"podocs/internal"
)

// PageTexts extracts per-page text from a PDF, 0-based pages. Pages whose
// content cannot be decoded yield empty text instead of failing the batch;
// downstream the empty region reconciles to NONE_FOUND and lands in review.
func PageTexts(content []byte) ([]internal.PageText, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	pages := make([]internal.PageText, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		text := ""
		p := r.Page(i)
		if !p.V.IsNull() {
			if extracted, err := p.GetPlainText(nil); err == nil {
				text = extracted
			}
		}
		pages = append(pages, internal.PageText{Page: i - 1, Text: text})
	}
	return pages, nil
}

// SlicePages returns the pages of one region, clamped to the available range.
func SlicePages(pages []internal.PageText, rng internal.PageRange) []internal.PageText {
	start := rng.StartPage
	end := rng.EndPage
	if start < 0 {
		start = 0
	}
	if end >= len(pages) {
		end = len(pages) - 1
	}
	if start > end {
		return nil
	}
	return pages[start : end+1]
}
