package pdftext

import (
	"regexp"

	"podocs/internal"
)

// First-page pagination markers across the languages seen in supplier
// batches: Portuguese, Spanish, English, German, French. Each match starts a
// new document region.
var firstPagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Albar[aá]n\s+P[aá]g(?:ina)?\s*1\d{5,}`),
	regexp.MustCompile(`(?i)P[aá]g(?:ina)?\.?\s*[:\-]?\s*1\s+de\s+\d+`),
	regexp.MustCompile(`(?i)P[aá]g(?:ina)?\.?\s*[:\-]?\s*1(?:\s|$|[^0-9])`),
	regexp.MustCompile(`(?i)Page\s+1\s+of\s+\d+`),
	regexp.MustCompile(`(?i)Page\s*[:\-]?\s*1(?:\s|$|[^0-9])`),
	regexp.MustCompile(`(?i)Seite\s+1\s+von\s+\d+`),
	regexp.MustCompile(`(?i)Seite\s*[:\-]?\s*1(?:\s|$|[^0-9])`),
	regexp.MustCompile(`(?m)(?:^|\s)1\s*/\s*\d+(?:\s|$)`),
	regexp.MustCompile(`(?i)Folha\s+1\s+de\s+\d+`),
	regexp.MustCompile(`(?i)Feuille\s+1\s+(?:sur|/)\s*\d+`),
	regexp.MustCompile(`(?i)Hoja\s+1\s+de\s+\d+`),
	regexp.MustCompile(`(?i)GUIA\s+DE\s+REMESSA`),
}

// Continuation markers (page 2+) veto the first-page heuristics so a
// "Página 2 de 3" footer never opens a new region.
var continuationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Albar[aá]n\s+\d+\s*P[aá]g(?:ina)?\s*[2-9]\d*\s+desde`),
	regexp.MustCompile(`(?i)P[aá]g(?:ina)?\.?\s*[:\-]?\s*[2-9]\d*\s+de\s+\d+`),
	regexp.MustCompile(`(?i)Page\s+[2-9]\d*\s+of\s+\d+`),
}

func isContinuationPage(text string) bool {
	for _, re := range continuationPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func isFirstPage(text string) bool {
	if isContinuationPage(text) {
		return false
	}
	for _, re := range firstPagePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// DetectBoundaries splits a batch into document regions. Pages matching a
// first-page marker open a region; the first page always does. When no marker
// fires anywhere the whole batch is one region. Ranges index into the given
// slice (0-based), independent of the Page numbers the entries carry.
func DetectBoundaries(pages []internal.PageText) []internal.PageRange {
	if len(pages) == 0 {
		return nil
	}

	var firstPages []int
	for i, pt := range pages {
		if isFirstPage(pt.Text) {
			firstPages = append(firstPages, i)
		}
	}

	if len(firstPages) == 0 {
		return []internal.PageRange{{StartPage: 0, EndPage: len(pages) - 1}}
	}

	if firstPages[0] != 0 {
		firstPages = append([]int{0}, firstPages...)
	}

	ranges := make([]internal.PageRange, 0, len(firstPages))
	for i, start := range firstPages {
		end := len(pages) - 1
		if i+1 < len(firstPages) {
			end = firstPages[i+1] - 1
		}
		ranges = append(ranges, internal.PageRange{StartPage: start, EndPage: end})
	}
	return ranges
}
