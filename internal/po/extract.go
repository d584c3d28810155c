package po

import (
	"strings"

	"podocs/internal"
	"podocs/internal/util"
)

const (
	keywordFollowLines = 5
	contextWindow      = 200
	snippetMaxLen      = 150
	confKeywordPO      = 0.85
	confBarePO         = 0.5
)

// Extract runs the extractor -> filter -> normalizer chain over one region
// and builds the regex pipeline's result. supplierHint may be empty; when it
// is, the region text is probed for suppliers with configured rules.
func Extract(cfg *Config, pages []internal.PageText, supplierHint string) internal.PipelineResult {
	supplier := supplierHint
	if supplier == "" {
		for _, pt := range pages {
			if supplier = cfg.DetectSupplier(pt.Text); supplier != "" {
				break
			}
		}
	}

	var surviving []string
	var keywords []string
	var evidence []internal.Evidence
	seenRaw := map[string]struct{}{}

	anyKeywords := false
	for _, pt := range pages {
		hits := FindKeywords(pt.Text)
		if len(hits) == 0 {
			continue
		}
		anyKeywords = true
		lines := strings.Split(pt.Text, "\n")
		for _, hit := range hits {
			keywords = append(keywords, hit.Keyword)
			window := keywordWindow(lines, hit.Line)
			for _, c := range cfg.Scan(pt.Page, window) {
				if ok, _ := cfg.Filter(c, supplier); !ok {
					continue
				}
				if _, dup := seenRaw[c.Raw]; dup {
					continue
				}
				seenRaw[c.Raw] = struct{}{}
				surviving = append(surviving, c.Raw)
				evidence = append(evidence, internal.Evidence{Page: pt.Page, Snippet: snippet(window)})
			}
		}
	}

	// No keyword anywhere in the region: fall back to a full scan, reported
	// with lower confidence.
	if !anyKeywords {
		for _, pt := range pages {
			for _, c := range cfg.Scan(pt.Page, pt.Text) {
				if ok, _ := cfg.Filter(c, supplier); !ok {
					continue
				}
				if _, dup := seenRaw[c.Raw]; dup {
					continue
				}
				seenRaw[c.Raw] = struct{}{}
				surviving = append(surviving, c.Raw)
				evidence = append(evidence, internal.Evidence{Page: pt.Page, Snippet: snippet(contextAround(pt.Text, c.Start))})
			}
		}
	}

	numbers := cfg.CanonicalSet(surviving)
	keywords = dedupeStrings(keywords)

	result := internal.PipelineResult{
		PONumbers:     numbers,
		Confidence:    0.0,
		Method:        internal.MethodRegex,
		FoundKeywords: keywords,
		Evidence:      evidence,
	}
	if supplier != "" {
		result.Supplier = util.StringPtr(supplier)
	}
	if len(numbers) > 0 {
		result.POPrimary = util.StringPtr(numbers[0])
		if len(keywords) > 0 {
			result.Confidence = confKeywordPO
		} else {
			result.Confidence = confBarePO
		}
	}
	if len(numbers) > 1 {
		result.POSecondary = util.StringPtr(numbers[1])
	}
	return result
}

// keywordWindow is the keyword's line plus the next few lines of original
// text. Tabular PDF layouts often put the PO one or more lines below its
// label, and line boundaries survive folding where character offsets do not.
func keywordWindow(lines []string, start int) string {
	end := start + keywordFollowLines + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func contextAround(text string, start int) string {
	rs := []rune(text)
	lo := start - contextWindow/2
	if lo < 0 {
		lo = 0
	}
	hi := start + contextWindow/2
	if hi > len(rs) {
		hi = len(rs)
	}
	return string(rs[lo:hi])
}

func snippet(window string) string {
	s := util.NormalizeSpaces(window)
	if rs := []rune(s); len(rs) > snippetMaxLen {
		s = string(rs[:snippetMaxLen])
	}
	return strings.TrimSpace(s)
}

func dedupeStrings(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
