package po

import (
	"regexp"
	"strings"

	"podocs/internal/util"
)

// PatternFamily is one accepted PO shape: a leading digit plus an inclusive
// digit-length range.
type PatternFamily struct {
	Name   string
	Lead   byte
	MinLen int
	MaxLen int
}

// DefaultFamilies returns the family table in precedence order: the exact
// 8-digit families come first so an 8-digit run starting with 2 is tagged F2,
// never F2-short.
func DefaultFamilies() []PatternFamily {
	return []PatternFamily{
		{Name: "F5", Lead: '5', MinLen: 8, MaxLen: 8},
		{Name: "F8", Lead: '8', MinLen: 8, MaxLen: 8},
		{Name: "F2", Lead: '2', MinLen: 8, MaxLen: 8},
		{Name: "F0", Lead: '0', MinLen: 8, MaxLen: 8},
		{Name: "F4-short", Lead: '4', MinLen: 4, MaxLen: 8},
		{Name: "F2-short", Lead: '2', MinLen: 5, MaxLen: 6},
	}
}

// SupplierRule constrains candidates when the region's supplier is known.
type SupplierRule struct {
	MinDigits int
}

// Candidate is an ephemeral pattern hit: the raw digit run, the family that
// claimed it, and enough surrounding text to run the contextual filter.
type Candidate struct {
	Raw     string
	Family  string
	Page    int
	Start   int
	Context string
	Prev    rune
}

// Config carries the fixed domain tables. It is passed explicitly into the
// extractor and filter so tests can substitute alternate tables.
type Config struct {
	Families              []PatternFamily
	SupplierRules         map[string]SupplierRule
	AllowLeadingZeroEquiv bool
	Lookback              int

	exclusionLabels []string
	exclusionRes    []*regexp.Regexp
}

// NewConfig compiles the exclusion-label table. Labels are matched
// case- and accent-insensitively, anchored at the end of the context window:
// punctuation, colons and whitespace may intervene between label and run, an
// intervening digit run breaks the match.
func NewConfig(families []PatternFamily, exclusionLabels []string, rules map[string]SupplierRule, allowLeadingZero bool) *Config {
	cfg := &Config{
		Families:              families,
		SupplierRules:         rules,
		AllowLeadingZeroEquiv: allowLeadingZero,
		Lookback:              40,
		exclusionLabels:       exclusionLabels,
	}
	for _, label := range exclusionLabels {
		pattern := regexp.QuoteMeta(util.FoldText(label))
		// Pagination labels also appear abbreviated, "Albarán Pág." for
		// "Albarán Página".
		pattern = strings.Replace(pattern, "pagina", `pag(?:ina)?`, 1)
		cfg.exclusionRes = append(cfg.exclusionRes, regexp.MustCompile(pattern+`[\s:.#ºª°-]*$`))
	}
	return cfg
}

// DefaultExclusionLabels are the account/tax/bank identifier labels whose
// presence right before a digit run disqualifies it as a PO.
func DefaultExclusionLabels() []string {
	return []string{
		"Cliente",
		"Client",
		"Customer",
		"Kunden",
		"Kundennummer",
		"GLN",
		"Nº GLN",
		"NIF",
		"IBAN",
		"SWIFT",
		"Cuenta",
		"Código bancário",
		"HRB",
		"VAT number",
		"Albarán Página",
	}
}

// DefaultSupplierRules maps normalized supplier names to minimum digit
// lengths. TAYG documents never carry POs shorter than 8 digits.
func DefaultSupplierRules() map[string]SupplierRule {
	return map[string]SupplierRule{
		"TAYG": {MinDigits: 8},
	}
}

func DefaultConfig() *Config {
	return NewConfig(DefaultFamilies(), DefaultExclusionLabels(), DefaultSupplierRules(), true)
}

// Scan yields every maximal digit run in text that matches a PatternFamily,
// in document order, each with its preceding context window and the rune
// directly before the run. Runs are scanned by hand rather than by regexp:
// RE2 has no lookbehind, and word-boundary anchors would clip leading zeros
// when digits sit directly against letters.
func (cfg *Config) Scan(page int, text string) []Candidate {
	rs := []rune(text)
	var out []Candidate
	i := 0
	for i < len(rs) {
		if !isDigit(rs[i]) {
			i++
			continue
		}
		j := i
		for j < len(rs) && isDigit(rs[j]) {
			j++
		}
		run := string(rs[i:j])
		if fam := cfg.matchFamily(run); fam != "" {
			start := i - cfg.Lookback
			if start < 0 {
				start = 0
			}
			var prev rune
			if i > 0 {
				prev = rs[i-1]
			}
			out = append(out, Candidate{
				Raw:     run,
				Family:  fam,
				Page:    page,
				Start:   i,
				Context: string(rs[start:i]),
				Prev:    prev,
			})
		}
		i = j
	}
	return out
}

// matchFamily returns the name of the first (most specific) family the run
// satisfies, or "" when no family claims it.
func (cfg *Config) matchFamily(run string) string {
	if run == "" {
		return ""
	}
	n := len(run)
	for _, f := range cfg.Families {
		if run[0] == f.Lead && n >= f.MinLen && n <= f.MaxLen {
			return f.Name
		}
	}
	return ""
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
