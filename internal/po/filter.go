package po

import (
	"sort"
	"strings"
	"unicode"

	"podocs/internal/util"
)

type RejectReason string

const (
	RejectNegativeContext RejectReason = "negative_context"
	RejectSupplierRule    RejectReason = "supplier_rule"
	RejectArticleCode     RejectReason = "article_code"
)

// Filter runs the three contextual checks on a candidate. All three are
// evaluated so every failing reason is reported; any single failure rejects.
// supplier may be empty when no supplier hint is known for the region.
func (cfg *Config) Filter(c Candidate, supplier string) (bool, []RejectReason) {
	var reasons []RejectReason

	if cfg.inNegativeContext(c.Context) {
		reasons = append(reasons, RejectNegativeContext)
	}

	if supplier != "" {
		if rule, ok := cfg.SupplierRules[util.NormalizeSupplier(supplier)]; ok && len(c.Raw) < rule.MinDigits {
			reasons = append(reasons, RejectSupplierRule)
		}
	}

	// A letter sitting directly against the run marks an article/product
	// code like "R56481001". A space between letter and digits does not.
	if unicode.IsLetter(c.Prev) {
		reasons = append(reasons, RejectArticleCode)
	}

	return len(reasons) == 0, reasons
}

func (cfg *Config) inNegativeContext(context string) bool {
	prefix := strings.TrimRight(util.FoldText(context), " ")
	for _, re := range cfg.exclusionRes {
		if re.MatchString(prefix) {
			return true
		}
	}
	return false
}

// DetectSupplier looks for any supplier with a configured rule in the region
// text and returns its normalized name, or "" when none is mentioned.
func (cfg *Config) DetectSupplier(text string) string {
	folded := util.NormalizeSupplier(text)
	names := make([]string, 0, len(cfg.SupplierRules))
	for name := range cfg.SupplierRules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(folded, name) {
			return name
		}
	}
	return ""
}
