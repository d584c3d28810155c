package po

import "strings"

// Normalize strips every non-digit character. Returns "" when nothing
// remains.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonical returns the comparison form of a PO value. With leading-zero
// equivalence enabled, the zero-stripped form becomes canonical when it still
// lands inside a matching family's lead/length range; otherwise the digits
// are kept as-is. Canonical is idempotent.
func (cfg *Config) Canonical(raw string) string {
	digits := Normalize(raw)
	if digits == "" || !cfg.AllowLeadingZeroEquiv {
		return digits
	}
	stripped := strings.TrimLeft(digits, "0")
	if stripped == "" || stripped == digits {
		return digits
	}
	if cfg.matchFamily(stripped) != "" {
		return stripped
	}
	return digits
}

// CanonicalValid canonicalizes and requires the result to match a recognized
// family. Used to validate override values.
func (cfg *Config) CanonicalValid(raw string) (string, bool) {
	c := cfg.Canonical(raw)
	if c == "" || cfg.matchFamily(c) == "" {
		return "", false
	}
	return c, true
}

// CanonicalSet canonicalizes values and de-duplicates on canonical form,
// preserving first-seen order. Empty values are dropped.
func (cfg *Config) CanonicalSet(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		c := cfg.Canonical(v)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Equivalent reports whether two PO values compare equal in canonical form.
func (cfg *Config) Equivalent(a, b string) bool {
	return cfg.Canonical(a) != "" && cfg.Canonical(a) == cfg.Canonical(b)
}
