package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces     = regexp.MustCompile(`\s+`)
	accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// StripAccents removes diacritics so "Requisição" and "Requisicao" compare equal.
func StripAccents(input string) string {
	out, _, err := transform.String(accentFolder, input)
	if err != nil {
		return input
	}
	return out
}

// FoldText normalizes free text for keyword search: lowercase, accent-free,
// collapsed whitespace.
func FoldText(input string) string {
	s := strings.ToLower(StripAccents(input))
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeSupplier canonicalizes a supplier name for rule lookup.
func NormalizeSupplier(input string) string {
	s := strings.ToUpper(StripAccents(input))
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
