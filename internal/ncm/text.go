package ncm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// spaceRun covers ASCII whitespace plus Unicode separators (NBSP and friends),
	// which show up in cells pasted from PDFs.
	spaceRun = regexp.MustCompile(`[\s\x{0B}\x{85}\p{Z}]+`)

	nonAlnumRun = regexp.MustCompile(`[^0-9A-Za-zÀ-ÿ]+`)
)

// Placeholder tokens spreadsheet exports use for "no value".
var (
	visibleNullTokens = map[string]struct{}{
		"nan": {}, "none": {}, "nat": {}, "<na>": {}, "<nan>": {}, "<null>": {},
	}
	compareNullTokens = map[string]struct{}{
		"nan": {}, "none": {}, "nat": {},
	}
)

// IsBlank is the single blank predicate used by the engine: empty or
// whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NormalizeVisible prepares a cell for display: placeholder tokens become
// "", whitespace runs collapse to one space and the result is trimmed.
func NormalizeVisible(s string) string {
	if _, ok := visibleNullTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return ""
	}
	return collapseSpace(s)
}

// NormalizeForCompare produces the comparison key used for header matching,
// equality and substring search: accents stripped, punctuation runs turned
// into single spaces, lowercased.
func NormalizeForCompare(s string) string {
	return normalizeForCompare(s, true)
}

func normalizeForCompare(s string, removeAccents bool) string {
	if isCompareNull(s) {
		return ""
	}
	t := collapseSpace(s)
	if removeAccents {
		t = StripAccents(t)
	}
	t = nonAlnumRun.ReplaceAllString(t, " ")
	t = strings.ToLower(collapseSpace(t))

	// "N/A." style inputs can reduce to a placeholder only after cleanup.
	if isCompareNull(t) {
		return ""
	}
	return t
}

func isCompareNull(s string) bool {
	_, ok := compareNullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// StripAccents removes combining marks after compatibility decomposition,
// so "Ç" becomes "C" and "ª" becomes "a".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
