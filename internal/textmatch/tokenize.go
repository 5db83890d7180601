package textmatch

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "that": {},
	"this": {}, "are": {}, "was": {}, "were": {}, "into": {}, "over": {},
	"under": {}, "its": {}, "his": {}, "her": {}, "their": {}, "our": {},
	"you": {}, "your": {}, "has": {}, "have": {}, "had": {}, "not": {},
	"but": {}, "all": {}, "any": {}, "can": {}, "will": {}, "out": {},
	"about": {}, "very": {}, "more": {}, "most": {}, "some": {},
}

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lowercases text and strips diacritical marks so that accented
// provider metadata and plain search subjects compare equal.
func Fold(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return ""
	}
	folded, _, err := transform.String(diacriticStripper, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

// Tokenize splits text into lowercase tokens, filtering stopwords and short tokens.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(Fold(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 3 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// MajorWords returns the significant words of a subject: stopwords removed,
// tokens shorter than 3 characters dropped, duplicates collapsed in order.
func MajorWords(subject string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range Tokenize(subject) {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// IsStopword reports whether the folded form of word is a stopword.
func IsStopword(word string) bool {
	_, ok := stopwords[Fold(word)]
	return ok
}

// Stem normalizes a locator (local path, URL, or storage key) into a stable
// lowercase identifier: the final path segment without its extension or any
// query string. Used for de-duplication across providers.
func Stem(locator string) string {
	trimmed := strings.TrimSpace(locator)
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	base := path.Base(trimmed)
	base = strings.TrimSuffix(base, path.Ext(base))
	return Fold(base)
}
