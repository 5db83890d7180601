package subjects

import (
	"strings"

	"socialstorm/internal/textmatch"
)

// forbiddenTerms are category nouns too vague to search stock footage
// for. A phrase made of nothing but these (and stopwords) signals a
// failed extraction and must never reach a provider.
var forbiddenTerms = map[string]struct{}{
	"person":     {},
	"people":     {},
	"face":       {},
	"faces":      {},
	"thing":      {},
	"things":     {},
	"stuff":      {},
	"scene":      {},
	"scenes":     {},
	"sign":       {},
	"signs":      {},
	"logo":       {},
	"logos":      {},
	"text":       {},
	"words":      {},
	"background": {},
	"image":      {},
	"images":     {},
	"picture":    {},
	"pictures":   {},
	"photo":      {},
	"photos":     {},
	"video":      {},
	"videos":     {},
	"clip":       {},
	"clips":      {},
	"footage":    {},
	"visual":     {},
	"visuals":    {},
	"something":  {},
	"someone":    {},
	"object":     {},
	"objects":    {},
	"item":       {},
	"items":      {},
}

const padSuffix = "cinematic close-up"

const (
	minPhraseWords = 3
	maxPhraseWords = 10
)

// IsForbidden reports whether a single word is on the generic blocklist.
func IsForbidden(word string) bool {
	_, ok := forbiddenTerms[textmatch.Fold(strings.TrimSpace(word))]
	return ok
}

// IsGeneric reports whether the phrase as a whole is unusable: empty,
// or carrying no token beyond blocklisted terms and stopwords.
func IsGeneric(phrase string) bool {
	tokens := textmatch.Tokenize(phrase)
	if len(tokens) == 0 {
		return true
	}
	for _, token := range tokens {
		if _, ok := forbiddenTerms[token]; !ok {
			return false
		}
	}
	return true
}

// ContainsForbidden reports whether any token of the phrase is on the
// generic blocklist.
func ContainsForbidden(phrase string) bool {
	for _, token := range textmatch.Tokenize(phrase) {
		if _, ok := forbiddenTerms[token]; ok {
			return true
		}
	}
	return false
}

// EnforcePhrase normalizes an extractor output to the 3..10 word band.
// Overlong phrases are truncated; short but concrete ones are padded
// with a disambiguating suffix. Returns false when the phrase is empty,
// generic, question-like, or otherwise unusable.
func EnforcePhrase(phrase string) (string, bool) {
	phrase = strings.TrimSpace(phrase)
	phrase = strings.Trim(phrase, `"'`)
	if phrase == "" || strings.Contains(phrase, "?") {
		return "", false
	}
	if IsGeneric(phrase) {
		return "", false
	}
	words := strings.Fields(phrase)
	if len(words) > maxPhraseWords {
		words = words[:maxPhraseWords]
	}
	if len(words) < minPhraseWords {
		words = append(words, strings.Fields(padSuffix)...)
	}
	if len(words) < minPhraseWords {
		return "", false
	}
	return strings.Join(words, " "), true
}
