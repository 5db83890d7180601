package textmatch

import "strings"

func isTokenByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// ContainsToken reports whether needle appears in haystack as a whole token,
// bounded by separators or the string edges. Both sides are folded first so
// "Eiffel Tower" matches "eiffel_tower_portrait.mp4" but not "toweringly".
func ContainsToken(haystack, needle string) bool {
	hay := Fold(haystack)
	tokens := tokenSplitPattern.Split(Fold(needle), -1)
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if !containsSingleToken(hay, token) {
			return false
		}
	}
	return len(hay) > 0
}

func containsSingleToken(hay, token string) bool {
	for start := 0; ; {
		idx := strings.Index(hay[start:], token)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(token)
		leftOK := idx == 0 || !isTokenByte(hay[idx-1])
		rightOK := end == len(hay) || !isTokenByte(hay[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
		if start >= len(hay) {
			return false
		}
	}
}

// PhraseMatch reports whether the subject's tokens appear contiguously and
// in order within text, separators aside. "mountain gorilla" phrase-matches
// "baby_mountain_gorilla.mp4" but not "gorilla on the mountain".
func PhraseMatch(text, subject string) bool {
	textTokens := splitTokens(text)
	subjTokens := splitTokens(subject)
	if len(subjTokens) == 0 || len(textTokens) < len(subjTokens) {
		return false
	}
outer:
	for i := 0; i+len(subjTokens) <= len(textTokens); i++ {
		for j, token := range subjTokens {
			if textTokens[i+j] != token {
				continue outer
			}
		}
		return true
	}
	return false
}

func splitTokens(text string) []string {
	raw := tokenSplitPattern.Split(Fold(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// AllWordsMatch reports whether every major word of subject appears in text.
func AllWordsMatch(text, subject string) bool {
	words := MajorWords(subject)
	if len(words) == 0 {
		return false
	}
	folded := Fold(text)
	for _, word := range words {
		if !strings.Contains(folded, word) {
			return false
		}
	}
	return true
}

// AnyWordMatch reports whether at least one major word of subject appears in text.
func AnyWordMatch(text, subject string) bool {
	folded := Fold(text)
	for _, word := range MajorWords(subject) {
		if strings.Contains(folded, word) {
			return true
		}
	}
	return false
}

// CountWordMatches returns how many distinct major words of subject appear in
// text, along with the total number of major words.
func CountWordMatches(text, subject string) (matched, total int) {
	folded := Fold(text)
	words := MajorWords(subject)
	for _, word := range words {
		if strings.Contains(folded, word) {
			matched++
		}
	}
	return matched, len(words)
}
