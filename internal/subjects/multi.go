package subjects

import (
	"context"
	"regexp"
	"strings"

	"socialstorm/internal/textmatch"
)

var multiJoinPattern = regexp.MustCompile(`(?i)\b(?:and|with|versus|vs\.?|alongside)\b|&|\+`)

// MultiSubjectExtractor detects lines naming several concrete entities
// and folds them into one literal phrase, so "a cat and a dog" searches
// as "cat and dog together" instead of two separate queries.
type MultiSubjectExtractor struct{}

func NewMultiSubjectExtractor() *MultiSubjectExtractor { return &MultiSubjectExtractor{} }

func (e *MultiSubjectExtractor) Name() string { return "multi-subject" }

func (e *MultiSubjectExtractor) Available() bool { return true }

func (e *MultiSubjectExtractor) Extract(_ context.Context, line Line) ([]string, error) {
	entities := splitEntities(line.Text)
	if len(entities) < 2 {
		return nil, nil
	}
	combined := strings.Join(entities, " and ") + " together"
	if phrase, ok := EnforcePhrase(combined); ok {
		return []string{phrase}, nil
	}
	return nil, nil
}

// splitEntities splits the line on joining words and keeps the parts
// that still carry a concrete noun. Lines with long clause-like parts
// are narrative, not entity lists, and yield nothing.
func splitEntities(text string) []string {
	parts := multiJoinPattern.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}
	entities := make([]string, 0, len(parts))
	for _, part := range parts {
		tokens := textmatch.Tokenize(part)
		if len(tokens) == 0 || len(tokens) > 3 {
			return nil
		}
		concrete := make([]string, 0, len(tokens))
		for _, token := range tokens {
			if IsForbidden(token) {
				continue
			}
			concrete = append(concrete, token)
		}
		if len(concrete) == 0 {
			return nil
		}
		entities = append(entities, strings.Join(concrete, " "))
	}
	return entities
}
