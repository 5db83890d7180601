package subjects

import (
	"context"
	"regexp"
	"strings"

	"socialstorm/internal/services/llm"
)

var interrogativeLead = regexp.MustCompile(`(?i)^(?:why|how|what|when|where|who|which|can|could|do|does|did|is|are|was|were|will|would|should)\b`)

var questionIdioms = []string{
	"ever wonder",
	"ever wondered",
	"did you know",
	"have you ever",
	"guess what",
}

const questionSystemPrompt = `You convert a spoken question into one concrete visual to film.
Answer with a single 5-10 word noun phrase describing what the camera
shows, e.g. "Why do cats purr?" -> "cat closeup purring on a lap".
If the question has no obvious single visual, answer with the word NONE.
Return only the phrase.`

// QuestionExtractor converts question-like lines into a single literal
// visual. It gates on lexical shape first so non-questions never cost a
// model call, and returns nothing rather than guessing when the model
// is unsure.
type QuestionExtractor struct {
	client *llm.Client
}

func NewQuestionExtractor(client *llm.Client) *QuestionExtractor {
	return &QuestionExtractor{client: client}
}

func (e *QuestionExtractor) Name() string { return "question-to-visual" }

func (e *QuestionExtractor) Available() bool { return e.client != nil }

func (e *QuestionExtractor) Extract(ctx context.Context, line Line) ([]string, error) {
	if !IsQuestionLike(line.Text) {
		return nil, nil
	}
	raw, err := e.client.Complete(ctx, questionSystemPrompt, strings.TrimSpace(line.Text), 60, 0.3)
	if err != nil || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	answer := strings.TrimSpace(raw)
	if strings.EqualFold(answer, "none") {
		return nil, nil
	}
	if phrase, ok := EnforcePhrase(answer); ok {
		return []string{phrase}, nil
	}
	return nil, nil
}

// IsQuestionLike reports whether the line reads as a question: trailing
// question mark, interrogative lead word, or a known question idiom.
func IsQuestionLike(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	if interrogativeLead.MatchString(trimmed) {
		return true
	}
	lowered := strings.ToLower(trimmed)
	for _, idiom := range questionIdioms {
		if strings.Contains(lowered, idiom) {
			return true
		}
	}
	return false
}
