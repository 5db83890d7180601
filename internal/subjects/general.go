package subjects

import (
	"context"
	"log/slog"
	"strings"

	"socialstorm/internal/logging"
	"socialstorm/internal/services/llm"
)

const generalCount = 4

const generalSystemPrompt = `You pick concrete, filmable stock-footage search phrases.
Given a script line, return a JSON array of exactly 4 short noun phrases,
ordered from most specific to most general. Each phrase must describe
something a camera could literally film. Never return vague words like
"person", "thing", "scene", "background". Return only the JSON array.`

// GeneralExtractor asks the language model for a ranked list of search
// phrases. It always yields exactly four non-empty phrases, padding
// with the main topic when the model comes up short, and never returns
// an error from Extract.
type GeneralExtractor struct {
	client *llm.Client
	logger *slog.Logger
}

// NewGeneralExtractor builds the ranked extractor. A nil client marks
// the strategy unavailable.
func NewGeneralExtractor(client *llm.Client, logger *slog.Logger) *GeneralExtractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GeneralExtractor{client: client, logger: logging.NewComponentLogger(logger, "subjects")}
}

func (e *GeneralExtractor) Name() string { return "general-ranked" }

func (e *GeneralExtractor) Available() bool { return e.client != nil }

func (e *GeneralExtractor) Extract(ctx context.Context, line Line) ([]string, error) {
	phrases := e.ranked(ctx, line)
	fallback := strings.TrimSpace(line.MainTopic)
	if fallback == "" || IsGeneric(fallback) {
		fallback = strings.TrimSpace(line.Text)
	}
	for len(phrases) < generalCount && fallback != "" {
		phrases = append(phrases, fallback)
	}
	if len(phrases) > generalCount {
		phrases = phrases[:generalCount]
	}
	return phrases, nil
}

func (e *GeneralExtractor) ranked(ctx context.Context, line Line) []string {
	if e.client == nil {
		return nil
	}
	userPrompt := "Script line: " + strings.TrimSpace(line.Text)
	if topic := strings.TrimSpace(line.MainTopic); topic != "" {
		userPrompt += "\nVideo topic: " + topic
	}
	raw, err := e.client.CompleteJSON(ctx, generalSystemPrompt, userPrompt)
	if err != nil {
		e.logger.Warn("ranked extraction failed", logging.Error(err))
		return nil
	}
	var list []string
	if err := llm.DecodeLLMJSON(raw, &list); err != nil {
		e.logger.Warn("ranked extraction returned unparseable payload", logging.Error(err))
		return nil
	}
	valid := make([]string, 0, generalCount)
	for _, phrase := range list {
		if phrase, ok := EnforcePhrase(phrase); ok {
			valid = append(valid, phrase)
		}
		if len(valid) == generalCount {
			break
		}
	}
	return valid
}
