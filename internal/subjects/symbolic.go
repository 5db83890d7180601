package subjects

import (
	"context"
	"strings"

	"socialstorm/internal/services/llm"
	"socialstorm/internal/textmatch"
)

const literalizeSystemPrompt = `You convert abstract or metaphorical script lines into one concrete
visual that a stock-footage camera could film. Answer with a single
3-10 word noun phrase. Never answer with an abstract concept, a
metaphor, or vague words like "person" or "scene". Return only the phrase.`

const literalizeRetryPrompt = `Your previous answer was too abstract. Be strictly literal: name a
physical object, animal, place, or action a camera can point at.
Answer with a single 3-10 word noun phrase only.`

// literalRules maps known abstract topics to canonical visuals. It is
// the deterministic floor under the model-based literalizer.
var literalRules = map[string]string{
	"victory":    "athlete raising a gold trophy",
	"success":    "businessman celebrating at office desk",
	"failure":    "crumpled paper beside an empty desk",
	"freedom":    "bird flying over open canyon",
	"power":      "lightning striking over city skyline",
	"wealth":     "gold bars stacked on a table",
	"royalty":    "golden crown on red velvet cushion",
	"love":       "couple holding hands at sunset",
	"time":       "clock hands spinning fast",
	"growth":     "time lapse plant sprouting from soil",
	"danger":     "warning flare burning on dark road",
	"speed":      "race car blurring past the camera",
	"knowledge":  "open books stacked in a library",
	"history":    "ancient ruins under a dramatic sky",
	"future":     "futuristic city skyline with neon lights",
	"mystery":    "fog drifting through a dark forest",
	"strength":   "weightlifter hoisting a loaded barbell",
	"innovation": "robotic arm assembling circuit boards",
}

// abstractMarkers flags lines worth literalizing. literalRules keys
// double as markers; these are abstract nouns with no canonical visual
// of their own.
var abstractMarkers = map[string]struct{}{
	"legacy":   {},
	"destiny":  {},
	"glory":    {},
	"fate":     {},
	"hope":     {},
	"fear":     {},
	"courage":  {},
	"betrayal": {},
	"dream":    {},
	"spirit":   {},
	"honor":    {},
	"chaos":    {},
	"justice":  {},
	"ambition": {},
	"triumph":  {},
}

// lineIsAbstract gates the literalizer lexically so concrete lines
// never cost a model round trip.
func lineIsAbstract(text string) bool {
	for _, token := range textmatch.Tokenize(text) {
		singular := strings.TrimSuffix(token, "s")
		if _, ok := literalRules[token]; ok {
			return true
		}
		if _, ok := literalRules[singular]; ok {
			return true
		}
		if _, ok := abstractMarkers[token]; ok {
			return true
		}
		if _, ok := abstractMarkers[singular]; ok {
			return true
		}
	}
	return false
}

// SymbolicExtractor literalizes abstract or metaphorical lines. A
// lexical gate filters concrete lines first; the model gets one
// stricter retry before the rule map takes over.
type SymbolicExtractor struct {
	client *llm.Client
}

func NewSymbolicExtractor(client *llm.Client) *SymbolicExtractor {
	return &SymbolicExtractor{client: client}
}

func (e *SymbolicExtractor) Name() string { return "symbolic-literalizer" }

func (e *SymbolicExtractor) Available() bool { return e.client != nil }

func (e *SymbolicExtractor) Extract(ctx context.Context, line Line) ([]string, error) {
	if !lineIsAbstract(line.Text) {
		return nil, nil
	}
	userPrompt := "Script line: " + strings.TrimSpace(line.Text)

	if phrase, ok := e.attempt(ctx, literalizeSystemPrompt, userPrompt); ok {
		return []string{phrase}, nil
	}
	if phrase, ok := e.attempt(ctx, literalizeSystemPrompt+"\n\n"+literalizeRetryPrompt, userPrompt); ok {
		return []string{phrase}, nil
	}
	if phrase, ok := RuleVisual(line.Text); ok {
		return []string{phrase}, nil
	}
	return nil, nil
}

func (e *SymbolicExtractor) attempt(ctx context.Context, systemPrompt, userPrompt string) (string, bool) {
	raw, err := e.client.Complete(ctx, systemPrompt, userPrompt, 60, 0.5)
	if err != nil {
		return "", false
	}
	return EnforcePhrase(raw)
}

// RuleVisual looks the line's tokens up in the abstract-topic rule map.
func RuleVisual(text string) (string, bool) {
	for _, token := range textmatch.Tokenize(text) {
		if visual, ok := literalRules[token]; ok {
			return visual, true
		}
	}
	return "", false
}
