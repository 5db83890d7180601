package subjects

import (
	"context"

	"socialstorm/internal/textmatch"
)

// emotionVisuals maps emotion words and narrative transition cues to a
// concrete visual. Purely rule based; anything outside the table yields
// nothing rather than a guess.
var emotionVisuals = map[string]string{
	"worried":    "worried person biting their nails",
	"anxious":    "anxious hands tapping on a table",
	"nervous":    "nervous foot tapping under a desk",
	"happy":      "smiling friends laughing in sunlight",
	"joy":        "child jumping with arms raised",
	"excited":    "crowd cheering with raised hands",
	"sad":        "rain running down a window pane",
	"angry":      "fist slamming on a wooden table",
	"scared":     "wide eyes peeking through fingers",
	"fear":       "shadow looming down a dark hallway",
	"shocked":    "jaw dropping in slow motion",
	"surprised":  "eyes widening in close-up",
	"tired":      "exhausted worker rubbing their eyes",
	"meanwhile":  "split screen city streets at rush hour",
	"later":      "clock spinning past the hours",
	"suddenly":   "door bursting open in slow motion",
	"finally":    "finish line tape breaking at sunset",
	"eventually": "seasons changing over one landscape",
}

// EmotionExtractor maps emotion words and transition cues to visuals.
type EmotionExtractor struct{}

func NewEmotionExtractor() *EmotionExtractor { return &EmotionExtractor{} }

func (e *EmotionExtractor) Name() string { return "emotion-action" }

func (e *EmotionExtractor) Available() bool { return true }

func (e *EmotionExtractor) Extract(_ context.Context, line Line) ([]string, error) {
	for _, token := range textmatch.Tokenize(line.Text) {
		if visual, ok := emotionVisuals[token]; ok {
			return []string{visual}, nil
		}
	}
	return nil, nil
}
