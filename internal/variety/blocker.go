package variety

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"socialstorm/internal/logging"
	"socialstorm/internal/services/llm"
	"socialstorm/internal/subjects"
	"socialstorm/internal/textmatch"
)

// CaptionCard is the terminal substitute: it tells the compositor to
// render a text card instead of sourcing visual material.
const CaptionCard = "text-only viral caption card"

const defaultWindow = 2

var varietyTemplates = []string{
	"%s from above",
	"%s closeup detail",
	"%s in motion",
	"%s at golden hour",
	"%s slow motion shot",
}

const reangleSystemPrompt = `You suggest a fresh visual angle for a short-form video.
The same subject has appeared in recent scenes. Suggest ONE alternative:
a new camera angle, a new context, or a closely related but visually
different subject. Never repeat the current subject or any recent
subject. Never answer with vague words like "person", "thing", "scene".
Answer with a single 3-10 word noun phrase only.`

// Blocker decides whether a proposed subject passes through unchanged
// or must be substituted for variety. It holds no per-job state: the
// caller owns the recent-subject history and passes it to Check.
type Blocker struct {
	client *llm.Client
	window int
	logger *slog.Logger
}

// Option configures a Blocker.
type Option func(*Blocker)

// WithWindow overrides the repetition window size.
func WithWindow(window int) Option {
	return func(b *Blocker) {
		if window > 0 {
			b.window = window
		}
	}
}

// NewBlocker builds a Blocker. A nil client disables the model-based
// reangle path; template substitution still applies.
func NewBlocker(client *llm.Client, logger *slog.Logger, opts ...Option) *Blocker {
	if logger == nil {
		logger = logging.NewNop()
	}
	blocker := &Blocker{
		client: client,
		window: defaultWindow,
		logger: logging.NewComponentLogger(logger, "variety"),
	}
	for _, opt := range opts {
		opt(blocker)
	}
	return blocker
}

// Check passes a fresh subject through unchanged and substitutes a
// repeated or generic one. The recent list is the job's noted subject
// folds, oldest first; only the trailing window counts. The returned
// subject is never empty; the caller records it once the scene
// actually uses it.
func (b *Blocker) Check(ctx context.Context, subject string, recent []string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return CaptionCard
	}
	windowed := b.trailingWindow(recent)
	if !subjects.IsGeneric(subject) && !b.isRepeated(subject, windowed) {
		return subject
	}
	return b.substitute(ctx, subject, windowed)
}

func (b *Blocker) trailingWindow(recent []string) []string {
	if len(recent) > b.window {
		return recent[len(recent)-b.window:]
	}
	return recent
}

func (b *Blocker) isRepeated(subject string, recent []string) bool {
	folded := textmatch.Fold(subject)
	count := 0
	for _, entry := range recent {
		if entry == folded {
			count++
		}
	}
	return count >= b.window
}

func (b *Blocker) substitute(ctx context.Context, subject string, recent []string) string {
	if reangled, ok := b.reangle(ctx, subject, recent); ok {
		b.logger.Debug("substituted repeated subject",
			logging.String(logging.FieldSubject, subject),
			logging.String("substitute", reangled))
		return reangled
	}
	for _, template := range varietyTemplates {
		candidate := fmt.Sprintf(template, subject)
		if !seenRecently(candidate, recent) {
			return candidate
		}
	}
	return CaptionCard
}

// reangle asks the model for a fresh angle and validates the answer
// against the generic blocklist and the recent-subject window.
func (b *Blocker) reangle(ctx context.Context, subject string, recent []string) (string, bool) {
	if b.client == nil {
		return "", false
	}
	userPrompt := "Current subject: " + subject
	if len(recent) > 0 {
		userPrompt += "\nRecent subjects: " + strings.Join(recent, "; ")
	}
	raw, err := b.client.Complete(ctx, reangleSystemPrompt, userPrompt, 60, 0.7)
	if err != nil {
		b.logger.Warn("reangle request failed", logging.Error(err))
		return "", false
	}
	phrase, ok := subjects.EnforcePhrase(raw)
	if !ok {
		return "", false
	}
	if textmatch.Fold(phrase) == textmatch.Fold(subject) || seenRecently(phrase, recent) {
		return "", false
	}
	return phrase, true
}

func seenRecently(candidate string, recent []string) bool {
	folded := textmatch.Fold(candidate)
	for _, entry := range recent {
		if entry == folded {
			return true
		}
	}
	return false
}
