package subjects

import (
	"context"
	"log/slog"
	"strings"

	"socialstorm/internal/logging"
	"socialstorm/internal/textmatch"
)

// Line is one script line plus the context extractors need.
type Line struct {
	Text      string
	MainTopic string
}

// Strategy is one extraction approach. Extract returns zero or more
// literal phrases already passed through EnforcePhrase; a strategy that
// does not apply to the line returns (nil, nil).
type Strategy interface {
	Name() string
	Available() bool
	Extract(ctx context.Context, line Line) ([]string, error)
}

// Registry holds the strategy list built once at startup. Unavailable
// strategies stay registered but are skipped, so the fan-out order is
// stable regardless of which collaborators are configured.
type Registry struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewRegistry builds the registry in fan-out order.
func NewRegistry(logger *slog.Logger, strategies ...Strategy) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		strategies: strategies,
		logger:     logging.NewComponentLogger(logger, "subjects"),
	}
}

// Strategies returns the registered strategies in order.
func (r *Registry) Strategies() []Strategy {
	return r.strategies
}

// Extract fans the line out across every available strategy and merges
// the results: deduplicated, generic-free, capped at max (0 means no
// cap). A strategy error drops that strategy's contribution only.
func (r *Registry) Extract(ctx context.Context, line Line, max int) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, strategy := range r.strategies {
		if !strategy.Available() {
			continue
		}
		phrases, err := strategy.Extract(ctx, line)
		if err != nil {
			r.logger.Warn("extractor failed",
				logging.String("strategy", strategy.Name()),
				logging.Error(err))
			continue
		}
		for _, phrase := range phrases {
			phrase, ok := EnforcePhrase(phrase)
			if !ok {
				continue
			}
			if textmatch.Fold(phrase) == textmatch.Fold(strings.TrimSpace(line.Text)) {
				continue
			}
			key := textmatch.Fold(phrase)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, phrase)
			if max > 0 && len(merged) >= max {
				return merged
			}
		}
	}
	return merged
}
