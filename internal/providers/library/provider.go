package library

import (
	"context"
	"log/slog"
	"path"
	"sort"

	"socialstorm/internal/logging"
	"socialstorm/internal/providers"
	"socialstorm/internal/textmatch"
)

// Tiered match quality, strictest first.
const (
	rankStrict  = 90.0
	rankFuzzy   = 60.0
	rankPartial = 30.0
)

// Provider searches the internal media catalog.
type Provider struct {
	catalog Catalog
	logger  *slog.Logger
}

var _ providers.Provider = (*Provider)(nil)

// New builds a library provider over the supplied catalog.
func New(catalog Catalog, logger *slog.Logger) *Provider {
	return &Provider{
		catalog: catalog,
		logger:  logging.NewComponentLogger(logger, "library"),
	}
}

// Name implements providers.Provider.
func (p *Provider) Name() providers.Source { return providers.SourceLibrary }

// ServesVideo implements providers.Provider. The library holds mostly video
// keys; photo keys simply rank as image candidates.
func (p *Provider) ServesVideo() bool { return true }

// Search matches the subject against catalog filenames: strict whole-token
// first, then all-major-words, then any-major-word. Ties break by shortest
// filename, then lexical order.
func (p *Provider) Search(ctx context.Context, subject string, exclude providers.Excluder) ([]providers.Hit, error) {
	keys, err := p.catalog.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if exclude == nil {
		exclude = providers.NeverExclude{}
	}

	var hits []providers.Hit
	for _, key := range keys {
		if exclude.Excluded(key) || exclude.Excluded(textmatch.Stem(key)) {
			continue
		}
		name := path.Base(key)
		var rank float64
		switch {
		case textmatch.ContainsToken(name, subject):
			rank = rankStrict
		case textmatch.AllWordsMatch(name, subject):
			rank = rankFuzzy
		case textmatch.AnyWordMatch(name, subject):
			rank = rankPartial
		default:
			continue
		}
		hits = append(hits, providers.Hit{
			Provider: providers.SourceLibrary,
			ID:       key,
			Title:    name,
			URL:      key,
			IsVideo:  IsVideoKey(key),
			Rank:     rank,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Rank != hits[j].Rank {
			return hits[i].Rank > hits[j].Rank
		}
		if len(hits[i].Title) != len(hits[j].Title) {
			return len(hits[i].Title) < len(hits[j].Title)
		}
		return hits[i].URL < hits[j].URL
	})

	p.logger.Debug("library search complete",
		logging.String(logging.FieldSubject, subject),
		logging.Int("hits", len(hits)))
	return hits, nil
}

// StrictMatch returns the best strict-token match for a subject, if one
// exists. Used by the orchestrator's landmark fast path.
func (p *Provider) StrictMatch(ctx context.Context, subject string, exclude providers.Excluder) (providers.Hit, bool) {
	hits, err := p.Search(ctx, subject, exclude)
	if err != nil {
		return providers.Hit{}, false
	}
	for _, hit := range hits {
		if hit.Rank >= rankStrict && hit.IsVideo {
			return hit, true
		}
	}
	return providers.Hit{}, false
}

// Has reports whether the catalog holds the exact key.
func (p *Provider) Has(ctx context.Context, key string) bool {
	keys, err := p.catalog.ListAll(ctx)
	if err != nil {
		return false
	}
	for _, candidate := range keys {
		if candidate == key {
			return true
		}
	}
	return false
}

// Unused returns any catalog key not excluded by the job, for the absolute
// last-resort fallback. Video keys are preferred.
func (p *Provider) Unused(ctx context.Context, exclude providers.Excluder) (string, bool) {
	keys, err := p.catalog.ListAll(ctx)
	if err != nil {
		return "", false
	}
	if exclude == nil {
		exclude = providers.NeverExclude{}
	}
	fallback := ""
	for _, key := range keys {
		if exclude.Excluded(key) || exclude.Excluded(textmatch.Stem(key)) {
			continue
		}
		if IsVideoKey(key) {
			return key, true
		}
		if fallback == "" {
			fallback = key
		}
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}

// Download implements providers.Provider. Library hits resolve to their
// storage key: the calling pipeline's storage layer downloads the bytes.
func (p *Provider) Download(_ context.Context, hit providers.Hit, _ string) (string, error) {
	return hit.URL, nil
}
