package providers

import (
	"context"
	"strings"
)

// Source identifies which adapter produced a hit.
type Source string

const (
	SourceLibrary      Source = "library"
	SourcePexelsVideo  Source = "pexels-video"
	SourcePixabayVideo Source = "pixabay-video"
	SourcePexelsPhoto  Source = "pexels-photo"
	SourcePixabayPhoto Source = "pixabay-photo"
	SourceUnsplash     Source = "unsplash-photo"
)

// Hit is a raw search result before download. URL holds the remote download
// link for stock providers, or the storage key for the library.
type Hit struct {
	Provider    Source
	ID          string
	Title       string
	Tags        []string
	Description string
	URL         string
	Width       int
	Height      int
	DurationSec float64
	IsVideo     bool
	// Rank is the provider-local ordering score, independent of the
	// orchestrator's unified scorer.
	Rank float64
}

// Metadata joins the searchable text of a hit for lexical scoring.
func (h Hit) Metadata() string {
	parts := make([]string, 0, 3+len(h.Tags))
	parts = append(parts, h.Title, h.Description, h.URL)
	parts = append(parts, h.Tags...)
	return strings.Join(parts, " ")
}

// Excluder reports whether a locator (full form or basename stem) has
// already been consumed by the current job.
type Excluder interface {
	Excluded(locator string) bool
}

// Provider is a single candidate source.
type Provider interface {
	Name() Source
	// ServesVideo reports whether this provider participates in the video
	// tier. Photo-only providers are queried only when the video tier
	// comes up empty.
	ServesVideo() bool
	// Search returns ranked hits for the subject, already filtered by the
	// provider's own minimum rank floor and the exclusion set.
	Search(ctx context.Context, subject string, exclude Excluder) ([]Hit, error)
	// Download materializes a hit under destDir and validates the result.
	// The library provider returns its storage key unchanged; the calling
	// pipeline's storage layer resolves it.
	Download(ctx context.Context, hit Hit, destDir string) (string, error)
}

// NeverExclude is an Excluder that excludes nothing.
type NeverExclude struct{}

func (NeverExclude) Excluded(string) bool { return false }
