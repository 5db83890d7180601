package matcher

import (
	"socialstorm/internal/providers"
	"socialstorm/internal/subjects"
)

// SceneRequest describes one scene to resolve. The calling pipeline
// constructs it and awaits each scene sequentially.
type SceneRequest struct {
	SceneIndex int
	// Subject is the scene's intended visual, possibly generic or abstract.
	Subject subjects.Subject
	// SceneText is the full script line for the scene.
	SceneText string
	// MainTopic is the overall video topic, the anchor fallback.
	MainTopic string
	// FirstSceneText is the opening line, the last-resort subject source.
	FirstSceneText string
	// IsAnchorScene marks the hook scene, which searches by topic rather
	// than by its own line.
	IsAnchorScene bool
	// ForcedLocator short-circuits matching when the caller already knows
	// the clip to use.
	ForcedLocator string
	// WorkDir receives downloaded and synthesized files.
	WorkDir string
}

// Candidate is a scored search hit. Immutable once scored; the subject
// context is baked in at scoring time.
type Candidate struct {
	Hit     providers.Hit
	Source  providers.Provider
	Subject string
	Score   float64
}

// Resolution is the terminal state of one scene. An empty Locator is
// the null resolution, the only outcome the caller must treat as a
// hard scene failure.
type Resolution struct {
	Locator     string
	Provider    providers.Source
	Subject     string
	Score       float64
	IsVideo     bool
	Synthesized bool
	FromCache   bool
	// CaptionCard signals the compositor to render a text card.
	CaptionCard bool
}

// Resolved reports whether the scene produced a usable locator or a
// caption card directive.
func (r Resolution) Resolved() bool { return r.Locator != "" || r.CaptionCard }
