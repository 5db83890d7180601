package matcher

import "socialstorm/internal/textmatch"

// knownLandmarks lists highly recognizable landmarks that warrant the
// library fast path: when a scene names one of these and the library
// holds an exact-token video for it, full scoring is skipped.
var knownLandmarks = []string{
	"eiffel tower",
	"statue of liberty",
	"great wall of china",
	"great wall",
	"taj mahal",
	"big ben",
	"golden gate bridge",
	"mount rushmore",
	"machu picchu",
	"colosseum",
	"stonehenge",
	"pyramids of giza",
	"sydney opera house",
	"leaning tower of pisa",
	"christ the redeemer",
	"times square",
	"grand canyon",
	"niagara falls",
	"mount everest",
	"burj khalifa",
}

// LandmarkName returns the canonical landmark the subject names, if
// any. The subject must contain every token of the landmark name.
func LandmarkName(subject string) (string, bool) {
	for _, landmark := range knownLandmarks {
		if textmatch.AllWordsMatch(subject, landmark) {
			return landmark, true
		}
	}
	return "", false
}

// landmarkCullTerms are tags that usually indicate people or animals
// crowding out the landmark itself. Candidates carrying them are culled
// in landmark mode, except on a relaxed final attempt.
var landmarkCullTerms = []string{
	"person", "people", "man", "woman", "selfie", "crowd",
	"tourist", "tourists", "dog", "cat", "bird",
}

// landmarkCulled reports whether candidate metadata trips the landmark
// people/animal filter.
func landmarkCulled(metadata string) bool {
	for _, term := range landmarkCullTerms {
		if textmatch.ContainsToken(metadata, term) {
			return true
		}
	}
	return false
}
