package textmatch

// synonymGroups maps a canonical subject term to metadata terms that should
// count as a near-exact match. Grouped by the domains that show up most in
// short-form scripts: wildlife, landmarks, and a few broad visual categories.
var synonymGroups = map[string][]string{
	"gorilla":   {"primate", "ape", "chimpanzee", "monkey"},
	"lion":      {"lioness", "big cat", "predator"},
	"shark":     {"great white", "hammerhead"},
	"eagle":     {"bird of prey", "raptor", "hawk"},
	"snake":     {"serpent", "python", "cobra"},
	"cat":       {"kitten", "feline"},
	"dog":       {"puppy", "canine"},
	"ocean":     {"sea", "underwater", "waves"},
	"mountain":  {"peak", "summit", "alps"},
	"forest":    {"woods", "jungle", "rainforest"},
	"city":      {"skyline", "downtown", "urban"},
	"desert":    {"dunes", "sahara"},
	"castle":    {"fortress", "palace"},
	"church":    {"cathedral", "basilica", "chapel"},
	"car":       {"automobile", "vehicle", "supercar"},
	"airplane":  {"aircraft", "jet", "plane"},
	"ship":      {"boat", "vessel", "yacht"},
	"train":     {"railway", "locomotive"},
	"athlete":   {"sports", "runner", "sprinter"},
	"scientist": {"laboratory", "researcher", "microscope"},
	"doctor":    {"hospital", "surgeon", "nurse"},
	"chef":      {"kitchen", "cooking", "restaurant"},
	"money":     {"cash", "currency", "dollars", "coins"},
	"space":     {"galaxy", "nebula", "astronaut", "cosmos"},
	"volcano":   {"lava", "eruption"},
	"storm":     {"lightning", "thunderstorm", "hurricane"},
}

// SynonymMatch reports whether any major word of subject has a known synonym
// that appears as a whole token in text. The lookup works in both directions:
// a "gorilla" subject matches "primate" metadata, and a "primate" subject
// matches "gorilla" metadata.
func SynonymMatch(text, subject string) bool {
	for _, word := range MajorWords(subject) {
		for _, synonym := range synonymGroups[word] {
			if ContainsToken(text, synonym) {
				return true
			}
		}
		for canonical, synonyms := range synonymGroups {
			if !wordInSynonyms(word, synonyms) {
				continue
			}
			if ContainsToken(text, canonical) {
				return true
			}
		}
	}
	return false
}

func wordInSynonyms(word string, synonyms []string) bool {
	for _, synonym := range synonyms {
		for _, token := range tokenSplitPattern.Split(Fold(synonym), -1) {
			if token != "" && token == word {
				return true
			}
		}
	}
	return false
}

// Synonyms returns the synonym list registered for a canonical term, or nil.
func Synonyms(term string) []string {
	return synonymGroups[Fold(term)]
}
