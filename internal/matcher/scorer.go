package matcher

import (
	"sort"

	"socialstorm/internal/providers"
	"socialstorm/internal/subjects"
	"socialstorm/internal/textmatch"
)

// Unified scorer weights. Match specificity stays monotonic: exact >
// synonym > loose > weak > none, holding the video and generic
// modifiers constant.
const (
	scoreUsedPenalty = -1000.0

	scoreExactBase   = 100.0
	scoreSynonymBase = 80.0
	scorePerWord     = 10.0
	scoreAllWords    = 15.0
	scoreLooseCap    = 75.0
	scoreWeak        = 8.0
	scoreNoMatch     = 2.0

	scoreVideoBonus = 25.0

	// Generic-name penalties. The hard penalty applies only when the
	// batch offers a non-generic alternative; the only candidate in a
	// batch is never fully excluded.
	scoreGenericHard = -60.0
	scoreGenericSoft = -15.0
)

// weakCategories are broad tags that justify a token score when
// nothing subject-specific matches.
var weakCategories = []string{
	"wildlife", "nature", "animal", "animals", "landscape", "scenery",
	"city", "travel", "outdoors", "ocean", "forest", "sky", "aerial",
}

// BatchContext captures what the scorer needs to know about the other
// candidates under consideration for the same subject.
type BatchContext struct {
	// HasNonGeneric is true when at least one candidate has no banned
	// term in its name or metadata.
	HasNonGeneric bool
	// HasRealMatch is true when at least one candidate matches the
	// subject exactly or by synonym.
	HasRealMatch bool
}

// AnalyzeBatch derives the batch context for a candidate set.
func AnalyzeBatch(subject string, hits []providers.Hit) BatchContext {
	var batch BatchContext
	for _, hit := range hits {
		if !hitIsGeneric(hit) {
			batch.HasNonGeneric = true
		}
		meta := hit.Metadata()
		if textmatch.ContainsToken(meta, subject) || textmatch.SynonymMatch(meta, subject) {
			batch.HasRealMatch = true
		}
	}
	return batch
}

// Score rates one candidate for a subject. Deterministic and
// side-effect-free: fixed inputs always produce the same value.
func Score(hit providers.Hit, subject string, usedStems map[string]struct{}, batch BatchContext) float64 {
	if _, used := usedStems[textmatch.Stem(hit.URL)]; used {
		return scoreUsedPenalty
	}

	meta := hit.Metadata()
	generic := hitIsGeneric(hit)

	base, matched := matchScore(meta, subject)
	score := base
	if matched {
		if hit.IsVideo {
			score += scoreVideoBonus
		}
		if generic {
			score += genericPenalty(batch)
		}
		return score
	}

	// No lexical relation to the subject at all.
	if generic {
		return genericPenalty(batch)
	}
	return scoreNoMatch
}

// matchScore returns the specificity-ordered base score and whether any
// real or weak match fired.
func matchScore(meta, subject string) (float64, bool) {
	if textmatch.ContainsToken(meta, subject) {
		return scoreExactBase, true
	}
	if textmatch.SynonymMatch(meta, subject) {
		return scoreSynonymBase, true
	}
	if matched, total := textmatch.CountWordMatches(meta, subject); matched > 0 {
		loose := scorePerWord * float64(matched)
		if matched == total {
			loose += scoreAllWords
		}
		if loose > scoreLooseCap {
			loose = scoreLooseCap
		}
		return loose, true
	}
	for _, category := range weakCategories {
		if textmatch.ContainsToken(meta, category) {
			return scoreWeak, true
		}
	}
	return 0, false
}

func genericPenalty(batch BatchContext) float64 {
	if batch.HasNonGeneric || batch.HasRealMatch {
		return scoreGenericHard
	}
	return scoreGenericSoft
}

func hitIsGeneric(hit providers.Hit) bool {
	if subjects.ContainsForbidden(textmatch.Stem(hit.URL)) {
		return true
	}
	return subjects.ContainsForbidden(hit.Title)
}

// ScoreAll scores a candidate batch and returns the survivors of the
// floor, sorted by score descending with ties broken by provider rank
// and then locator for stable ordering. Input candidates carry their
// hit, source, and subject; ScoreAll fills in the score.
func ScoreAll(candidates []Candidate, usedStems map[string]struct{}, floor float64) []Candidate {
	bySubject := make(map[string][]providers.Hit)
	for _, candidate := range candidates {
		bySubject[candidate.Subject] = append(bySubject[candidate.Subject], candidate.Hit)
	}
	batches := make(map[string]BatchContext, len(bySubject))
	for subject, hits := range bySubject {
		batches[subject] = AnalyzeBatch(subject, hits)
	}

	survivors := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		candidate.Score = Score(candidate.Hit, candidate.Subject, usedStems, batches[candidate.Subject])
		if candidate.Score < floor {
			continue
		}
		survivors = append(survivors, candidate)
	}
	sort.SliceStable(survivors, func(i, k int) bool {
		if survivors[i].Score != survivors[k].Score {
			return survivors[i].Score > survivors[k].Score
		}
		if survivors[i].Hit.Rank != survivors[k].Hit.Rank {
			return survivors[i].Hit.Rank > survivors[k].Hit.Rank
		}
		return survivors[i].Hit.URL < survivors[k].Hit.URL
	})
	return survivors
}
