package providers

import (
	"sort"
	"strconv"

	"socialstorm/internal/textmatch"
)

// Provider-local ranking constants. These order a single provider's catalog
// results; the orchestrator's unified scorer re-ranks the merged pool.
const (
	rankPhraseMatch     = 40.0
	rankAllWordsMatch   = 25.0
	rankPerWordMatch    = 6.0
	rankPortraitBonus   = 12.0
	rankHDBonus         = 6.0
	rankDurationIdeal   = 10.0
	rankDurationTooFast = -8.0
	rankDurationTooLong = -6.0
	rankFreshnessMax    = 5.0

	// MinRank is the floor below which a provider discards its own hits so
	// the orchestrator can fall through to the next tier.
	MinRank = 8.0
)

// RankStockHit computes the provider-local score for a stock search result.
// Term presence dominates (phrase > all major words > individual words),
// then delivery fit: portrait orientation for 9:16 output, resolution, a
// 3-25 second duration sweet spot, and a freshness proxy from the numeric
// ID magnitude.
func RankStockHit(subject string, hit Hit) float64 {
	meta := hit.Metadata()
	score := 0.0

	switch {
	case textmatch.PhraseMatch(meta, subject):
		score += rankPhraseMatch
	case textmatch.AllWordsMatch(meta, subject):
		score += rankAllWordsMatch
	default:
		matched, _ := textmatch.CountWordMatches(meta, subject)
		score += float64(matched) * rankPerWordMatch
	}
	if score == 0 {
		// No term relevance at all. Delivery-fit bonuses must not rescue a
		// hit the subject never asked for.
		return 0
	}

	if hit.Height > hit.Width && hit.Width > 0 {
		score += rankPortraitBonus
	}
	if hit.Height >= 1920 || hit.Width >= 1920 {
		score += rankHDBonus
	}

	if hit.IsVideo {
		switch {
		case hit.DurationSec >= 3 && hit.DurationSec <= 25:
			score += rankDurationIdeal
		case hit.DurationSec > 0 && hit.DurationSec < 4:
			score += rankDurationTooFast
		case hit.DurationSec > 40:
			score += rankDurationTooLong
		}
	}

	if id, err := strconv.ParseInt(hit.ID, 10, 64); err == nil && id > 0 {
		// Higher numeric IDs skew newer on both stock APIs. Scale into a
		// small bounded bonus so freshness never beats relevance.
		digits := len(strconv.FormatInt(id, 10))
		score += float64(digits) / 10.0 * rankFreshnessMax
	}

	return score
}

// FilterAndSort ranks hits against the subject, drops excluded and
// below-floor results, and returns the remainder sorted best-first.
func FilterAndSort(subject string, hits []Hit, exclude Excluder) []Hit {
	if exclude == nil {
		exclude = NeverExclude{}
	}
	kept := make([]Hit, 0, len(hits))
	for _, hit := range hits {
		if exclude.Excluded(hit.URL) || exclude.Excluded(textmatch.Stem(hit.URL)) {
			continue
		}
		hit.Rank = RankStockHit(subject, hit)
		if hit.Rank < MinRank {
			continue
		}
		kept = append(kept, hit)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Rank > kept[j].Rank })
	return kept
}
