package matching

import (
	"github.com/desertthunder/tunesmith/internal/models"
)

// ExactThreshold is the minimum title and artist similarity when RequireExact is set.
const ExactThreshold = 0.9

// DefaultFloor is the similarity floor used by every search attempt.
const DefaultFloor = 0.4

// PopularityRange bounds candidate popularity, inclusive.
type PopularityRange struct {
	Min int
	Max int
}

// Contains reports whether popularity is inside the range. Unknown popularity (negative) never is.
func (r PopularityRange) Contains(popularity int) bool {
	if popularity < 0 {
		return false
	}
	return popularity >= r.Min && popularity <= r.Max
}

// MatchOptions describe the song being resolved and the acceptance rules for one attempt.
type MatchOptions struct {
	Title        string
	Artist       string
	Style        models.StyleContext
	Mood         models.MoodContext
	Popularity   *PopularityRange
	Floor        float64
	RequireExact bool
}

// SelectBest returns the highest-scoring candidate above the floor. Ties keep the first candidate seen.
func SelectBest(candidates []models.CandidateTrack, opts MatchOptions) (models.MatchResult, bool) {
	var (
		best      models.MatchResult
		bestScore = opts.Floor
		found     bool
	)

	for _, c := range candidates {
		if opts.Popularity != nil && !opts.Popularity.Contains(c.Popularity) {
			continue
		}

		breakdown := ScoreCandidate(c, opts)
		if opts.RequireExact && (breakdown.Title < ExactThreshold || breakdown.Artist < ExactThreshold) {
			continue
		}

		score := CompositeScore(breakdown)
		if score <= bestScore {
			continue
		}

		bestScore = score
		found = true
		best = models.MatchResult{
			URI:       c.URI,
			Name:      c.Name,
			Artists:   c.Artists,
			Score:     score,
			Breakdown: &breakdown,
		}
	}
	return best, found
}
