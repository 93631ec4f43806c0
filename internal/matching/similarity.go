package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/desertthunder/tunesmith/internal/models"
)

const (
	TitleWeight   = 0.35
	ArtistWeight  = 0.35
	RemixWeight   = 0.20
	ContextWeight = 0.10
)

const (
	containmentScore   = 0.9
	remixMismatchScore = 0.3
	remixUnknownScore  = 0.5
	remixerThreshold   = 0.8
	remixerPenalty     = 0.8

	styleTermBonus = 0.5
	subGenreBonus  = 0.3
	moodTermBonus  = 0.4
)

// Similarity returns a score in [0,1] for two strings after normalization. Two empty strings are
// identical; an empty string never matches a non-empty one. When one string contains the other the
// score is 0.9, otherwise it is 1 - editDistance/maxLength.
func Similarity(a, b string) float64 {
	na, nb := normalizeForSimilarity(a), normalizeForSimilarity(b)
	switch {
	case na == nb:
		return 1.0
	case na == "" || nb == "":
		return 0
	case strings.Contains(na, nb) || strings.Contains(nb, na):
		return containmentScore
	}

	maxLen := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	distance := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(distance)/float64(maxLen)
}

// ArtistSimilarity is the best similarity between want and any of the candidate's artists.
func ArtistSimilarity(want string, artists []string) float64 {
	best := 0.0
	for _, artist := range artists {
		best = max(best, Similarity(want, artist))
	}
	return best
}

// RemixScore compares the version qualifiers of two titles.
func RemixScore(source, target string) float64 {
	sourceRemix, targetRemix := IsRemix(source), IsRemix(target)
	if !sourceRemix && !targetRemix {
		return 1.0
	}
	if sourceRemix != targetRemix {
		return remixMismatchScore
	}

	a, okA := ExtractRemixer(source)
	b, okB := ExtractRemixer(target)
	if !okA || !okB {
		return remixUnknownScore
	}

	sim := Similarity(a, b)
	if sim > remixerThreshold {
		return 1.0
	}
	return sim * remixerPenalty
}

// ContextScore rewards candidate names that carry the song's style or mood vocabulary.
func ContextScore(trackName string, style models.StyleContext, mood models.MoodContext) float64 {
	score := 0.0
	if anyPhrase(trackName, style.Terms) {
		score += styleTermBonus
	}
	if anyPhrase(trackName, style.SubGenres) {
		score += subGenreBonus
	}
	if anyPhrase(trackName, mood.Terms) {
		score += moodTermBonus
	}
	return min(score, 1.0)
}

// CompositeScore weights the individual signals.
func CompositeScore(b models.ScoreBreakdown) float64 {
	return TitleWeight*b.Title + ArtistWeight*b.Artist + RemixWeight*b.Remix + ContextWeight*b.Context
}

// ScoreCandidate computes every signal for one candidate.
func ScoreCandidate(c models.CandidateTrack, opts MatchOptions) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Title:   Similarity(opts.Title, c.Name),
		Artist:  ArtistSimilarity(opts.Artist, c.Artists),
		Remix:   RemixScore(opts.Title, c.Name),
		Context: ContextScore(c.Name, opts.Style, opts.Mood),
	}
}

func anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(text, p) {
			return true
		}
	}
	return false
}
