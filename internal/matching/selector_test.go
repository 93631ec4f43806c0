package matching

import (
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id, name string, popularity int, artists ...string) models.CandidateTrack {
	return models.CandidateTrack{
		ID:         id,
		URI:        "spotify:track:" + id,
		Name:       name,
		Artists:    artists,
		Popularity: popularity,
	}
}

func TestSelectBestPrefersMatchingRemix(t *testing.T) {
	original := candidate("original", "Midnight", 50, "Nova")
	remix := candidate("remix", "Midnight (DJ Kex Remix)", 50, "Nova")

	got, ok := SelectBest([]models.CandidateTrack{original, remix}, MatchOptions{
		Title:  "Midnight (DJ Kex Remix)",
		Artist: "Nova",
		Floor:  DefaultFloor,
	})
	require.True(t, ok)
	assert.Equal(t, remix.URI, got.URI)
	require.NotNil(t, got.Breakdown)
	assert.Equal(t, 1.0, got.Breakdown.Remix)
	assert.InDelta(t, 0.9, got.Score, 0.1)
}

func TestSelectBestFloor(t *testing.T) {
	candidates := []models.CandidateTrack{candidate("x", "Xyzzy Qwv", 50, "Zzz")}

	_, ok := SelectBest(candidates, MatchOptions{Title: "Take Five", Artist: "Dave Brubeck", Floor: DefaultFloor})
	assert.False(t, ok)

	_, ok = SelectBest(nil, MatchOptions{Title: "Take Five", Artist: "Dave Brubeck", Floor: DefaultFloor})
	assert.False(t, ok)
}

func TestSelectBestRequireExact(t *testing.T) {
	candidates := []models.CandidateTrack{
		candidate("cover", "Take Five", 80, "Some Cover Band"),
		candidate("real", "Take Five", 70, "Dave Brubeck"),
	}
	opts := MatchOptions{Title: "Take Five", Artist: "The Dave Brubeck Quartet", Floor: DefaultFloor, RequireExact: true}

	got, ok := SelectBest(candidates, opts)
	require.True(t, ok, "containment scores 0.9 which meets the exact threshold")
	assert.Equal(t, "spotify:track:real", got.URI)

	opts.Artist = "Brubek"
	_, ok = SelectBest(candidates, opts)
	assert.False(t, ok)
}

func TestSelectBestPopularityBounds(t *testing.T) {
	candidates := []models.CandidateTrack{
		candidate("unknown", "Take Five", -1, "Dave Brubeck"),
		candidate("obscure", "Take Five", 5, "Dave Brubeck"),
		candidate("huge", "Take Five", 99, "Dave Brubeck"),
		candidate("mid", "Take Five", 50, "Dave Brubeck"),
	}
	opts := MatchOptions{Title: "Take Five", Artist: "Dave Brubeck", Floor: DefaultFloor, Popularity: &PopularityRange{Min: 20, Max: 90}}

	got, ok := SelectBest(candidates, opts)
	require.True(t, ok)
	assert.Equal(t, "spotify:track:mid", got.URI)

	opts.Popularity = nil
	got, ok = SelectBest(candidates, opts)
	require.True(t, ok)
	assert.Equal(t, "spotify:track:unknown", got.URI, "ties keep the first candidate")
}

func TestPopularityRangeContains(t *testing.T) {
	r := PopularityRange{Min: 20, Max: 90}
	assert.True(t, r.Contains(20))
	assert.True(t, r.Contains(90))
	assert.False(t, r.Contains(19))
	assert.False(t, r.Contains(91))
	assert.False(t, r.Contains(-1))
}
