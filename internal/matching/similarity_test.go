package matching

import (
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tt := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "Take Five", b: "Take Five", want: 1.0},
		{name: "case and punctuation", a: "Let It Be", b: "let it be!!", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "Take Five", b: "", want: 0},
		{name: "punctuation only", a: "!!!", b: "Take Five", want: 0},
		{name: "containment", a: "Midnight", b: "Midnight (DJ Kex Remix)", want: 0.9},
		{name: "one edit", a: "kitten", b: "sitten", want: 1 - 1.0/6},
		{name: "unicode length", a: "café", b: "cafe", want: 0.75},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Similarity(tc.a, tc.b), 1e-9)
		})
	}
}

func TestSimilarityProperties(t *testing.T) {
	inputs := []string{"Take Five", "So What", "Blue in Green", "Freddie Freeloader", "", "Miles Davis", "Davis Miles"}

	for _, a := range inputs {
		for _, b := range inputs {
			ab, ba := Similarity(a, b), Similarity(b, a)
			assert.Equal(t, ab, ba, "symmetric for %q and %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
		if a != "" {
			assert.Equal(t, 1.0, Similarity(a, a))
		}
	}
}

func TestArtistSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, ArtistSimilarity("Nova", []string{"Someone Else", "Nova"}))
	assert.Equal(t, 0.0, ArtistSimilarity("Nova", nil))
}

func TestRemixScore(t *testing.T) {
	tt := []struct {
		name           string
		source, target string
		want           float64
	}{
		{name: "neither", source: "Midnight", target: "Midnight", want: 1.0},
		{name: "source only", source: "Midnight (DJ Kex Remix)", target: "Midnight", want: 0.3},
		{name: "target only", source: "Midnight", target: "Midnight (Live)", want: 0.3},
		{name: "same remixer", source: "Midnight (DJ Kex Remix)", target: "Midnight - DJ Kex Remix", want: 1.0},
		{name: "remixer unknown", source: "Midnight (Live)", target: "Midnight (DJ Kex Remix)", want: 0.5},
		{name: "different remixer", source: "Midnight (abcd Remix)", target: "Midnight (wxyz Remix)", want: 0},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, RemixScore(tc.source, tc.target), 1e-9)
		})
	}
}

func TestContextScore(t *testing.T) {
	style := models.StyleContext{SubGenres: []string{"latin"}, Terms: []string{"bossa"}}
	mood := models.MoodContext{Terms: []string{"love"}}

	assert.Equal(t, 0.0, ContextScore("Take Five", style, mood))
	assert.Equal(t, 0.5, ContextScore("Bossa Baby", style, mood))
	assert.Equal(t, 0.3, ContextScore("Latin Heat", style, mood))
	assert.Equal(t, 0.4, ContextScore("Love For Sale", style, mood))
	assert.Equal(t, 1.0, ContextScore("Latin Bossa Love", style, mood))
}

func TestCompositeScore(t *testing.T) {
	assert.InDelta(t, 1.0, CompositeScore(models.ScoreBreakdown{Title: 1, Artist: 1, Remix: 1, Context: 1}), 1e-9)
	assert.InDelta(t, 0.35, CompositeScore(models.ScoreBreakdown{Title: 1}), 1e-9)
	assert.InDelta(t, 0.1, CompositeScore(models.ScoreBreakdown{Context: 1}), 1e-9)
}

func TestCompositeScoreMonotonic(t *testing.T) {
	base := models.ScoreBreakdown{Title: 0.5, Artist: 0.5, Remix: 0.5, Context: 0.5}
	baseScore := CompositeScore(base)

	bumps := []func(b *models.ScoreBreakdown){
		func(b *models.ScoreBreakdown) { b.Title += 0.1 },
		func(b *models.ScoreBreakdown) { b.Artist += 0.1 },
		func(b *models.ScoreBreakdown) { b.Remix += 0.1 },
		func(b *models.ScoreBreakdown) { b.Context += 0.1 },
	}
	for _, bump := range bumps {
		b := base
		bump(&b)
		assert.Greater(t, CompositeScore(b), baseScore)
	}
}
