package synth

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func blankSongs(n int) []models.GeneratedSong {
	songs := make([]models.GeneratedSong, n)
	for i := range songs {
		songs[i] = models.GeneratedSong{Title: "Song", Artist: "Artist"}
	}
	return songs
}

func distinctBPM(songs []models.GeneratedSong) int {
	seen := map[float64]bool{}
	for _, s := range songs {
		seen[s.BPM] = true
	}
	return len(seen)
}

func TestCorrectBPMStaysInRange(t *testing.T) {
	ranges := []BPMRange{{Min: 100, Max: 120}, {Min: 60, Max: 70}, {Min: 150, Max: 170}, {Min: 70, Max: 180}}

	for _, r := range ranges {
		for seed := uint64(0); seed < 5; seed++ {
			songs := blankSongs(40)
			songs[3].BPM = 10
			songs[7].BPM = 400
			songs[11].BPM = math.NaN()
			songs[13].BPM = math.Inf(1)
			songs[17].BPM = -5

			got := NewSynthesizer(seeded(seed)).CorrectBPM(songs, r)
			require.Len(t, got, len(songs))
			for i, s := range got {
				assert.True(t, r.Contains(s.BPM), "song %d bpm %v outside %v", i, s.BPM, r)
				assert.Equal(t, math.Round(s.BPM), s.BPM, "bpm should be whole")
			}
		}
	}
}

func TestCorrectBPMDoesNotMutateInput(t *testing.T) {
	songs := blankSongs(5)
	NewSynthesizer(seeded(1)).CorrectBPM(songs, BPMRange{Min: 100, Max: 120})

	for _, s := range songs {
		assert.Zero(t, s.BPM)
	}
}

func TestCorrectBPMKeepsValidValues(t *testing.T) {
	songs := blankSongs(3)
	songs[0].BPM = 110.5
	songs[2].BPM = 100

	got := NewSynthesizer(seeded(2)).CorrectBPM(songs, BPMRange{Min: 100, Max: 120})
	assert.Equal(t, 110.5, got[0].BPM)
	assert.Equal(t, 100.0, got[2].BPM)
	assert.NotEqual(t, 100.0, got[1].BPM, "synthesized values avoid tempos already present when one is free nearby")
}

func TestCorrectBPMFewerDuplicatesThanNaiveSampling(t *testing.T) {
	r := BPMRange{Min: 100, Max: 120}
	ours, naive := 0, 0

	for seed := uint64(0); seed < 10; seed++ {
		got := NewSynthesizer(seeded(seed)).CorrectBPM(blankSongs(50), r)
		ours += distinctBPM(got)

		rng := seeded(seed)
		sampled := blankSongs(50)
		for i := range sampled {
			sampled[i].BPM = float64(r.Min + rng.IntN(r.Max-r.Min+1))
		}
		naive += distinctBPM(sampled)
	}

	assert.Greater(t, ours, naive)
}

func TestCorrectBPMOutOfRangeIsBiasedTowardsBound(t *testing.T) {
	r := BPMRange{Min: 100, Max: 120}

	low := blankSongs(300)
	high := blankSongs(300)
	for i := range low {
		low[i].BPM = 40
		high[i].BPM = 190
	}

	s := NewSynthesizer(seeded(7))
	assert.Less(t, meanBPM(s.CorrectBPM(low, r)), 110.0)
	assert.Greater(t, meanBPM(s.CorrectBPM(high, r)), 110.0)
}

func TestCorrectBPMDeterministic(t *testing.T) {
	r := BPMRange{Min: 90, Max: 130}
	a := NewSynthesizer(seeded(42)).CorrectBPM(blankSongs(20), r)
	b := NewSynthesizer(seeded(42)).CorrectBPM(blankSongs(20), r)
	assert.Equal(t, a, b)
}

func TestCorrectBPMEdgeCases(t *testing.T) {
	s := NewSynthesizer(nil)

	assert.Empty(t, s.CorrectBPM(nil, DefaultRange))

	one := s.CorrectBPM(blankSongs(1), BPMRange{Min: 120, Max: 120})
	assert.Equal(t, 120.0, one[0].BPM)

	inverted := s.CorrectBPM(blankSongs(10), BPMRange{Min: 130, Max: 110})
	for _, song := range inverted {
		assert.True(t, song.BPM >= 110 && song.BPM <= 130)
	}
}

func TestCorrectBPMUnsetRangeUsesDefault(t *testing.T) {
	songs := NewSynthesizer(seeded(7)).CorrectBPM(blankSongs(10), BPMRange{})

	for _, song := range songs {
		assert.True(t, DefaultRange.Contains(song.BPM), "bpm %v outside default range", song.BPM)
	}
	assert.Greater(t, distinctBPM(songs), 1)

	playlist, _ := CorrectPlaylistBPM(blankSongs(10), BPMRange{}, nil, seeded(7))
	for _, song := range playlist {
		assert.True(t, DefaultRange.Contains(song.BPM), "bpm %v outside default range", song.BPM)
	}
	assert.Greater(t, distinctBPM(playlist), 1)
}

func TestNearestFree(t *testing.T) {
	r := BPMRange{Min: 100, Max: 110}

	assert.Equal(t, 106, nearestFree(105, r, map[int]bool{105: true}))
	assert.Equal(t, 104, nearestFree(105, r, map[int]bool{105: true, 106: true}))
	assert.Equal(t, 109, nearestFree(110, r, map[int]bool{110: true}), "candidates outside the range are skipped")

	full := map[int]bool{}
	for v := 100; v <= 110; v++ {
		full[v] = true
	}
	assert.Equal(t, 105, nearestFree(105, r, full))
}

func TestPosition(t *testing.T) {
	assert.Equal(t, 0.0, position(0, 1))
	assert.Equal(t, 0.0, position(0, 5))
	assert.Equal(t, 0.5, position(2, 5))
	assert.Equal(t, 1.0, position(4, 5))
}

func TestCorrectDuration(t *testing.T) {
	songs := blankSongs(30)
	songs[4].Duration = 42

	got := NewSynthesizer(seeded(3)).CorrectDuration(songs)
	for i, s := range got {
		if i == 4 {
			assert.Equal(t, 42, s.Duration)
			continue
		}
		assert.GreaterOrEqual(t, s.Duration, 180)
		assert.LessOrEqual(t, s.Duration, 300)
	}
	assert.Zero(t, songs[0].Duration)
}

func meanBPM(songs []models.GeneratedSong) float64 {
	total := 0.0
	for _, s := range songs {
		total += s.BPM
	}
	return total / float64(len(songs))
}
