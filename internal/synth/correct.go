package synth

import (
	"math/rand/v2"

	"github.com/desertthunder/tunesmith/internal/models"
)

// CorrectPlaylistBPM applies the optional artist cap, then repairs tempo and duration.
//
// The returned songs are a new slice. With a seeded rng the output is deterministic.
func CorrectPlaylistBPM(songs []models.GeneratedSong, r BPMRange, diversity *DiversityOptions, rng *rand.Rand) ([]models.GeneratedSong, DiversityResult) {
	opts := DiversityOptions{}
	if diversity != nil {
		opts = *diversity
	}
	filtered := EnforceArtistDiversity(songs, opts)

	s := NewSynthesizer(rng)
	corrected := s.CorrectDuration(s.CorrectBPM(filtered.Songs, r))

	filtered.Songs = corrected
	return corrected, filtered
}
