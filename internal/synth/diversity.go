package synth

import (
	"fmt"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// DiversityOptions limit how often an artist may appear. Zero values disable each rule.
type DiversityOptions struct {
	MaxSongsPerArtist int `json:"maxSongsPerArtist"`
	MinUniqueArtists  int `json:"minUniqueArtists"`
}

// DiversityResult is the filtered list plus what the filter observed.
type DiversityResult struct {
	Songs         []models.GeneratedSong
	UniqueArtists int
	Removed       int
	Warning       string
}

// EnforceArtistDiversity keeps songs in order while each artist is under MaxSongsPerArtist.
//
// Artists are compared case-insensitively with surrounding whitespace ignored. Songs without an artist
// are never capped and do not count as a unique artist. Falling short of MinUniqueArtists only sets
// Warning; songs are never regenerated here.
func EnforceArtistDiversity(songs []models.GeneratedSong, opts DiversityOptions) DiversityResult {
	counts := make(map[string]int)
	kept := make([]models.GeneratedSong, 0, len(songs))

	for _, song := range songs {
		key := shared.NormalizeArtistKey(song.Artist)
		if key == "" {
			kept = append(kept, song)
			continue
		}
		if opts.MaxSongsPerArtist > 0 && counts[key] >= opts.MaxSongsPerArtist {
			continue
		}
		counts[key]++
		kept = append(kept, song)
	}

	result := DiversityResult{
		Songs:         kept,
		UniqueArtists: len(counts),
		Removed:       len(songs) - len(kept),
	}
	if opts.MinUniqueArtists > 0 && result.UniqueArtists < opts.MinUniqueArtists {
		result.Warning = fmt.Sprintf("only %d unique artists, wanted at least %d", result.UniqueArtists, opts.MinUniqueArtists)
	}
	return result
}
