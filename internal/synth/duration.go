package synth

import (
	"math"

	"github.com/desertthunder/tunesmith/internal/models"
)

const (
	baseDuration   = 180
	durationSpread = 120
)

// CorrectDuration returns a copy of songs where every missing duration is synthesized between three
// and five minutes, longer towards the end of the playlist.
func (s *Synthesizer) CorrectDuration(songs []models.GeneratedSong) []models.GeneratedSong {
	out := append([]models.GeneratedSong(nil), songs...)
	for i := range out {
		if out[i].HasValidDuration() {
			continue
		}
		pos := position(i, len(out))
		frac := 0.5*pos + 0.5*math.Sqrt(s.rng.Float64())
		out[i].Duration = baseDuration + int(math.Round(durationSpread*frac))
	}
	return out
}
