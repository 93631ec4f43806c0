package synth

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
)

const (
	waveCycles   = 2.5
	trendWeight  = 0.4
	waveWeight   = 0.3
	noiseWeight  = 0.3
	maxNudge     = 5
	biasExponent = 1.5
)

// Synthesizer fills in missing tempo and duration values. It is not safe for concurrent use.
type Synthesizer struct {
	rng *rand.Rand
}

// NewSynthesizer creates a Synthesizer drawing from rng. A nil rng is seeded from the clock.
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Synthesizer{rng: rng}
}

// CorrectBPM returns a copy of songs where every BPM lies inside r.
//
// Valid in-range values are kept. Missing values are synthesized from the song's position in the
// playlist; values below or above the band are redrawn near the violated bound.
func (s *Synthesizer) CorrectBPM(songs []models.GeneratedSong, r BPMRange) []models.GeneratedSong {
	r = r.Normalize()
	out := append([]models.GeneratedSong(nil), songs...)

	used := make(map[int]bool, len(out))
	for _, song := range out {
		if song.HasValidBPM() && r.Contains(song.BPM) {
			used[int(math.Round(song.BPM))] = true
		}
	}

	for i := range out {
		bpm := out[i].BPM
		switch {
		case !out[i].HasValidBPM():
			bpm = float64(s.synthesize(position(i, len(out)), r, used))
		case bpm < float64(r.Min):
			bpm = math.Round(float64(r.Min) + r.span()*s.biased())
		case bpm > float64(r.Max):
			bpm = math.Round(float64(r.Max) - r.span()*s.biased())
		default:
			continue
		}
		out[i].BPM = math.Max(MinSupportedBPM, math.Min(MaxSupportedBPM, bpm))
	}
	return out
}

// synthesize draws a tempo for a song at relative position pos and registers it as used.
func (s *Synthesizer) synthesize(pos float64, r BPMRange, used map[int]bool) int {
	wave := (math.Sin(2*math.Pi*waveCycles*pos) + 1) / 2
	frac := trendWeight*pos + waveWeight*wave + noiseWeight*s.rng.Float64()

	value := int(math.Round(float64(r.Min)+frac*r.span())) + s.rng.IntN(3) - 1
	value = clampInt(value, r.Min, r.Max)

	if used[value] {
		value = nearestFree(value, r, used)
	}
	used[value] = true
	return value
}

// nearestFree looks for the nearest free tempo within maxNudge of value, trying above before below.
// It returns value itself when every candidate is taken.
func nearestFree(value int, r BPMRange, used map[int]bool) int {
	for offset := 1; offset <= maxNudge; offset++ {
		for _, candidate := range []int{value + offset, value - offset} {
			if candidate >= r.Min && candidate <= r.Max && !used[candidate] {
				return candidate
			}
		}
	}
	return value
}

// biased draws from [0,1) skewed towards 0.
func (s *Synthesizer) biased() float64 {
	return math.Pow(s.rng.Float64(), biasExponent)
}

// position maps index i of n onto [0,1].
func position(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
