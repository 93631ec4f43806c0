package synth

import "strings"

const (
	MinSupportedBPM = 60
	MaxSupportedBPM = 200
)

// BPMRange is an inclusive tempo band.
type BPMRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultRange is used when neither a range nor a known mood is given.
var DefaultRange = BPMRange{Min: 70, Max: 180}

var moodRanges = map[string]BPMRange{
	"workout":  {Min: 125, Max: 145},
	"running":  {Min: 150, Max: 170},
	"relaxed":  {Min: 60, Max: 90},
	"chill":    {Min: 70, Max: 100},
	"focus":    {Min: 90, Max: 110},
	"party":    {Min: 118, Max: 132},
	"dance":    {Min: 120, Max: 130},
	"sleep":    {Min: 60, Max: 70},
	"romantic": {Min: 65, Max: 95},
	"happy":    {Min: 110, Max: 130},
}

// RangeForMood returns the tempo band for a mood keyword, [DefaultRange] when unknown.
func RangeForMood(mood string) BPMRange {
	if r, ok := moodRanges[strings.ToLower(strings.TrimSpace(mood))]; ok {
		return r
	}
	return DefaultRange
}

// Normalize swaps inverted bounds and clamps both to the supported tempo range. An unset range
// becomes [DefaultRange].
func (r BPMRange) Normalize() BPMRange {
	if r.IsZero() {
		return DefaultRange
	}
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	r.Min = clampInt(r.Min, MinSupportedBPM, MaxSupportedBPM)
	r.Max = clampInt(r.Max, MinSupportedBPM, MaxSupportedBPM)
	return r
}

// IsZero reports whether neither bound is set.
func (r BPMRange) IsZero() bool {
	return r.Min <= 0 && r.Max <= 0
}

// Contains reports whether bpm lies inside the band.
func (r BPMRange) Contains(bpm float64) bool {
	return bpm >= float64(r.Min) && bpm <= float64(r.Max)
}

func (r BPMRange) span() float64 {
	return float64(r.Max - r.Min)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
