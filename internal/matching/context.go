package matching

import (
	"slices"

	"github.com/desertthunder/tunesmith/internal/models"
)

const (
	defaultGenre   = "jazz"
	neutralMood    = "neutral"
	baseIntensity  = 0.5
	intensityStep  = 0.2
	neutralEnergy  = 0.5
	neutralValence = 0.5
)

type styleEntry struct {
	name      string
	keywords  []string
	energetic bool
}

type moodEntry struct {
	name     string
	keywords []string
	energy   float64
	valence  float64
}

// styleTable is ordered; the first matching style becomes the primary genre.
var styleTable = []styleEntry{
	{name: "smooth", keywords: []string{"smooth", "mellow", "soft", "easy", "gentle", "quiet storm"}},
	{name: "bebop", keywords: []string{"bebop", "be-bop", "bop", "hard bop", "fast"}, energetic: true},
	{name: "fusion", keywords: []string{"fusion", "electric", "funk", "jazz rock"}, energetic: true},
	{name: "swing", keywords: []string{"swing", "big band", "jump", "stomp"}, energetic: true},
	{name: "latin", keywords: []string{"latin", "bossa", "samba", "mambo", "salsa", "cuban", "afro"}, energetic: true},
	{name: "contemporary", keywords: []string{"contemporary", "modern", "nu", "neo", "urban"}},
	{name: "experimental", keywords: []string{"experimental", "free", "avant", "abstract", "cosmic"}, energetic: true},
}

// moodTable is ordered; the last matching mood wins.
var moodTable = []moodEntry{
	{name: "relaxing", keywords: []string{"relax", "calm", "chill", "peaceful", "lazy", "sunday", "slow"}, energy: 0.3, valence: 0.6},
	{name: "upbeat", keywords: []string{"upbeat", "happy", "dance", "party", "club", "bright", "sunshine", "groove"}, energy: 0.8, valence: 0.8},
	{name: "melancholic", keywords: []string{"blue", "blues", "sad", "lonely", "rain", "tears", "goodbye"}, energy: 0.3, valence: 0.2},
	{name: "romantic", keywords: []string{"love", "romance", "heart", "kiss", "darling", "tender"}, energy: 0.4, valence: 0.7},
	{name: "focused", keywords: []string{"focus", "study", "concentration", "work", "thinking", "mind"}, energy: 0.5, valence: 0.5},
}

// ExtractContext classifies title against the style and mood tables.
func ExtractContext(title string) (models.StyleContext, models.MoodContext) {
	return extractStyle(title), extractMood(title)
}

func extractStyle(title string) models.StyleContext {
	style := models.StyleContext{PrimaryGenre: defaultGenre, Intensity: baseIntensity}
	for _, entry := range styleTable {
		matched := matchKeywords(title, entry.keywords)
		if len(matched) == 0 {
			continue
		}
		if len(style.SubGenres) == 0 {
			style.PrimaryGenre = entry.name
		}
		style.SubGenres = appendUnique(style.SubGenres, entry.name)
		style.Terms = appendUnique(style.Terms, matched...)
		if entry.energetic {
			style.Intensity += intensityStep
		} else {
			style.Intensity -= intensityStep
		}
	}
	style.Intensity = clamp01(style.Intensity)
	return style
}

func extractMood(title string) models.MoodContext {
	mood := models.MoodContext{Primary: neutralMood, Energy: neutralEnergy, Valence: neutralValence}
	for _, entry := range moodTable {
		matched := matchKeywords(title, entry.keywords)
		if len(matched) == 0 {
			continue
		}
		mood.Terms = appendUnique(mood.Terms, matched...)
		mood.Primary = entry.name
		mood.Energy = entry.energy
		mood.Valence = entry.valence
	}
	return mood
}

func matchKeywords(title string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if containsPhrase(title, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
