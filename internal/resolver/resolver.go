// Package resolver turns a generated song description into a catalog track.
//
// Resolution runs three searches of decreasing precision and stops at the first one whose best
// candidate clears the similarity floor:
//
//  1. exact: field-qualified query, title and artist must both be near-identical
//  2. loose: cleaned artist and title as free text
//  3. contextual: cleaned title plus style/mood terms, popularity limited to 20-90
//
// Search errors never fail a resolution; they are logged and the next attempt runs.
package resolver

import (
	"context"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/matching"
	"github.com/desertthunder/tunesmith/internal/metrics"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

const (
	AttemptExact      = "exact"
	AttemptLoose      = "loose"
	AttemptContextual = "contextual"
)

const maxContextTerms = 2

var trackURIPattern = regexp.MustCompile(`^spotify:track:[A-Za-z0-9]{22}$`)

// IsValidTrackURI reports whether uri is a well-formed Spotify track URI.
func IsValidTrackURI(uri string) bool {
	return trackURIPattern.MatchString(uri)
}

// attempt is one search strategy.
type attempt struct {
	name         string
	limit        int
	popularity   *matching.PopularityRange
	requireExact bool
	query        func(song models.GeneratedSong, style models.StyleContext, mood models.MoodContext) string
}

var attempts = []attempt{
	{name: AttemptExact, limit: 20, requireExact: true, query: exactQuery},
	{name: AttemptLoose, limit: 20, query: looseQuery},
	{name: AttemptContextual, limit: 15, popularity: &matching.PopularityRange{Min: 20, Max: 90}, query: contextualQuery},
}

// Resolver searches a [services.Catalog] for generated songs.
type Resolver struct {
	catalog services.Catalog
	logger  *log.Logger
	metrics *metrics.Metrics
	floor   float64
}

// New creates a Resolver. A nil logger discards output and nil metrics are not recorded.
func New(catalog services.Catalog, logger *log.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  shared.WithLogger(logger, "component", "resolver"),
		metrics: m,
		floor:   matching.DefaultFloor,
	}
}

// Resolve returns the accepted candidate for song, or an empty result when no attempt produced one.
func (r *Resolver) Resolve(ctx context.Context, song models.GeneratedSong) models.MatchResult {
	style, mood := matching.ExtractContext(song.Title)

	for _, a := range attempts {
		query := a.query(song, style, mood)
		if query == "" {
			continue
		}

		candidates, err := r.catalog.Search(ctx, query, a.limit)
		if err != nil {
			r.logger.Warn("search attempt failed", "attempt", a.name, "title", song.Title, "error", err)
			r.metrics.RecordSearchFailure(a.name)
			continue
		}

		match, ok := matching.SelectBest(candidates, matching.MatchOptions{
			Title:        song.Title,
			Artist:       song.Artist,
			Style:        style,
			Mood:         mood,
			Popularity:   a.popularity,
			Floor:        r.floor,
			RequireExact: a.requireExact,
		})
		if !ok {
			r.logger.Debug("no candidate accepted", "attempt", a.name, "title", song.Title, "candidates", len(candidates))
			continue
		}

		if !IsValidTrackURI(match.URI) {
			r.logger.Warn("discarding malformed track uri", "attempt", a.name, "uri", match.URI)
			r.metrics.RecordUnresolved()
			return models.MatchResult{}
		}

		match.Attempt = a.name
		r.logger.Debug("resolved song", "attempt", a.name, "title", song.Title, "uri", match.URI, "score", match.Score)
		r.metrics.RecordResolution(a.name)
		return match
	}

	r.logger.Info("song not found", "title", song.Title, "artist", song.Artist)
	r.metrics.RecordUnresolved()
	return models.MatchResult{}
}

func exactQuery(song models.GeneratedSong, _ models.StyleContext, _ models.MoodContext) string {
	artist, title := stripQuotes(song.Artist), stripQuotes(song.Title)
	if artist == "" || title == "" {
		return ""
	}
	return `artist:"` + artist + `" track:"` + title + `"`
}

func looseQuery(song models.GeneratedSong, style models.StyleContext, mood models.MoodContext) string {
	return joinNonEmpty(matching.CleanQueryText(song.Artist), matching.QueryTitle(song.Title, style, mood))
}

func contextualQuery(song models.GeneratedSong, style models.StyleContext, mood models.MoodContext) string {
	title := matching.QueryTitle(song.Title, style, mood)
	if title == "" {
		return ""
	}

	terms := make([]string, 0, maxContextTerms)
	for _, term := range append(append([]string{}, style.Terms...), mood.Terms...) {
		if len(terms) == maxContextTerms {
			break
		}
		terms = append(terms, term)
	}
	return joinNonEmpty(append([]string{title}, terms...)...)
}

func stripQuotes(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
