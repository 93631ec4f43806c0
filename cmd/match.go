package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunesmith/internal/matching"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/resolver"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// MatchSearch resolves a single song against the catalog and prints the accepted track with its score breakdown.
func (r *Runner) MatchSearch(ctx context.Context, cmd *cli.Command) error {
	song := models.GeneratedSong{
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
	}
	if strings.TrimSpace(song.Title) == "" {
		return fmt.Errorf("%w: --title", shared.ErrMissingArgument)
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: set credentials.spotify in %s", shared.ErrNotAuthenticated, r.configName())
	}
	if cmd.Bool("metrics") {
		defer r.writeMetrics()
	}

	match := resolver.New(r.catalog, r.logger, r.metrics).Resolve(ctx, song)
	if cmd.Bool("json") {
		return r.writeJSON(match, true)
	}

	style, mood := matching.ExtractContext(song.Title)
	r.writePlain("Style: %s %v (intensity %.1f)\n", style.PrimaryGenre, style.SubGenres, style.Intensity)
	r.writePlain("Mood: %s\n", mood.Primary)

	if !match.Found() {
		r.writePlainln("✗ No acceptable match for %s - %s", song.Artist, song.Title)
		return nil
	}

	r.writePlainln("✓ %s - %s", strings.Join(match.Artists, ", "), match.Name)
	r.writePlain("URI: %s\n", match.URI)
	r.writePlain("Attempt: %s\n", match.Attempt)
	r.writePlain("Score: %.3f\n", match.Score)
	if b := match.Breakdown; b != nil {
		r.writePlain("  title %.2f  artist %.2f  remix %.2f  context %.2f\n", b.Title, b.Artist, b.Remix, b.Context)
	}
	return nil
}
