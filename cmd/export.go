package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	"github.com/urfave/cli/v3"
)

// exportOptions maps command flags over the [export] config section.
func (r *Runner) exportOptions(cmd *cli.Command) tasks.ExportOptions {
	opts := tasks.ExportOptionsFromConfig(r.config.Export)
	opts.Public = cmd.Bool("public")
	opts.IncludeDescription = !cmd.Bool("no-description")
	opts.Description = cmd.String("description")
	return opts
}

// printProgress drains progress updates until the channel is closed, then signals done.
func (r *Runner) printProgress(progressCh <-chan tasks.ProgressUpdate, wg *sync.WaitGroup) {
	defer wg.Done()
	for update := range progressCh {
		switch update.Phase {
		case tasks.LoadPlaylist, tasks.CreatePlaylist:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.SearchTracks:
			r.writePlain("   %s\n", update.Message)
		case tasks.AddTracks:
			r.writePlain("📝 %s\n", update.Message)
		case tasks.Complete, tasks.ExportPlaylist:
			r.writePlain("%s\n", update.Message)
		}
	}
}

// ExportRun exports one local playlist to Spotify and writes an optional report.
func (r *Runner) ExportRun(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("playlist")
	platform := cmd.String("platform")
	reportFormat := cmd.String("report-format")

	if reportFormat != "" && !formatter.IsSupportedFormat(reportFormat) {
		return fmt.Errorf("%w: unsupported report format %q", shared.ErrInvalidArgument, reportFormat)
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	r.logger.Info("starting export", "playlist", playlistID, "platform", platform)

	progressCh := make(chan tasks.ProgressUpdate, 100)
	var wg sync.WaitGroup
	wg.Add(1)
	go r.printProgress(progressCh, &wg)

	result, err := engine.Export(ctx, playlistID, platform, r.exportOptions(cmd), progressCh)
	close(progressCh)
	wg.Wait()

	if result != nil && reportFormat != "" {
		path, werr := formatter.WriteExportReport(result.Report(err), reportFormat, cmd.String("report-dir"))
		if werr != nil {
			r.logger.Warn("failed to write report", "error", werr)
		} else {
			r.writePlain("Report: %s\n", path)
		}
	}
	if cmd.Bool("metrics") {
		defer r.writeMetrics()
	}
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Playlist: %s\n", result.PlaylistName)
	r.writePlain("Matched: %d/%d (%.1f%%)\n", result.Stats.MatchedSongs, result.Stats.TotalSongs, result.Stats.MatchRate)
	if result.URL != "" {
		r.writePlain("Link: %s\n", result.URL)
	}

	unmatched := 0
	for _, t := range result.Tracks {
		if !t.Match.Found() {
			unmatched++
		}
	}
	if unmatched > 0 {
		r.writePlain("\nNot found (%d):\n", unmatched)
		for _, t := range result.Tracks {
			if !t.Match.Found() {
				r.writePlain("  - %s - %s\n", t.Song.Artist, t.Song.Title)
			}
		}
	}

	if !result.Success {
		return result.Error
	}
	return nil
}

// ExportAll exports every local playlist, or the ones named with --playlist, through the bulk worker pool.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("playlist")
	if len(ids) == 0 {
		store, err := r.store()
		if err != nil {
			return err
		}
		playlists, err := store.Playlists.List()
		if err != nil {
			return err
		}
		for _, pl := range playlists {
			ids = append(ids, pl.ID)
		}
	}
	if len(ids) == 0 {
		r.writePlain("No playlists to export.\n")
		return nil
	}

	progressCh := make(chan tasks.ProgressUpdate, 2*len(ids))
	var wg sync.WaitGroup
	wg.Add(1)
	go r.printProgress(progressCh, &wg)

	result, err := engine.BulkExport(ctx, progressCh, ids, tasks.BulkExportOpts{
		Platform:   cmd.String("platform"),
		Export:     r.exportOptions(cmd),
		Format:     cmd.String("report-format"),
		OutputDir:  cmd.String("report-dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progressCh)
	wg.Wait()

	if cmd.Bool("metrics") {
		defer r.writeMetrics()
	}
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Bulk Export Complete")
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	return nil
}

// ExportHistory lists the recorded export attempts of a playlist, newest first.
func (r *Runner) ExportHistory(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("playlist")

	store, err := r.store()
	if err != nil {
		return err
	}
	if _, err := store.GetPlaylist(playlistID); err != nil {
		return err
	}
	runs, err := store.Runs.ListByPlaylist(playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}
	if len(runs) == 0 {
		r.writePlain("No exports recorded for %s\n", playlistID)
		return nil
	}
	for _, run := range runs {
		status := "✓"
		if !run.Success {
			status = "✗"
		}
		line := fmt.Sprintf("%s %s  %s  %d/%d (%.1f%%)", status, run.CreatedAt.Format("2006-01-02 15:04"), run.Platform,
			run.Stats.MatchedSongs, run.Stats.TotalSongs, run.Stats.MatchRate)
		if run.RemoteID != "" {
			line += "  " + run.RemoteID
		}
		if run.ErrorMessage != "" {
			line += "  " + run.ErrorMessage
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

func platformFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "platform",
		Usage: "Target platform",
		Value: services.PlatformSpotify,
	}
}
