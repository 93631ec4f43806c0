package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Platform   string        // Target platform (default: spotify)
	Export     ExportOptions // Options applied to every playlist
	Format     string        // Report format: json, csv, markdown, txt
	OutputDir  string        // Report directory (default: tunesmith_export_{epoch})
	NumWorkers int           // Concurrent exports (default: 2)
	RateLimit  float64       // Playlists started per second (default: 1)
}

func (o BulkExportOpts) withDefaults() BulkExportOpts {
	if o.Platform == "" {
		o.Platform = services.PlatformSpotify
	}
	if o.Format == "" {
		o.Format = formatter.FormatJSON
	}
	if o.OutputDir == "" {
		o.OutputDir = fmt.Sprintf("tunesmith_export_%d", time.Now().Unix())
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = 2
	}
	if o.NumWorkers > 5 {
		o.NumWorkers = 5
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 1.0
	}
	return o
}

// BulkExport exports several local playlists concurrently and writes one report per playlist plus a manifest.
//
// Each worker runs a full [PlaylistEngine.Export]; a rate limiter spaces out playlist starts so searches from
// different playlists do not pile up on the catalog. Partial failures are recorded in the manifest.
func (e *PlaylistEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*formatter.BulkExportResult, error) {
	opts = opts.withDefaults()
	if !formatter.IsSupportedFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unsupported report format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &formatter.BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(ids))
	results := make(chan formatter.PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	for i, id := range ids {
		e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), id))
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, res.MatchRate))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker exports playlists from the jobs channel until it is drained or the context ends.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan string,
	results chan<- formatter.PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for id := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- formatter.PlaylistExportResult{
				PlaylistID:   id,
				PlaylistName: id,
				Error:        fmt.Errorf("export cancelled: %w", err),
			}
			continue
		}
		results <- e.exportSinglePlaylist(ctx, id, opts)
	}
}

// exportSinglePlaylist exports one playlist and writes its report.
func (e *PlaylistEngine) exportSinglePlaylist(ctx context.Context, id string, opts BulkExportOpts) formatter.PlaylistExportResult {
	res := formatter.PlaylistExportResult{PlaylistID: id, PlaylistName: id, Files: []string{}}

	exported, err := e.Export(ctx, id, opts.Platform, opts.Export, nil)
	if exported == nil {
		res.Error = err
		return res
	}

	res.PlaylistName = exported.PlaylistName
	res.RemoteID = exported.PlatformID
	res.URL = exported.URL
	res.MatchRate = exported.Stats.MatchRate
	res.Success = exported.Success && err == nil
	switch {
	case err != nil:
		res.Error = err
	case exported.Error != nil:
		res.Error = exported.Error
	}

	path, werr := formatter.WriteExportReport(exported.Report(err), opts.Format, opts.OutputDir)
	if werr != nil {
		e.logger.Warn("failed to write export report", "playlist", id, "error", werr)
		return res
	}
	res.Files = append(res.Files, path)
	return res
}
