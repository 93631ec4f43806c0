// package tasks implements playlist export to streaming catalogs.
//
// The core abstraction is PlaylistEngine, which resolves generated songs against a catalog and builds the remote playlist.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arunsworld/nursery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/metrics"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/resolver"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

const (
	DefaultBatchSize        = 50
	DefaultMinMatchRate     = 50.0
	DefaultDescriptionLimit = 300
)

// PlaylistStore is the record store the engine reads playlists from.
type PlaylistStore interface {
	GetPlaylist(id string) (*models.PersistedPlaylist, error)
	ListSongs(playlistID string) ([]models.PersistedSong, error)
	UpdateRemoteID(id, platform, remoteID string) error
}

// RunRecorder is an optional extension of [PlaylistStore] that keeps a history of export attempts.
type RunRecorder interface {
	RecordExportRun(run *models.ExportRun) error
}

// TrackResolver finds the catalog track for a generated song.
type TrackResolver interface {
	Resolve(ctx context.Context, song models.GeneratedSong) models.MatchResult
}

// ExportOptions controls a single export. Zero numeric values fall back to the package defaults.
type ExportOptions struct {
	Public             bool
	IncludeDescription bool
	Description        string // Overrides the stored description when IncludeDescription is set
	BatchSize          int
	MinMatchRate       float64
	DescriptionLimit   int
}

// ExportOptionsFromConfig builds options from the [export] config section.
func ExportOptionsFromConfig(cfg shared.ExportConfig) ExportOptions {
	return ExportOptions{
		IncludeDescription: true,
		BatchSize:          cfg.BatchSize,
		MinMatchRate:       cfg.MinMatchRate,
		DescriptionLimit:   cfg.DescriptionLimit,
	}
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MinMatchRate <= 0 {
		o.MinMatchRate = DefaultMinMatchRate
	}
	if o.DescriptionLimit <= 0 || o.DescriptionLimit > DefaultDescriptionLimit {
		o.DescriptionLimit = DefaultDescriptionLimit
	}
	return o
}

// TrackOutcome is the resolution result for one song, in playlist order.
type TrackOutcome struct {
	Position int
	Song     models.GeneratedSong
	Match    models.MatchResult
}

// ExportResult contains the outcome of an export.
//
// A low match rate is reported through Success and Error rather than a returned Go error.
type ExportResult struct {
	PlaylistID   string
	PlaylistName string
	Platform     string
	Success      bool
	PlatformID   string // Remote playlist ID
	URL          string
	Stats        models.ExportStats
	Tracks       []TrackOutcome
	Error        error
}

// PlaylistEngine exports locally stored playlists to streaming catalogs.
type PlaylistEngine struct {
	store     PlaylistStore
	catalogs  map[string]services.Catalog
	resolvers map[string]TrackResolver
	logger    *log.Logger
	metrics   *metrics.Metrics
}

// NewPlaylistEngine creates a new PlaylistEngine exporting to the Spotify catalog.
//
// A nil logger discards output and nil metrics are ignored.
func NewPlaylistEngine(store PlaylistStore, spotify services.Catalog, logger *log.Logger, m *metrics.Metrics) *PlaylistEngine {
	logger = shared.WithLogger(logger, "component", "export")
	e := &PlaylistEngine{
		store:     store,
		catalogs:  map[string]services.Catalog{},
		resolvers: map[string]TrackResolver{},
		logger:    logger,
		metrics:   m,
	}
	if spotify != nil {
		e.catalogs[services.PlatformSpotify] = spotify
		e.resolvers[services.PlatformSpotify] = resolver.New(spotify, logger, m)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export pushes a local playlist to the given platform.
//
// Songs are resolved in sequential batches; the songs of one batch are resolved concurrently and the accepted
// URIs are appended with one AddTracks call per batch, in playlist order. A match rate under the minimum marks
// the result unsuccessful but leaves the partially filled remote playlist in place.
func (e *PlaylistEngine) Export(ctx context.Context, playlistID, platform string, opts ExportOptions, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if !services.IsSupportedPlatform(platform) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedPlatform, platform)
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	catalog, ok := e.catalogs[platform]
	if !ok || catalog == nil {
		return nil, fmt.Errorf("%w: %s catalog not initialized", shared.ErrServiceUnavailable, platform)
	}
	if e.store == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}
	opts = opts.withDefaults()
	logger := e.logger.With("playlist", playlistID, "platform", platform)

	playlist, err := e.store.GetPlaylist(playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}
	persisted, err := e.store.ListSongs(playlist.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}
	if len(persisted) == 0 {
		return nil, fmt.Errorf("%w: playlist %s has no songs", shared.ErrInvalidInput, playlist.ID)
	}
	e.sendProgress(progress, loadPlaylistUpdate(playlist, len(persisted)))

	result := &ExportResult{
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		Platform:     platform,
		Tracks:       make([]TrackOutcome, 0, len(persisted)),
	}

	description := ""
	if opts.IncludeDescription {
		description = playlist.Description
		if opts.Description != "" {
			description = opts.Description
		}
		description = SanitizeDescription(description, opts.DescriptionLimit)
	}

	e.sendProgress(progress, createPlaylistUpdate(playlist.Name, catalog.Name()))
	remote, err := catalog.CreatePlaylist(ctx, "", playlist.Name, description, opts.Public)
	if err != nil {
		err = fmt.Errorf("failed to create playlist: %w", err)
		e.finish(result, err)
		return result, err
	}
	result.PlatformID = remote.ID
	result.URL = remote.URL
	e.sendProgress(progress, createdPlaylistUpdate(remote))
	logger.Info("created remote playlist", "remote_id", remote.ID)

	matched := 0
	batches := (len(persisted) + opts.BatchSize - 1) / opts.BatchSize
	for b := range batches {
		start := b * opts.BatchSize
		end := min(start+opts.BatchSize, len(persisted))

		outcomes := e.resolveBatch(ctx, platform, persisted[start:end])

		uris := make([]string, 0, len(outcomes))
		for i, outcome := range outcomes {
			result.Tracks = append(result.Tracks, outcome)
			e.sendProgress(progress, searchTrackUpdate(start+i+1, len(persisted), outcome))
			if outcome.Match.Found() {
				uris = append(uris, outcome.Match.URI)
			}
		}
		if len(uris) == 0 {
			logger.Debug("batch produced no matches", "batch", b+1)
			continue
		}

		e.sendProgress(progress, addTracksUpdate(b+1, batches, len(uris)))
		if err := catalog.AddTracks(ctx, remote.ID, uris); err != nil {
			err = fmt.Errorf("%w: failed to add tracks (batch %d/%d): %v", shared.ErrAPIRequest, b+1, batches, err)
			result.Stats = models.NewExportStats(len(persisted), matched)
			e.finish(result, err)
			return result, err
		}
		matched += len(uris)
	}

	result.Stats = models.NewExportStats(len(persisted), matched)
	e.sendProgress(progress, completeUpdate(result.Stats))

	if result.Stats.MatchRate < opts.MinMatchRate {
		result.Error = fmt.Errorf("%w: %.1f%% of songs matched, need %.1f%%", shared.ErrLowMatchRate, result.Stats.MatchRate, opts.MinMatchRate)
		logger.Warn("export below match threshold", "matched", matched, "total", len(persisted), "rate", result.Stats.MatchRate)
		e.finish(result, result.Error)
		return result, nil
	}

	result.Success = true
	if err := e.store.UpdateRemoteID(playlist.ID, platform, remote.ID); err != nil {
		err = fmt.Errorf("export succeeded but failed to save remote id: %w", err)
		e.finish(result, err)
		return result, err
	}
	logger.Info("export complete", "matched", matched, "total", len(persisted), "rate", result.Stats.MatchRate)
	e.finish(result, nil)
	return result, nil
}

// resolveBatch resolves every song of a batch concurrently. Each job writes only its own slot.
func (e *PlaylistEngine) resolveBatch(ctx context.Context, platform string, songs []models.PersistedSong) []TrackOutcome {
	outcomes := make([]TrackOutcome, len(songs))
	r := e.resolvers[platform]

	jobs := make([]nursery.ConcurrentJob, 0, len(songs))
	for i, s := range songs {
		jobs = append(jobs, func(context.Context, chan error) {
			outcomes[i] = TrackOutcome{Position: s.Position, Song: s.Song, Match: r.Resolve(ctx, s.Song)}
		})
	}
	// Jobs never report errors; unresolved songs are skipped.
	_ = nursery.RunConcurrently(jobs...)
	return outcomes
}

// finish records metrics and the run history for a completed or aborted export.
func (e *PlaylistEngine) finish(result *ExportResult, err error) {
	outcome := "failed"
	switch {
	case result.Success:
		outcome = "success"
	case errors.Is(err, shared.ErrLowMatchRate):
		outcome = "low_match_rate"
	}
	e.metrics.RecordExport(outcome)
	if result.Stats.TotalSongs > 0 {
		e.metrics.ObserveMatchRate(result.Stats.MatchRate)
	}

	recorder, ok := e.store.(RunRecorder)
	if !ok {
		return
	}
	run := &models.ExportRun{
		PlaylistID: result.PlaylistID,
		Platform:   result.Platform,
		RemoteID:   result.PlatformID,
		Success:    result.Success,
		Stats:      result.Stats,
	}
	if err != nil {
		run.ErrorMessage = err.Error()
	}
	if recErr := recorder.RecordExportRun(run); recErr != nil {
		e.logger.Warn("failed to record export run", "playlist", result.PlaylistID, "error", recErr)
	}
}

// SanitizeDescription keeps printable ASCII (0x20-0x7E), turns other whitespace into spaces and truncates to limit characters.
func SanitizeDescription(description string, limit int) string {
	var b strings.Builder
	for _, r := range description {
		switch {
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		}
	}
	out := strings.TrimSpace(b.String())
	if limit > 0 && len(out) > limit {
		out = strings.TrimSpace(out[:limit])
	}
	return out
}
