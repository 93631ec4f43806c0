package tasks

import (
	"fmt"

	"github.com/desertthunder/tunesmith/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadPlaylist Phase = iota
	CreatePlaylist
	SearchTracks
	AddTracks
	Complete
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case LoadPlaylist:
		return "load_playlist"
	case CreatePlaylist:
		return "create_playlist"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	case Complete:
		return "complete"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func loadPlaylistUpdate(pl *models.PersistedPlaylist, songs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded playlist: %s (%d songs)", pl.Name, songs),
		Data:    pl,
	}
}

func createPlaylistUpdate(name, catalog string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q on %s...", name, catalog),
	}
}

func createdPlaylistUpdate(remote *models.RemotePlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created (ID: %s)", remote.ID),
		Data:    remote,
	}
}

func searchTrackUpdate(step, total int, outcome TrackOutcome) ProgressUpdate {
	mark := "✗"
	if outcome.Match.Found() {
		mark = "✓"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, outcome.Song.Artist, outcome.Song.Title),
		Data:    outcome,
	}
}

func addTracksUpdate(batch, batches, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    batch,
		Total:   batches,
		Message: fmt.Sprintf("Adding %d tracks (batch %d/%d)...", count, batch, batches),
	}
}

func completeUpdate(stats models.ExportStats) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Matched %d/%d songs (%.1f%%)", stats.MatchedSongs, stats.TotalSongs, stats.MatchRate),
		Data:    stats,
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, rate float64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%.1f%% matched)", step, total, name, rate),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
