package repositories

import (
	"database/sql"

	"github.com/desertthunder/tunesmith/internal/models"
)

// PlaylistStore is the record store consumed by the export engine.
type PlaylistStore struct {
	Playlists *PlaylistRepository
	Songs     *SongRepository
	Runs      *ExportRunRepository
}

// NewPlaylistStore wires the repositories over one database connection.
func NewPlaylistStore(db *sql.DB) *PlaylistStore {
	return &PlaylistStore{
		Playlists: NewPlaylistRepository(db),
		Songs:     NewSongRepository(db),
		Runs:      NewExportRunRepository(db),
	}
}

func (s *PlaylistStore) GetPlaylist(id string) (*models.PersistedPlaylist, error) {
	return s.Playlists.Get(id)
}

func (s *PlaylistStore) ListSongs(playlistID string) ([]models.PersistedSong, error) {
	return s.Songs.ListByPlaylist(playlistID)
}

func (s *PlaylistStore) UpdateRemoteID(id, platform, remoteID string) error {
	return s.Playlists.UpdateRemoteID(id, platform, remoteID)
}

// RecordExportRun stores the outcome of an export attempt.
func (s *PlaylistStore) RecordExportRun(run *models.ExportRun) error {
	return s.Runs.Create(run)
}
