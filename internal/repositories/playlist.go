package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

const playlistColumns = `id, name, description, mood, platform, remote_id, created_at, updated_at`

// PlaylistRepository persists [models.PersistedPlaylist] rows.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist with a generated ID
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	playlist.ID = shared.GenerateID()
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = time.Now().UTC()
	}
	if playlist.UpdatedAt.IsZero() {
		playlist.UpdatedAt = playlist.CreatedAt
	}

	query := `
		INSERT INTO playlists (` + playlistColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		playlist.ID,
		playlist.Name,
		playlist.Description,
		playlist.Mood,
		playlist.Platform,
		playlist.RemoteID,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`

	playlist, err := scanPlaylist(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return playlist, err
}

// Update modifies name, description and mood of an existing playlist
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	playlist.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE playlists
		SET name = ?, description = ?, mood = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, playlist.Name, playlist.Description, playlist.Mood, playlist.UpdatedAt, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID))
}

// UpdateRemoteID records the platform playlist created by a successful export
func (r *PlaylistRepository) UpdateRemoteID(id, platform, remoteID string) error {
	query := `
		UPDATE playlists
		SET platform = ?, remote_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, platform, remoteID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update remote id: %w", err)
	}

	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

// Delete removes a playlist and, through the foreign key, its songs and export runs
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

// List retrieves all playlists, newest first
func (r *PlaylistRepository) List() ([]*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists ORDER BY created_at DESC, name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// scanPlaylist scans a single row into a [models.PersistedPlaylist]. [sql.ErrNoRows] is returned unwrapped.
func scanPlaylist(row scanner) (*models.PersistedPlaylist, error) {
	var p models.PersistedPlaylist

	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Mood, &p.Platform, &p.RemoteID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	return &p, nil
}
