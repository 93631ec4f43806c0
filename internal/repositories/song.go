package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

const songColumns = `id, playlist_id, position, title, artist, album, year, bpm, duration, genre, created_at, updated_at`

// SongRepository persists the ordered songs of a playlist.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// ReplaceAll deletes the songs of playlistID and inserts songs in order, positions starting at 0.
func (r *SongRepository) ReplaceAll(playlistID string, songs []models.GeneratedSong) ([]models.PersistedSong, error) {
	now := time.Now().UTC()
	persisted := make([]models.PersistedSong, len(songs))

	for i, song := range songs {
		persisted[i] = models.PersistedSong{
			ID:         shared.GenerateID(),
			PlaylistID: playlistID,
			Position:   i,
			Song:       song,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := persisted[i].Validate(); err != nil {
			return nil, fmt.Errorf("validation failed for song %d: %w", i, err)
		}
	}

	err := execInTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM songs WHERE playlist_id = ?`, playlistID); err != nil {
			return fmt.Errorf("failed to clear songs: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO songs (` + songColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range persisted {
			_, err := stmt.Exec(
				s.ID,
				s.PlaylistID,
				s.Position,
				s.Song.Title,
				s.Song.Artist,
				s.Song.Album,
				s.Song.Year,
				s.Song.BPM,
				s.Song.Duration,
				s.Song.Genre,
				s.CreatedAt,
				s.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert song %q: %w", s.Song.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return persisted, nil
}

// Get retrieves a song by ID
func (r *SongRepository) Get(id string) (*models.PersistedSong, error) {
	song, err := scanSong(r.db.QueryRow(`SELECT `+songColumns+` FROM songs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return song, err
}

// ListByPlaylist retrieves the songs of a playlist ordered by position
func (r *SongRepository) ListByPlaylist(playlistID string) ([]models.PersistedSong, error) {
	rows, err := r.db.Query(`SELECT `+songColumns+` FROM songs WHERE playlist_id = ? ORDER BY position ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.PersistedSong
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// UpdateTempo stores corrected bpm and duration values in a single transaction.
func (r *SongRepository) UpdateTempo(songs []models.PersistedSong) error {
	now := time.Now().UTC()

	return execInTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE songs SET bpm = ?, duration = ?, updated_at = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare update: %w", err)
		}
		defer stmt.Close()

		for _, s := range songs {
			result, err := stmt.Exec(s.Song.BPM, s.Song.Duration, now, s.ID)
			if err != nil {
				return fmt.Errorf("failed to update song %s: %w", s.ID, err)
			}
			if err := requireAffected(result, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, s.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a song by ID
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id))
}

// scanSong scans a single row into a [models.PersistedSong]. [sql.ErrNoRows] is returned unwrapped.
func scanSong(row scanner) (*models.PersistedSong, error) {
	var s models.PersistedSong

	err := row.Scan(
		&s.ID,
		&s.PlaylistID,
		&s.Position,
		&s.Song.Title,
		&s.Song.Artist,
		&s.Song.Album,
		&s.Song.Year,
		&s.Song.BPM,
		&s.Song.Duration,
		&s.Song.Genre,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	return &s, nil
}
