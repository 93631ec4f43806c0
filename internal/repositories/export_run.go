package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// ExportRunRepository persists the history of export attempts.
type ExportRunRepository struct {
	db *sql.DB
}

// NewExportRunRepository creates a new ExportRunRepository with the given database connection
func NewExportRunRepository(db *sql.DB) *ExportRunRepository {
	return &ExportRunRepository{db: db}
}

// Create inserts an export run with a generated ID
func (r *ExportRunRepository) Create(run *models.ExportRun) error {
	if run.PlaylistID == "" {
		return fmt.Errorf("%w: export run playlist id is required", shared.ErrInvalidInput)
	}

	run.ID = shared.GenerateID()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO export_runs (id, playlist_id, platform, remote_id, success, total_songs, matched_songs, match_rate, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.PlaylistID,
		run.Platform,
		run.RemoteID,
		run.Success,
		run.Stats.TotalSongs,
		run.Stats.MatchedSongs,
		run.Stats.MatchRate,
		run.ErrorMessage,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert export run: %w", err)
	}

	return nil
}

// ListByPlaylist retrieves the export runs of a playlist, newest first
func (r *ExportRunRepository) ListByPlaylist(playlistID string) ([]models.ExportRun, error) {
	query := `
		SELECT id, playlist_id, platform, remote_id, success, total_songs, matched_songs, match_rate, error_message, created_at
		FROM export_runs
		WHERE playlist_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ExportRun
	for rows.Next() {
		var run models.ExportRun
		err := rows.Scan(
			&run.ID,
			&run.PlaylistID,
			&run.Platform,
			&run.RemoteID,
			&run.Success,
			&run.Stats.TotalSongs,
			&run.Stats.MatchedSongs,
			&run.Stats.MatchRate,
			&run.ErrorMessage,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}
