package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func createPlaylist(t *testing.T, repo *PlaylistRepository, name string) *models.PersistedPlaylist {
	t.Helper()

	playlist := models.NewPersistedPlaylist(name, "late night jazz", "chill")
	if err := repo.Create(playlist); err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	return playlist
}

func sampleSongs() []models.GeneratedSong {
	return []models.GeneratedSong{
		{Title: "Take Five", Artist: "Dave Brubeck", Album: "Time Out", Year: 1959, BPM: 172, Duration: 324, Genre: "jazz"},
		{Title: "So What", Artist: "Miles Davis", Year: 1959},
		{Title: "Blue in Green", Artist: "Miles Davis", BPM: 60.5},
	}
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := createPlaylist(t, repo, "Late Night")

		if playlist.ID == "" {
			t.Error("playlist ID should be set after creation")
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))

		if err := repo.Create(models.NewPersistedPlaylist("  ", "", "")); err == nil {
			t.Error("expected validation error for empty name")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := createPlaylist(t, repo, "Late Night")

		retrieved, err := repo.Get(playlist.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if retrieved.Name != "Late Night" || retrieved.Mood != "chill" || retrieved.Description != "late night jazz" {
			t.Errorf("unexpected playlist %+v", retrieved)
		}
		if retrieved.CreatedAt.IsZero() {
			t.Error("expected created_at to round-trip")
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))

		_, err := repo.Get("missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := createPlaylist(t, repo, "Late Night")

		playlist.Name = "Early Morning"
		playlist.Mood = "focus"
		if err := repo.Update(playlist); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		retrieved, _ := repo.Get(playlist.ID)
		if retrieved.Name != "Early Morning" || retrieved.Mood != "focus" {
			t.Errorf("update not persisted: %+v", retrieved)
		}

		missing := models.NewPersistedPlaylist("Ghost", "", "")
		missing.ID = "missing"
		if err := repo.Update(missing); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("UpdateRemoteID", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := createPlaylist(t, repo, "Late Night")

		if err := repo.UpdateRemoteID(playlist.ID, "spotify", "remote-1"); err != nil {
			t.Fatalf("failed to update remote id: %v", err)
		}

		retrieved, _ := repo.Get(playlist.ID)
		if retrieved.Platform != "spotify" || retrieved.RemoteID != "remote-1" {
			t.Errorf("remote id not persisted: %+v", retrieved)
		}

		if err := repo.UpdateRemoteID("missing", "spotify", "x"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("List And Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		first := createPlaylist(t, repo, "First")
		createPlaylist(t, repo, "Second")

		playlists, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}

		songs := NewSongRepository(db)
		if _, err := songs.ReplaceAll(first.ID, sampleSongs()); err != nil {
			t.Fatalf("failed to insert songs: %v", err)
		}

		if err := repo.Delete(first.ID); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if err := repo.Delete(first.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound on second delete, got %v", err)
		}

		remaining, _ := songs.ListByPlaylist(first.ID)
		if len(remaining) != 0 {
			t.Errorf("expected songs to cascade, got %d", len(remaining))
		}
	})
}

func TestSongRepository(t *testing.T) {
	t.Run("ReplaceAll And List", func(t *testing.T) {
		db := setupTestDB(t)
		playlist := createPlaylist(t, NewPlaylistRepository(db), "Late Night")
		repo := NewSongRepository(db)

		persisted, err := repo.ReplaceAll(playlist.ID, sampleSongs())
		if err != nil {
			t.Fatalf("failed to insert songs: %v", err)
		}
		if len(persisted) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(persisted))
		}

		songs, err := repo.ListByPlaylist(playlist.ID)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}

		for i, s := range songs {
			if s.Position != i {
				t.Errorf("expected position %d, got %d", i, s.Position)
			}
		}
		if songs[0].Song != sampleSongs()[0] {
			t.Errorf("song fields did not round-trip: %+v", songs[0].Song)
		}
		if songs[2].Song.BPM != 60.5 {
			t.Errorf("expected fractional bpm to round-trip, got %v", songs[2].Song.BPM)
		}

		if _, err := repo.ReplaceAll(playlist.ID, sampleSongs()[:1]); err != nil {
			t.Fatalf("failed to replace songs: %v", err)
		}
		songs, _ = repo.ListByPlaylist(playlist.ID)
		if len(songs) != 1 {
			t.Errorf("expected replace to leave 1 song, got %d", len(songs))
		}
	})

	t.Run("ReplaceAll Validation", func(t *testing.T) {
		db := setupTestDB(t)
		playlist := createPlaylist(t, NewPlaylistRepository(db), "Late Night")
		repo := NewSongRepository(db)

		_, err := repo.ReplaceAll(playlist.ID, []models.GeneratedSong{{Title: "No Artist"}})
		if err == nil {
			t.Error("expected validation error for missing artist")
		}
	})

	t.Run("ReplaceAll Unknown Playlist", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))

		if _, err := repo.ReplaceAll("missing", sampleSongs()); err == nil {
			t.Error("expected foreign key violation for unknown playlist")
		}
	})

	t.Run("UpdateTempo", func(t *testing.T) {
		db := setupTestDB(t)
		playlist := createPlaylist(t, NewPlaylistRepository(db), "Late Night")
		repo := NewSongRepository(db)

		persisted, _ := repo.ReplaceAll(playlist.ID, sampleSongs())
		persisted[1].Song.BPM = 120
		persisted[1].Song.Duration = 240

		if err := repo.UpdateTempo(persisted); err != nil {
			t.Fatalf("failed to update tempo: %v", err)
		}

		got, err := repo.Get(persisted[1].ID)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if got.Song.BPM != 120 || got.Song.Duration != 240 {
			t.Errorf("tempo not persisted: %+v", got.Song)
		}

		persisted[0].ID = "missing"
		if err := repo.UpdateTempo(persisted); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		unchanged, _ := repo.Get(persisted[2].ID)
		if unchanged.Song.BPM != 60.5 {
			t.Error("failed update should roll back")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		playlist := createPlaylist(t, NewPlaylistRepository(db), "Late Night")
		repo := NewSongRepository(db)
		persisted, _ := repo.ReplaceAll(playlist.ID, sampleSongs())

		if err := repo.Delete(persisted[0].ID); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}
		if _, err := repo.Get(persisted[0].ID); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestExportRunRepository(t *testing.T) {
	db := setupTestDB(t)
	playlist := createPlaylist(t, NewPlaylistRepository(db), "Late Night")
	repo := NewExportRunRepository(db)

	failed := &models.ExportRun{
		PlaylistID:   playlist.ID,
		Platform:     "spotify",
		RemoteID:     "remote-1",
		Stats:        models.NewExportStats(10, 3),
		ErrorMessage: "match rate below threshold",
	}
	if err := repo.Create(failed); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	succeeded := &models.ExportRun{
		PlaylistID: playlist.ID,
		Platform:   "spotify",
		RemoteID:   "remote-2",
		Success:    true,
		Stats:      models.NewExportStats(10, 6),
		CreatedAt:  failed.CreatedAt.Add(1e9),
	}
	if err := repo.Create(succeeded); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	runs, err := repo.ListByPlaylist(playlist.ID)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].Success || runs[0].Stats.MatchRate != 60 {
		t.Errorf("expected newest successful run first, got %+v", runs[0])
	}
	if runs[1].Success || runs[1].Stats.MatchedSongs != 3 || runs[1].ErrorMessage == "" {
		t.Errorf("unexpected failed run %+v", runs[1])
	}

	if err := repo.Create(&models.ExportRun{}); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlaylistStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewPlaylistStore(db)
	playlist := createPlaylist(t, store.Playlists, "Late Night")
	if _, err := store.Songs.ReplaceAll(playlist.ID, sampleSongs()); err != nil {
		t.Fatalf("failed to insert songs: %v", err)
	}

	got, err := store.GetPlaylist(playlist.ID)
	if err != nil || got.Name != "Late Night" {
		t.Fatalf("unexpected playlist %+v, err %v", got, err)
	}

	songs, err := store.ListSongs(playlist.ID)
	if err != nil || len(songs) != 3 {
		t.Fatalf("expected 3 songs, got %d (err %v)", len(songs), err)
	}

	if err := store.UpdateRemoteID(playlist.ID, "spotify", "remote-9"); err != nil {
		t.Fatalf("failed to update remote id: %v", err)
	}
	if err := store.RecordExportRun(&models.ExportRun{PlaylistID: playlist.ID, Platform: "spotify", Success: true}); err != nil {
		t.Fatalf("failed to record run: %v", err)
	}

	got, _ = store.GetPlaylist(playlist.ID)
	if got.RemoteID != "remote-9" {
		t.Errorf("expected remote-9, got %s", got.RemoteID)
	}
}
