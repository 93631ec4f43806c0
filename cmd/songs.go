package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/synth"
	"github.com/urfave/cli/v3"
)

// songsFile is the import format: either this object or a bare array of songs.
type songsFile struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Mood        string                 `json:"mood"`
	Songs       []models.GeneratedSong `json:"songs"`
}

func parseSongsFile(data []byte) (*songsFile, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var songs []models.GeneratedSong
		if err := json.Unmarshal(data, &songs); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return &songsFile{Songs: songs}, nil
	}

	var file songsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return &file, nil
}

// SongsImport stores a generated song list as a new local playlist.
func (r *Runner) SongsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read songs file: %w", err)
	}

	file, err := parseSongsFile(data)
	if err != nil {
		return err
	}
	if name := cmd.String("name"); name != "" {
		file.Name = name
	}
	if desc := cmd.String("description"); desc != "" {
		file.Description = desc
	}
	if mood := cmd.String("mood"); mood != "" {
		file.Mood = mood
	}
	if file.Name == "" {
		return fmt.Errorf("%w: --name is required when the file has no name", shared.ErrMissingArgument)
	}
	if len(file.Songs) == 0 {
		return fmt.Errorf("%w: %s contains no songs", shared.ErrInvalidInput, path)
	}

	songs := file.Songs
	if cmd.Bool("correct") {
		songs, _ = synth.CorrectPlaylistBPM(songs, r.tempoRange(0, 0, file.Mood), nil, nil)
	}

	store, err := r.store()
	if err != nil {
		return err
	}

	playlist := models.NewPersistedPlaylist(file.Name, file.Description, file.Mood)
	if err := store.Playlists.Create(playlist); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	persisted, err := store.Songs.ReplaceAll(playlist.ID, songs)
	if err != nil {
		if delErr := store.Playlists.Delete(playlist.ID); delErr != nil {
			r.logger.Warn("failed to remove empty playlist", "id", playlist.ID, "error", delErr)
		}
		return fmt.Errorf("failed to store songs: %w", err)
	}

	r.logger.Info("imported playlist", "id", playlist.ID, "songs", len(persisted))
	r.writePlain("✓ Imported %q (%d songs)\n", playlist.Name, len(persisted))
	r.writePlain("Playlist ID: %s\n", playlist.ID)
	return nil
}

// SongsList lists local playlists, or the songs of one playlist when --playlist is set.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("playlist")
	useJSON := cmd.Bool("json")

	store, err := r.store()
	if err != nil {
		return err
	}

	if playlistID == "" {
		playlists, err := store.Playlists.List()
		if err != nil {
			return err
		}
		if useJSON {
			return r.writeJSON(playlists, true)
		}
		if len(playlists) == 0 {
			r.writePlain("No playlists. Import one with 'tunesmith songs import'.\n")
			return nil
		}
		for _, pl := range playlists {
			remote := "not exported"
			if pl.RemoteID != "" {
				remote = fmt.Sprintf("%s:%s", pl.Platform, pl.RemoteID)
			}
			r.writePlain("%s  %s (%s)\n", pl.ID, pl.Name, remote)
		}
		return nil
	}

	playlist, err := store.GetPlaylist(playlistID)
	if err != nil {
		return err
	}
	songs, err := store.ListSongs(playlist.ID)
	if err != nil {
		return err
	}
	if useJSON {
		return r.writeJSON(songs, true)
	}

	r.writePlainHeader(playlist.Name)
	for _, s := range songs {
		bpm := "-"
		if s.Song.HasValidBPM() {
			bpm = fmt.Sprintf("%.0f", s.Song.BPM)
		}
		r.writePlain("%3d. %s - %s [%s bpm]\n", s.Position+1, s.Song.Artist, s.Song.Title, bpm)
	}
	return nil
}

// SongsCorrect repairs tempo and duration of a stored playlist and optionally caps songs per artist.
func (r *Runner) SongsCorrect(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("playlist")

	store, err := r.store()
	if err != nil {
		return err
	}
	playlist, err := store.GetPlaylist(playlistID)
	if err != nil {
		return err
	}
	persisted, err := store.ListSongs(playlist.ID)
	if err != nil {
		return err
	}

	mood := cmd.String("mood")
	if mood == "" {
		mood = playlist.Mood
	}
	bpmRange := r.tempoRange(cmd.Int("min-bpm"), cmd.Int("max-bpm"), mood)

	var diversity *synth.DiversityOptions
	if perArtist, minArtists := cmd.Int("max-per-artist"), cmd.Int("min-artists"); perArtist > 0 || minArtists > 0 {
		diversity = &synth.DiversityOptions{MaxSongsPerArtist: perArtist, MinUniqueArtists: minArtists}
	}

	var rng *rand.Rand
	if seed := cmd.Int("seed"); seed != 0 {
		rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}

	songs := make([]models.GeneratedSong, len(persisted))
	for i, s := range persisted {
		songs[i] = s.Song
	}
	corrected, result := synth.CorrectPlaylistBPM(songs, bpmRange, diversity, rng)

	if result.Removed > 0 {
		if _, err := store.Songs.ReplaceAll(playlist.ID, corrected); err != nil {
			return fmt.Errorf("failed to store corrected songs: %w", err)
		}
	} else {
		for i := range persisted {
			persisted[i].Song = corrected[i]
		}
		if err := store.Songs.UpdateTempo(persisted); err != nil {
			return fmt.Errorf("failed to store corrected songs: %w", err)
		}
	}

	r.logger.Info("corrected playlist", "id", playlist.ID, "range", fmt.Sprintf("%d-%d", bpmRange.Min, bpmRange.Max), "removed", result.Removed)
	r.writePlain("✓ Corrected %d songs (%d-%d bpm)\n", len(corrected), bpmRange.Min, bpmRange.Max)
	if result.Removed > 0 {
		r.writePlain("Removed %d songs over the per-artist limit\n", result.Removed)
	}
	if result.Warning != "" {
		r.writePlain("⚠ %s\n", result.Warning)
	}
	return nil
}

// tempoRange starts from the mood band, else the configured band, else the default one, and
// overrides whichever bounds were given explicitly.
func (r *Runner) tempoRange(minBPM, maxBPM int, mood string) synth.BPMRange {
	band := synth.DefaultRange
	switch {
	case mood != "":
		band = synth.RangeForMood(mood)
	case r.config.Synth.MinBPM > 0 && r.config.Synth.MaxBPM > 0:
		band = synth.BPMRange{Min: r.config.Synth.MinBPM, Max: r.config.Synth.MaxBPM}
	}

	if minBPM > 0 {
		band.Min = minBPM
	}
	if maxBPM > 0 {
		band.Max = maxBPM
	}
	return band.Normalize()
}
