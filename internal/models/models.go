// package models defines the data model for the playlist resolution engine
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// GeneratedSong is a song description produced by the language model. Zero values mean "missing".
type GeneratedSong struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album,omitempty"`
	Year     int     `json:"year,omitempty"`
	BPM      float64 `json:"bpm,omitempty"`
	Duration int     `json:"duration,omitempty"` // seconds
	Genre    string  `json:"genre,omitempty"`
}

// HasValidBPM reports whether the BPM is a usable positive number.
func (s GeneratedSong) HasValidBPM() bool {
	return s.BPM > 0 && !math.IsNaN(s.BPM) && !math.IsInf(s.BPM, 0)
}

// HasValidDuration reports whether a positive duration was provided.
func (s GeneratedSong) HasValidDuration() bool {
	return s.Duration > 0
}

// StyleContext classifies a title into sub-genre terms. Sets are kept as ordered, de-duplicated slices.
type StyleContext struct {
	PrimaryGenre string
	SubGenres    []string
	Terms        []string
	Intensity    float64
}

// MoodContext classifies a title into an emotional tone.
type MoodContext struct {
	Primary string
	Terms   []string
	Energy  float64
	Valence float64
}

// CandidateTrack is a track returned by catalog search.
type CandidateTrack struct {
	ID         string
	URI        string
	Name       string
	Artists    []string
	Album      string
	Popularity int // 0-100, -1 when unknown
	DurationMS int
}

// ScoreBreakdown holds the individual signals of a composite score.
type ScoreBreakdown struct {
	Title   float64 `json:"title"`
	Artist  float64 `json:"artist"`
	Remix   float64 `json:"remix"`
	Context float64 `json:"context"`
}

// MatchResult is the accepted candidate for one song. URI is empty when nothing was accepted.
type MatchResult struct {
	URI       string          `json:"uri,omitempty"`
	Name      string          `json:"name,omitempty"`
	Artists   []string        `json:"artists,omitempty"`
	Score     float64         `json:"score"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
	Attempt   string          `json:"attempt,omitempty"`
}

// Found reports whether a candidate was accepted.
func (m MatchResult) Found() bool {
	return m.URI != ""
}

// ExportStats are computed once per export and never modified afterwards.
type ExportStats struct {
	TotalSongs   int     `json:"totalSongs"`
	MatchedSongs int     `json:"matchedSongs"`
	MatchRate    float64 `json:"matchRate"`
}

// NewExportStats builds stats with MatchRate = matched/total*100, clamped to [0,100].
func NewExportStats(total, matched int) ExportStats {
	if total < 0 {
		total = 0
	}
	matched = max(0, min(matched, total))

	stats := ExportStats{TotalSongs: total, MatchedSongs: matched}
	if total > 0 {
		stats.MatchRate = float64(matched) / float64(total) * 100
	}
	return stats
}

// RemotePlaylist identifies a playlist created on the streaming platform.
type RemotePlaylist struct {
	ID  string
	URL string
}

// PersistedPlaylist is a generated playlist stored locally.
type PersistedPlaylist struct {
	ID          string
	Name        string
	Description string
	Mood        string
	Platform    string
	RemoteID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPersistedPlaylist creates a playlist record with timestamps set to now.
func NewPersistedPlaylist(name, description, mood string) *PersistedPlaylist {
	now := time.Now().UTC()
	return &PersistedPlaylist{
		Name:        name,
		Description: description,
		Mood:        mood,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the playlist has a name.
func (p *PersistedPlaylist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}

// PersistedSong is a song row belonging to a playlist.
type PersistedSong struct {
	ID         string
	PlaylistID string
	Position   int
	Song       GeneratedSong
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the song has the fields required to search for it.
func (s *PersistedSong) Validate() error {
	if s.PlaylistID == "" {
		return fmt.Errorf("song playlist id is required")
	}
	if strings.TrimSpace(s.Song.Title) == "" {
		return fmt.Errorf("song title is required")
	}
	if strings.TrimSpace(s.Song.Artist) == "" {
		return fmt.Errorf("song artist is required")
	}
	if s.Position < 0 {
		return fmt.Errorf("song position must not be negative")
	}
	return nil
}

// ExportRun records one export attempt.
type ExportRun struct {
	ID           string
	PlaylistID   string
	Platform     string
	RemoteID     string
	Success      bool
	Stats        ExportStats
	ErrorMessage string
	CreatedAt    time.Time
}
