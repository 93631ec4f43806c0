// package formatter writes export reports in various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/gosimple/slug"
)

// Supported report formats
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatText     = "txt"
)

// ReportTrack is one row of an export report.
type ReportTrack struct {
	Position       int      `json:"position"`
	Title          string   `json:"title"`
	Artist         string   `json:"artist"`
	BPM            float64  `json:"bpm,omitempty"`
	Duration       int      `json:"duration,omitempty"`
	Matched        bool     `json:"matched"`
	URI            string   `json:"uri,omitempty"`
	MatchedName    string   `json:"matchedName,omitempty"`
	MatchedArtists []string `json:"matchedArtists,omitempty"`
	Score          float64  `json:"score"`
	Attempt        string   `json:"attempt,omitempty"`
}

// ExportReport summarises one export and the resolution of each song.
type ExportReport struct {
	PlaylistID   string             `json:"playlistId"`
	PlaylistName string             `json:"playlistName"`
	Platform     string             `json:"platform"`
	RemoteID     string             `json:"remoteId,omitempty"`
	URL          string             `json:"url,omitempty"`
	Success      bool               `json:"success"`
	Error        string             `json:"error,omitempty"`
	Stats        models.ExportStats `json:"stats"`
	Tracks       []ReportTrack      `json:"tracks"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

// IsSupportedFormat reports whether format names a report format.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatCSV, FormatMarkdown, FormatJSON, FormatText:
		return true
	default:
		return false
	}
}

// ExportToCSV converts a report to CSV with columns: Position, Title, Artist, BPM, Duration, Matched, URI, Matched Title, Matched Artists, Score, Attempt
func ExportToCSV(report *ExportReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "BPM", "Duration", "Matched", "URI", "Matched Title", "Matched Artists", "Score", "Attempt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range report.Tracks {
		record := []string{
			strconv.Itoa(track.Position + 1),
			track.Title,
			track.Artist,
			strconv.FormatFloat(track.BPM, 'f', -1, 64),
			strconv.Itoa(track.Duration),
			strconv.FormatBool(track.Matched),
			track.URI,
			track.MatchedName,
			strings.Join(track.MatchedArtists, "; "),
			strconv.FormatFloat(track.Score, 'f', 3, 64),
			track.Attempt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a report to Markdown with a summary and a matched/unmatched track list
func ExportToMarkdown(report *ExportReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", report.PlaylistName)

	status := "success"
	if !report.Success {
		status = "failed"
	}
	fmt.Fprintf(&buf, "**Status**: %s\n", status)
	fmt.Fprintf(&buf, "**Platform**: %s\n", report.Platform)
	if report.URL != "" {
		fmt.Fprintf(&buf, "**Link**: %s\n", report.URL)
	}
	fmt.Fprintf(&buf, "**Matched**: %d/%d (%.1f%%)\n", report.Stats.MatchedSongs, report.Stats.TotalSongs, report.Stats.MatchRate)
	if report.Error != "" {
		fmt.Fprintf(&buf, "**Error**: %s\n", report.Error)
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range report.Tracks {
		mark := "[ ]"
		if track.Matched {
			mark = "[x]"
		}
		line := fmt.Sprintf("%d. %s %s - %s", i+1, mark, track.Artist, track.Title)
		if track.Duration > 0 {
			line += fmt.Sprintf(" [%s]", FormatDuration(track.Duration))
		}
		if track.Matched {
			line += fmt.Sprintf(" → %s by %s (%.2f, %s)", track.MatchedName, strings.Join(track.MatchedArtists, ", "), track.Score, track.Attempt)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a report to indented JSON
func ExportToJSON(report *ExportReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// ExportToText converts a report to plain text listing unmatched songs last
func ExportToText(report *ExportReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", report.PlaylistName)
	fmt.Fprintf(&buf, "Matched: %d/%d\n\n", report.Stats.MatchedSongs, report.Stats.TotalSongs)

	var missing []ReportTrack
	for _, track := range report.Tracks {
		if !track.Matched {
			missing = append(missing, track)
			continue
		}
		fmt.Fprintf(&buf, "%d. %s - %s\n", track.Position+1, track.Artist, track.Title)
	}
	if len(missing) > 0 {
		buf.WriteString("\nNot found:\n")
		for _, track := range missing {
			fmt.Fprintf(&buf, "%d. %s - %s\n", track.Position+1, track.Artist, track.Title)
		}
	}

	return buf.Bytes(), nil
}

// FormatDuration renders seconds as m:ss
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ReportFilename builds a file name from the slugged playlist name and a short id suffix.
func ReportFilename(report *ExportReport, format string) string {
	base := slug.Make(report.PlaylistName)
	if base == "" {
		base = "playlist"
	}
	if id := report.PlaylistID; id != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		base += "-" + id
	}

	switch format {
	case FormatCSV:
		return base + "_report.csv"
	case FormatMarkdown:
		return base + ".md"
	case FormatText:
		return base + ".txt"
	default:
		return base + ".json"
	}
}

// WriteExportReport renders the report in format and writes it into dir, returning the file path.
//
// The directory is created when missing; an empty dir writes to the working directory.
func WriteExportReport(report *ExportReport, format, dir string) (string, error) {
	if !IsSupportedFormat(format) {
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = ExportToCSV(report)
	case FormatMarkdown:
		data, err = ExportToMarkdown(report)
	case FormatText:
		data, err = ExportToText(report)
	default:
		data, err = ExportToJSON(report)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	path := filepath.Join(dir, ReportFilename(report, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// PlaylistExportResult is the manifest entry for one playlist of a bulk export.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Success      bool
	RemoteID     string
	URL          string
	MatchRate    float64
	Files        []string
	Error        error
}

// BulkExportResult contains the outcome of exporting several playlists.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	Results           []PlaylistExportResult
	OutputDirectory   string
	ManifestPath      string
}

type manifestEntry struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Status       string   `json:"status"`
	RemoteID     string   `json:"remote_id,omitempty"`
	URL          string   `json:"url,omitempty"`
	MatchRate    float64  `json:"match_rate"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type manifest struct {
	Format            string          `json:"format"`
	GeneratedAt       time.Time       `json:"generated_at"`
	TotalPlaylists    int             `json:"total_playlists"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	OutputDirectory   string          `json:"output_directory"`
	Playlists         []manifestEntry `json:"playlists"`
}

// WriteBulkExportManifest writes a JSON summary of a bulk export to path.
func WriteBulkExportManifest(result *BulkExportResult, format, path string) error {
	m := manifest{
		Format:            format,
		GeneratedAt:       time.Now().UTC(),
		TotalPlaylists:    result.TotalPlaylists,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		OutputDirectory:   result.OutputDirectory,
		Playlists:         make([]manifestEntry, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		entry := manifestEntry{
			PlaylistID:   res.PlaylistID,
			PlaylistName: res.PlaylistName,
			Status:       "success",
			RemoteID:     res.RemoteID,
			URL:          res.URL,
			MatchRate:    res.MatchRate,
			Files:        res.Files,
		}
		if !res.Success {
			entry.Status = "failed"
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Playlists = append(m.Playlists, entry)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
