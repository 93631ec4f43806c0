package tasks

import (
	"time"

	"github.com/desertthunder/tunesmith/internal/formatter"
)

// Report converts the result into a [formatter.ExportReport]. err is the error returned alongside the result, if any.
func (r *ExportResult) Report(err error) *formatter.ExportReport {
	report := &formatter.ExportReport{
		PlaylistID:   r.PlaylistID,
		PlaylistName: r.PlaylistName,
		Platform:     r.Platform,
		RemoteID:     r.PlatformID,
		URL:          r.URL,
		Success:      r.Success && err == nil,
		Stats:        r.Stats,
		Tracks:       make([]formatter.ReportTrack, 0, len(r.Tracks)),
		GeneratedAt:  time.Now().UTC(),
	}

	switch {
	case err != nil:
		report.Error = err.Error()
	case r.Error != nil:
		report.Error = r.Error.Error()
	}

	for _, t := range r.Tracks {
		report.Tracks = append(report.Tracks, formatter.ReportTrack{
			Position:       t.Position,
			Title:          t.Song.Title,
			Artist:         t.Song.Artist,
			BPM:            t.Song.BPM,
			Duration:       t.Song.Duration,
			Matched:        t.Match.Found(),
			URI:            t.Match.URI,
			MatchedName:    t.Match.Name,
			MatchedArtists: t.Match.Artists,
			Score:          t.Match.Score,
			Attempt:        t.Match.Attempt,
		})
	}
	return report
}
