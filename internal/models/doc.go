// Package models defines the data types shared by the resolution, synthesis and export layers.
//
// The package contains two categories of types:
//
// 1. Engine values: ephemeral structs flowing through a single export or correction call
//   - [GeneratedSong] : an AI-generated song description without stable identifiers
//   - [StyleContext], [MoodContext] : keyword-derived classification of a title
//   - [CandidateTrack] : a catalog search hit
//   - [MatchResult], [ScoreBreakdown] : the outcome of scoring candidates for one song
//   - [ExportStats] : match-rate statistics of one export
//
// 2. Persistent records: rows of the local record store
//   - [PersistedPlaylist] : a generated playlist and its remote identifier once exported
//   - [PersistedSong] : one song of a playlist at a fixed position
//   - [ExportRun] : history of export attempts
package models
