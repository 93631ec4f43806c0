// Package repositories implements SQLite persistence for generated playlists.
//
// Key Implementations:
//   - [PlaylistRepository] : playlist rows, including the remote id set after export
//   - [SongRepository] : ordered songs of a playlist with their tempo and duration
//   - [ExportRunRepository] : one row per export attempt with its match statistics
//   - [PlaylistStore] : read/update view used by the export engine
//
// Lookups of missing rows return errors wrapping [shared.ErrPlaylistNotFound] or [shared.ErrTrackNotFound].
package repositories
