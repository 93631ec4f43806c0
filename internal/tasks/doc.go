// Package tasks exports locally stored playlists to streaming catalogs with real-time progress reporting.
//
// # Core Operations
//
//  1. [PlaylistEngine.Export] : Push one playlist to a catalog
//     - Loads the playlist and its songs from the [PlaylistStore]
//     - Creates the remote playlist with a sanitized description
//     - Resolves songs in batches of 50, concurrently within a batch
//     - Appends the accepted tracks with one request per batch, in playlist order
//     - Reports a low match rate through [ExportResult] rather than an error
//
//  2. [PlaylistEngine.BulkExport] : Export several playlists
//     - Worker pool with a rate limiter between playlist starts
//     - Writes one report per playlist and a JSON manifest
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] interface is detected on the store and receives every export attempt.
// Recording failures are logged and never fail the export.
package tasks
