// Package services defines the [Catalog] interface for streaming platforms and implements it for Spotify.
//
// # Catalog Interface
//
// The export engine only needs four operations: free-text track search, playlist creation, appending
// tracks and identifying the current user. Everything platform specific stays behind [Catalog].
//
// # Spotify Implementation
//
// [SpotifyService] wraps the github.com/zmb3/spotify/v2 client. Its HTTP client is built from:
//   - [tokenStore]: an oauth2 refresh-token source that can be forced to refresh after a 401
//   - [retryTransport]: rate limiting, bearer auth, exponential backoff for network errors, 429 and 5xx
//
// Track searches additionally run through a circuit breaker so a failing catalog is skipped quickly
// instead of costing three timed-out attempts per song.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : client id, secret or tokens missing
//   - [shared.ErrRefreshFailed] : the refresh token was rejected
//   - [shared.ErrRateLimited] : 429 persisted through every retry
//   - [shared.ErrServiceUnavailable] : 5xx persisted or the breaker is open
//   - [shared.ErrAPIRequest] : any other failed request
package services
