// package services defines interface Catalog for interacting with streaming platform HTTP APIs
//
// Spotify
package services

import (
	"context"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
)

// PlatformSpotify is the platform identifier stored on exported playlists.
const PlatformSpotify = "spotify"

// Catalog defines the interface for streaming platforms that can search tracks and create playlists.
type Catalog interface {
	// Search runs a free-text track search and returns at most limit candidates.
	Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error)

	// CreatePlaylist creates an empty playlist owned by ownerID.
	// An empty ownerID means the authenticated user.
	CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.RemotePlaylist, error)

	// AddTracks appends track URIs to a playlist in order.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// CurrentUserID returns the id of the authenticated user.
	CurrentUserID(ctx context.Context) (string, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// IsSupportedPlatform reports whether platform names a catalog this module can export to.
func IsSupportedPlatform(platform string) bool {
	return strings.EqualFold(strings.TrimSpace(platform), PlatformSpotify)
}
