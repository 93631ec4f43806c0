// Spotify Web API implementation of [Catalog]
//
// Endpoints are reached through github.com/zmb3/spotify/v2; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/metrics"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/sony/gobreaker/v2"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	trackURIPrefix     = "spotify:track:"
	maxTracksPerAdd    = 100
	maxSearchLimit     = 50
	breakerOpenTimeout = 30 * time.Second
)

// SpotifyOptions tune the HTTP behaviour of [SpotifyService]. Zero values fall back to defaults.
type SpotifyOptions struct {
	// BaseURL overrides the Web API root (must end with "/"). Used by tests.
	BaseURL string
	// TokenURL overrides the OAuth token endpoint. Used by tests.
	TokenURL string
	// Transport is the underlying round tripper, [http.DefaultTransport] when nil.
	Transport http.RoundTripper

	RateLimit       float64 // requests per second, 0 disables pacing
	MaxRetries      int
	Backoff         time.Duration
	MaxBackoff      time.Duration
	BreakerFailures uint32

	Logger  *log.Logger
	Metrics *metrics.Metrics

	// OnTokenRefresh is called with every refreshed token so it can be persisted.
	OnTokenRefresh func(*oauth2.Token)
}

// SpotifyOptionsFromConfig maps the [shared.SearchConfig] section onto [SpotifyOptions].
func SpotifyOptionsFromConfig(cfg shared.SearchConfig) SpotifyOptions {
	return SpotifyOptions{
		RateLimit:       cfg.RateLimit,
		MaxRetries:      cfg.MaxRetries,
		Backoff:         time.Duration(cfg.BackoffMs) * time.Millisecond,
		MaxBackoff:      time.Duration(cfg.MaxBackoffMs) * time.Millisecond,
		BreakerFailures: cfg.BreakerFailures,
	}
}

// SpotifyService implements [Catalog] for the Spotify Web API.
type SpotifyService struct {
	config  *oauth2.Config
	tokens  *tokenStore
	client  *spotify.Client
	breaker *gobreaker.CircuitBreaker[[]models.CandidateTrack]
	logger  *log.Logger

	mu     sync.Mutex
	userID string
}

// NewSpotifyService creates a Spotify catalog from credentials produced by the OAuth handshake.
//
// Required keys are client_id, client_secret and at least one of access_token or refresh_token.
// Optional keys are redirect_uri, user_id and token_expiry (RFC 3339).
func NewSpotifyService(credentials map[string]string, opts SpotifyOptions) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	token := &oauth2.Token{
		AccessToken:  credentials["access_token"],
		RefreshToken: credentials["refresh_token"],
		TokenType:    "Bearer",
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing access_token and refresh_token", shared.ErrNotAuthenticated)
	}
	if raw := credentials["token_expiry"]; raw != "" {
		expiry, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: token_expiry: %v", shared.ErrInvalidCredentials, err)
		}
		token.Expiry = expiry
	}

	tokenURL := spotifyTokenURL
	if opts.TokenURL != "" {
		tokenURL = opts.TokenURL
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  credentials["redirect_uri"],
		Scopes: []string{
			"user-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: tokenURL,
		},
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	logger = logger.With("service", "spotify")

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	tokens := newTokenStore(config, token, &http.Client{Transport: base}, opts.OnTokenRefresh)

	transport := &retryTransport{
		base:       base,
		tokens:     tokens,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		maxBackoff: opts.MaxBackoff,
		logger:     logger,
		metrics:    opts.Metrics,
	}
	if transport.maxRetries <= 0 {
		transport.maxRetries = defaultMaxRetries
	}
	if transport.backoff <= 0 {
		transport.backoff = defaultBackoff
	}
	if transport.maxBackoff < transport.backoff {
		transport.maxBackoff = max(defaultMaxBackoff, transport.backoff)
	}
	if opts.RateLimit > 0 {
		transport.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	clientOpts := []spotify.ClientOption{}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}
	client := spotify.New(&http.Client{Transport: transport}, clientOpts...)

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breaker := gobreaker.NewCircuitBreaker[[]models.CandidateTrack](gobreaker.Settings{
		Name:    "spotify-search",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return !isOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &SpotifyService{
		config:  config,
		tokens:  tokens,
		client:  client,
		breaker: breaker,
		logger:  logger,
		userID:  credentials["user_id"],
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Search runs a track search. Catalog outages count towards the circuit breaker; while it is open searches
// fail immediately with [shared.ErrServiceUnavailable].
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	limit = max(1, min(limit, maxSearchLimit))

	tracks, err := s.breaker.Execute(func() ([]models.CandidateTrack, error) {
		res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
		if err != nil {
			return nil, err
		}
		if res.Tracks == nil {
			return nil, nil
		}

		candidates := make([]models.CandidateTrack, 0, len(res.Tracks.Tracks))
		for _, t := range res.Tracks.Tracks {
			candidates = append(candidates, toCandidate(t))
		}
		return candidates, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if err != nil {
		return nil, wrapAPIError("search", err)
	}
	return tracks, nil
}

// CurrentUserID returns the configured user id or asks the API for it.
func (s *SpotifyService) CurrentUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID != "" {
		return s.userID, nil
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", wrapAPIError("current user", err)
	}
	s.userID = user.ID
	return s.userID, nil
}

// CreatePlaylist creates an empty playlist. An empty ownerID resolves to the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.RemotePlaylist, error) {
	if ownerID == "" {
		id, err := s.CurrentUserID(ctx)
		if err != nil {
			return nil, err
		}
		ownerID = id
	}

	playlist, err := s.client.CreatePlaylistForUser(ctx, ownerID, name, description, public, false)
	if err != nil {
		return nil, wrapAPIError("create playlist", err)
	}

	s.logger.Info("created playlist", "id", playlist.ID, "name", name, "public", public)
	return &models.RemotePlaylist{
		ID:  string(playlist.ID),
		URL: playlist.ExternalURLs["spotify"],
	}, nil
}

// AddTracks appends tracks in chunks of at most 100, the API maximum.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	ids := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		id := strings.TrimPrefix(uri, trackURIPrefix)
		if id == "" || id == uri {
			return fmt.Errorf("%w: not a track uri %q", shared.ErrInvalidInput, uri)
		}
		ids = append(ids, spotify.ID(id))
	}

	for start := 0; start < len(ids); start += maxTracksPerAdd {
		end := min(start+maxTracksPerAdd, len(ids))
		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[start:end]...); err != nil {
			return wrapAPIError("add tracks", err)
		}
	}
	return nil
}

func toCandidate(t spotify.FullTrack) models.CandidateTrack {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	return models.CandidateTrack{
		ID:         string(t.ID),
		URI:        string(t.URI),
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		Popularity: int(t.Popularity),
		DurationMS: int(t.Duration),
	}
}

// isOutage reports whether a search error means the catalog itself is unhealthy. Client errors for a
// single query and canceled requests leave the breaker alone.
func isOutage(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, shared.ErrRateLimited), errors.Is(err, shared.ErrServiceUnavailable):
		return true
	case errors.Is(err, shared.ErrRefreshFailed), errors.Is(err, shared.ErrNoRefreshToken):
		return false
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

// wrapAPIError keeps the sentinel from the transport when there is one, and otherwise tags the error
// with [shared.ErrAPIRequest].
func wrapAPIError(op string, err error) error {
	for _, sentinel := range []error{
		shared.ErrRateLimited,
		shared.ErrServiceUnavailable,
		shared.ErrRefreshFailed,
		shared.ErrNoRefreshToken,
		shared.ErrAPIRequest,
	} {
		if errors.Is(err, sentinel) {
			return fmt.Errorf("spotify %s: %w", op, err)
		}
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			return fmt.Errorf("%w: spotify %s: %s", shared.ErrTokenExpired, op, apiErr.Message)
		}
		return fmt.Errorf("%w: spotify %s: status %d: %s", shared.ErrAPIRequest, op, apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("%w: spotify %s: %v", shared.ErrAPIRequest, op, err)
}

var _ Catalog = (*SpotifyService)(nil)
