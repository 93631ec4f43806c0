package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/tunesmith/internal/shared"
	"golang.org/x/oauth2"
)

// tokenStore hands out the current access token and refreshes it with the refresh token when it
// has expired or when the API rejected it.
type tokenStore struct {
	mu        sync.Mutex
	config    *oauth2.Config
	token     *oauth2.Token
	client    *http.Client // used for the token endpoint
	onRefresh func(*oauth2.Token)
}

func newTokenStore(config *oauth2.Config, token *oauth2.Token, client *http.Client, onRefresh func(*oauth2.Token)) *tokenStore {
	return &tokenStore{config: config, token: token, client: client, onRefresh: onRefresh}
}

// Token returns a valid token, refreshing it first when it has expired.
func (s *tokenStore) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh exchanges the refresh token for a new access token after the API rejected rejected. When
// another request already replaced that token the current one is returned without a new exchange.
func (s *tokenStore) Refresh(ctx context.Context, rejected string) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.AccessToken != "" && s.token.AccessToken != rejected {
		return s.token, nil
	}
	return s.refreshLocked(ctx)
}

func (s *tokenStore) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	if s.token == nil || s.token.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	if s.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	}

	// A token without an access token is never valid, so the source always refreshes.
	stale := &oauth2.Token{RefreshToken: s.token.RefreshToken}
	fresh, err := s.config.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.token.RefreshToken
	}

	s.token = fresh
	if s.onRefresh != nil {
		s.onRefresh(fresh)
	}
	return fresh, nil
}
