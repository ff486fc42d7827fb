package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/focus/internal/shared"
	"golang.org/x/oauth2"
)

// Keys shared with the browser dashboard.
const (
	KeyAccessToken  = "spotifyAccessToken"
	KeyRefreshToken = "spotifyRefreshToken"
	KeyTokenExpiry  = "spotifyTokenExpiry"
)

// TokenStore persists a Spotify [oauth2.Token] in a [KVRepository].
type TokenStore struct {
	kv *KVRepository
}

// NewTokenStore creates a new [TokenStore].
func NewTokenStore(kv *KVRepository) *TokenStore {
	return &TokenStore{kv: kv}
}

// Token loads the saved token or returns [shared.ErrNotAuthenticated].
func (s *TokenStore) Token(ctx context.Context) (*oauth2.Token, error) {
	access, err := s.kv.Lookup(ctx, KeyAccessToken)
	if errors.Is(err, shared.ErrKeyNotFound) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if refresh, err := s.kv.Lookup(ctx, KeyRefreshToken); err == nil {
		tok.RefreshToken = refresh
	}
	if raw, err := s.kv.Lookup(ctx, KeyTokenExpiry); err == nil {
		if expiry, err := time.Parse(time.RFC3339, raw); err == nil {
			tok.Expiry = expiry
		}
	}
	return tok, nil
}

// Save stores tok. An empty refresh token keeps the previously saved one.
func (s *TokenStore) Save(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}
	if err := s.kv.Put(ctx, KeyAccessToken, tok.AccessToken); err != nil {
		return err
	}
	if tok.RefreshToken != "" {
		if err := s.kv.Put(ctx, KeyRefreshToken, tok.RefreshToken); err != nil {
			return err
		}
	}
	if !tok.Expiry.IsZero() {
		if err := s.kv.Put(ctx, KeyTokenExpiry, tok.Expiry.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every stored token value.
func (s *TokenStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyTokenExpiry)
}
