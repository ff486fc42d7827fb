// Spotify Web API implementation of [Player]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/focus/internal/models"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	DefaultRedirectURI = "http://127.0.0.1:3000/callback"

	// PlaybackCacheTTL bounds how stale a cached playback state may be.
	PlaybackCacheTTL = time.Second

	playbackKey = "playback"
)

// PlaybackScopes are the scopes requested by both the relay and the CLI flow.
var PlaybackScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

// SpotifyEndpoint is the accounts service used for authorization and token exchange.
var SpotifyEndpoint = oauth2.Endpoint{
	AuthURL:  spotifyAuthURL,
	TokenURL: spotifyTokenURL,
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Product     string         `json:"product"` // premium, free, etc.
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyDevice represents a Spotify Connect device.
type SpotifyDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent *int   `json:"volume_percent"`
}

// SpotifyPlayback is the /me/player response.
type SpotifyPlayback struct {
	Device               SpotifyDevice `json:"device"`
	ProgressMS           int           `json:"progress_ms"`
	IsPlaying            bool          `json:"is_playing"`
	Item                 *SpotifyTrack `json:"item"`
	CurrentlyPlayingType string        `json:"currently_playing_type"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// SpotifyService implements the [Player] interface for Spotify API interactions.
// Uses [oauth2] for authentication and caches playback state with [cache.Cache].
type SpotifyService struct {
	config     *oauth2.Config
	source     oauth2.TokenSource
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache

	mu             sync.Mutex
	onTokenRefresh func(*oauth2.Token)
}

// NewOAuthConfig builds the Spotify OAuth2 configuration for the playback scopes.
func NewOAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       PlaybackScopes,
		Endpoint:     SpotifyEndpoint,
	}
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	return &SpotifyService{
		config:     NewOAuthConfig(clientID, clientSecret, credentials["redirect_uri"]),
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
		cache:      cache.New(PlaybackCacheTTL, time.Minute),
	}, nil
}

// Config returns the OAuth2 configuration.
func (s *SpotifyService) Config() *oauth2.Config {
	return s.config
}

// Name returns the name of the provider.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token"
// (optionally with "refresh_token") or an "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		return s.AuthenticateToken(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		})
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.AuthenticateToken(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// AuthenticateToken uses an existing token, refreshing it when it expires.
func (s *SpotifyService) AuthenticateToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = &refreshableTokenSource{
		source:   s.config.TokenSource(context.WithoutCancel(ctx), token),
		callback: s.tokenRefreshed,
		last:     token.AccessToken,
	}
	s.cache.Flush()
	return nil
}

// SetTokenRefreshCallback registers fn to receive every newly issued token.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = fn
}

func (s *SpotifyService) tokenRefreshed(token *oauth2.Token) {
	s.mu.Lock()
	fn := s.onTokenRefresh
	s.mu.Unlock()
	if fn != nil {
		fn(token)
	}
}

// Token returns the current token, refreshing it if needed.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	source := s.source
	s.mu.Unlock()
	if source == nil {
		return nil, shared.ErrNotAuthenticated
	}
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}
	return token, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API and returns the status code.
//
// A 204 response leaves result untouched.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) (int, error) {
	token, err := s.Token()
	if err != nil {
		return 0, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return resp.StatusCode, err
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr spotifyError
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNoActiveDevice, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry after %s", shared.ErrRateLimited, resp.Header.Get("Retry-After"))
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*models.Profile, error) {
	var user SpotifyUser
	if _, err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Product:     user.Product,
	}, nil
}

// CurrentPlayback retrieves the playback state. A 204 means nothing is playing and yields nil.
func (s *SpotifyService) CurrentPlayback(ctx context.Context) (*models.PlaybackState, error) {
	if v, ok := s.cache.Get(playbackKey); ok {
		return copyState(v.(*models.PlaybackState)), nil
	}

	var playback SpotifyPlayback
	status, err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, &playback)
	if err != nil {
		return nil, err
	}

	var state *models.PlaybackState
	if status != http.StatusNoContent {
		state = playback.toModel(time.Now())
	}
	s.cache.Set(playbackKey, state, cache.DefaultExpiration)
	return copyState(state), nil
}

// Play resumes playback on the active device.
func (s *SpotifyService) Play(ctx context.Context) error {
	return s.command(ctx, http.MethodPut, "/me/player/play", nil)
}

// Pause pauses playback on the active device.
func (s *SpotifyService) Pause(ctx context.Context) error {
	return s.command(ctx, http.MethodPut, "/me/player/pause", nil)
}

// Next skips to the next track.
func (s *SpotifyService) Next(ctx context.Context) error {
	return s.command(ctx, http.MethodPost, "/me/player/next", nil)
}

// Previous skips to the previous track.
func (s *SpotifyService) Previous(ctx context.Context) error {
	return s.command(ctx, http.MethodPost, "/me/player/previous", nil)
}

// Devices lists the user's available Spotify Connect devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var response struct {
		Devices []SpotifyDevice `json:"devices"`
	}
	if _, err := s.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(response.Devices))
	for _, d := range response.Devices {
		devices = append(devices, d.toModel())
	}
	return devices, nil
}

// Transfer moves playback to deviceID, starting it when play is true.
func (s *SpotifyService) Transfer(ctx context.Context, deviceID string, play bool) error {
	if deviceID == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}
	body := map[string]any{"device_ids": []string{deviceID}, "play": play}
	return s.command(ctx, http.MethodPut, "/me/player", body)
}

func (s *SpotifyService) command(ctx context.Context, method, endpoint string, body any) error {
	defer s.cache.Delete(playbackKey)
	_, err := s.doRequest(ctx, method, endpoint, body, nil)
	return err
}

func (p SpotifyPlayback) toModel(fetchedAt time.Time) *models.PlaybackState {
	state := &models.PlaybackState{
		IsPlaying:  p.IsPlaying,
		ProgressMS: p.ProgressMS,
		Device:     p.Device.toModel(),
		FetchedAt:  fetchedAt,
	}
	if p.Item != nil {
		track := p.Item.toModel()
		state.Track = &track
	}
	return state
}

func (t SpotifyTrack) toModel() models.Track {
	track := models.Track{
		ID:         t.ID,
		Title:      t.Name,
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	return track
}

func (d SpotifyDevice) toModel() models.Device {
	device := models.Device{ID: d.ID, Name: d.Name, Type: d.Type, IsActive: d.IsActive}
	if d.VolumePercent != nil {
		device.Volume = *d.VolumePercent
	}
	return device
}

func copyState(s *models.PlaybackState) *models.PlaybackState {
	if s == nil {
		return nil
	}
	c := *s
	if s.Track != nil {
		track := *s.Track
		track.Artists = append([]string(nil), s.Track.Artists...)
		c.Track = &track
	}
	return &c
}
