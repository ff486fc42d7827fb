// Package services defines the [Player] interface for playback providers and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication. The [oauth2.Client] refreshes expired tokens
// using the refresh token, and every new token is handed to the callback registered with
// [SpotifyService.SetTokenRefreshCallback] so it can be persisted.
//
// Playback state is cached for [PlaybackCacheTTL]; control actions drop the cached entry.
//
// A 401 from the Web API, or a token that can no longer be refreshed, surfaces as
// [shared.ErrTokenExpired]. Callers are expected to drop stored tokens and re-authenticate.
package services
