// Package server provides HTTP routing, middleware, and OAuth handling for the CLI flow and
// the browser dashboard relay.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// OPTIONS is never filtered so [CORS] can answer preflight requests.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves the one callback of `focus spotify auth`. It validates the state,
// exchanges the code and sends the result through a channel. Only the first callback is processed.
//
// # Relay
//
// [Relay] mirrors the dashboard's serverless functions:
//
//	GET  /api/spotify/login    → {"authUrl": ...}
//	GET  /api/callback         → success page, or redirect to /?error=<reason>
//	POST /api/spotify/refresh  → {"accessToken", "refreshToken"}
//
// Pending login states live in a [cache.Cache] with a TTL and are single use.
package server
