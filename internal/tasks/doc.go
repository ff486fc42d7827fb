// Package tasks runs the playback companion: polling the player and sending control actions.
//
// # Polling
//
// [PlaybackEngine.Run] polls the [services.Player] right away and then every
// [EngineOpts.Interval]. A successful [PlaybackEngine.Control] schedules an extra poll
// [EngineOpts.RefreshDelay] later so the display catches up with the change.
//
// Updates are sent without blocking; a full channel drops them.
//
// # Session Expiry
//
// A [shared.ErrTokenExpired] from the player stops Run and calls [EngineOpts.OnExpired] once,
// which is where stored tokens are dropped.
//
// # Rate Limiting
//
// Control actions share a [rate.Limiter] with a burst of one.
package tasks
