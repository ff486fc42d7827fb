// Package models defines the data transfer objects shared by the playback
// client, the poller and the terminal UI.
//
//   - [PlaybackState] : what the active Spotify device is doing
//   - [Track] : the currently playing item
//   - [Device] : the device playback happens on
//   - [Profile] : the authenticated Spotify account
package models
