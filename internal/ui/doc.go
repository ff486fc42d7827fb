// Package ui implements the terminal notes editor using bubbletea's Elm architecture.
//
// The editor renders a [notes.Session] surface with lipgloss styles: headings
// are bold, list items and checkbox rows carry markers, and checked rows are
// struck through and faint. Extending the selection with shift+arrows reports
// it to the session, which shows the format [Menu] next to it; enter applies
// the highlighted format.
//
// A now-playing bar is fed by a [tasks.PlaybackEngine]. Updates flow through a
// channel and arrive as messages of the [Msg] union, so polling never blocks
// the editor. Playback keys are sent through the engine's rate limiter.
package ui
