package models

import (
	"fmt"
	"strings"
	"time"
)

// Track is a playable item.
type Track struct {
	ID         string
	Title      string
	Artists    []string
	Album      string
	ImageURL   string
	DurationMS int
}

// ArtistLine joins the artist names for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Duration returns the track length.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// Device is a Spotify Connect device.
type Device struct {
	ID       string
	Name     string
	Type     string
	Volume   int
	IsActive bool
}

// PlaybackState is a snapshot of the player. A nil *PlaybackState means
// nothing is playing.
type PlaybackState struct {
	IsPlaying  bool
	ProgressMS int
	Track      *Track
	Device     Device
	FetchedAt  time.Time
}

// Progress returns the elapsed time of the current track.
func (p PlaybackState) Progress() time.Duration {
	return time.Duration(p.ProgressMS) * time.Millisecond
}

// Summary renders a one-line description.
func (p *PlaybackState) Summary() string {
	if p == nil || p.Track == nil {
		return "Nothing playing"
	}
	status := "Paused"
	if p.IsPlaying {
		status = "Playing"
	}
	return fmt.Sprintf("%s: %s - %s", status, p.Track.Title, p.Track.ArtistLine())
}

// Profile is the authenticated account.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
	Product     string
}
