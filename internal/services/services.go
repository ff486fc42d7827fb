package services

import (
	"context"

	"github.com/desertthunder/focus/internal/models"
)

// Player controls playback on a streaming provider.
type Player interface {
	// CurrentPlayback returns the playback state, or nil when nothing is playing.
	CurrentPlayback(ctx context.Context) (*models.PlaybackState, error)

	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}

// Toggle reads the current state and flips it. Nothing playing resumes playback.
func Toggle(ctx context.Context, p Player) error {
	state, err := p.CurrentPlayback(ctx)
	if err != nil {
		return err
	}
	if state != nil && state.IsPlaying {
		return p.Pause(ctx)
	}
	return p.Play(ctx)
}
