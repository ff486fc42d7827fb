package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/desertthunder/focus/internal/tasks"
	"github.com/desertthunder/focus/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive notes editor.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer := shared.NewFileLogger(r.config.Notes.LogPath)
	defer closer.Close()
	r.SetLogger(fileLogger)

	menu := ui.NewMenu()
	session, err := r.session(menu)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var engine *tasks.PlaybackEngine
	player, err := r.playback(ctx)
	switch {
	case err == nil:
		engine = tasks.NewPlaybackEngine(player, tasks.EngineOpts{
			Interval:    r.config.Notes.PollInterval.Duration,
			ControlRate: r.config.Notes.ControlRate,
			OnExpired:   func() { r.clearTokens(ctx) },
			Logger:      shared.WithLogger(fileLogger, "component", "playback"),
		})
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrMissingCredentials):
		fileLogger.Info("starting without Spotify", "reason", err)
	default:
		return err
	}

	model := ui.NewModel(ctx, ui.ModelOpts{
		Session: session,
		Menu:    menu,
		Engine:  engine,
		Logger:  shared.WithLogger(fileLogger, "component", "ui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
