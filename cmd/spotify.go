package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/focus/internal/models"
	"github.com/desertthunder/focus/internal/server"
	"github.com/desertthunder/focus/internal/services"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/desertthunder/focus/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// SpotifyAuth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.spotifyService()
	if err != nil {
		return err
	}
	if _, err := r.store(); err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, svc)
	if err != nil {
		return err
	}

	if err := r.tokens.Save(ctx, token); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.config.Database.Path)
	r.writePlain("You can now use: focus spotify now\n")
	return nil
}

// SpotifyLogout forgets the stored tokens.
func (r *Runner) SpotifyLogout(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.store(); err != nil {
		return err
	}
	if err := r.tokens.Clear(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Spotify tokens removed\n")
}

// SpotifyStatus shows the connected account.
func (r *Runner) SpotifyStatus(ctx context.Context, cmd *cli.Command) error {
	player, err := r.playback(ctx)
	if err != nil {
		return err
	}

	profiler, ok := player.(interface {
		Profile(context.Context) (*models.Profile, error)
	})
	if !ok {
		return r.writePlain("Connected to %s\n", player.Name())
	}

	profile, err := profiler.Profile(ctx)
	if err != nil {
		return r.handleSpotifyError(ctx, err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}

	r.writePlain("✓ Connected to %s\n", player.Name())
	r.writePlain("  Account: %s (%s)\n", profile.DisplayName, profile.ID)
	if profile.Product != "" {
		r.writePlain("  Plan: %s\n", profile.Product)
	}
	return nil
}

// SpotifyNow shows the current playback state.
func (r *Runner) SpotifyNow(ctx context.Context, cmd *cli.Command) error {
	player, err := r.playback(ctx)
	if err != nil {
		return err
	}

	state, err := player.CurrentPlayback(ctx)
	if err != nil {
		return r.handleSpotifyError(ctx, err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(state, true)
	}

	r.writePlain("%s\n", state.Summary())
	if state != nil && state.Track != nil {
		if state.Track.Album != "" {
			r.writePlain("  Album: %s\n", state.Track.Album)
		}
		r.writePlain("  Progress: %s / %s\n", state.Progress().Truncate(time.Second), state.Track.Duration().Truncate(time.Second))
		if state.Device.Name != "" {
			r.writePlain("  Device: %s\n", state.Device.Name)
		}
	}
	return nil
}

// SpotifyControl runs the playback action named by the command.
func (r *Runner) SpotifyControl(ctx context.Context, cmd *cli.Command) error {
	action, err := tasks.ParseAction(cmd.Name)
	if err != nil {
		return err
	}

	player, err := r.playback(ctx)
	if err != nil {
		return err
	}

	engine := tasks.NewPlaybackEngine(player, tasks.EngineOpts{
		ControlRate: r.config.Notes.ControlRate,
		Logger:      shared.WithLogger(r.logger, "component", "playback"),
	})
	if err := engine.Control(ctx, action); err != nil {
		return r.handleSpotifyError(ctx, err)
	}

	state, err := engine.Poll(ctx)
	if err != nil {
		r.logger.Debug("could not read playback after control", "error", err)
		return r.writePlain("✓ %s\n", action)
	}
	return r.writePlain("✓ %s: %s\n", action, state.Summary())
}

// SpotifyDevices lists Spotify Connect devices.
func (r *Runner) SpotifyDevices(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.connected(ctx)
	if err != nil {
		return err
	}

	devices, err := svc.Devices(ctx)
	if err != nil {
		return r.handleSpotifyError(ctx, err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(devices, true)
	}

	if len(devices) == 0 {
		return r.writePlain("No devices found. Open Spotify on a device first.\n")
	}
	r.writePlain("Found %d devices:\n\n", len(devices))
	for i, d := range devices {
		active := ""
		if d.IsActive {
			active = " (active)"
		}
		r.writePlain("%d. %s%s\n", i+1, d.Name, active)
		r.writePlain("   ID: %s\n", d.ID)
		r.writePlain("   Type: %s\n", d.Type)
	}
	return nil
}

// SpotifyTransfer moves playback to a device.
func (r *Runner) SpotifyTransfer(ctx context.Context, cmd *cli.Command) error {
	deviceID := cmd.StringArg("device")
	if deviceID == "" {
		return fmt.Errorf("%w: device", shared.ErrMissingArgument)
	}

	svc, err := r.connected(ctx)
	if err != nil {
		return err
	}
	if err := svc.Transfer(ctx, deviceID, cmd.Bool("play")); err != nil {
		return r.handleSpotifyError(ctx, err)
	}
	return r.writePlain("✓ Playback transferred to %s\n", deviceID)
}

// connected returns the Spotify client for operations beyond the [services.Player] port.
func (r *Runner) connected(ctx context.Context) (*services.SpotifyService, error) {
	player, err := r.playback(ctx)
	if err != nil {
		return nil, err
	}
	svc, ok := player.(*services.SpotifyService)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support devices", shared.ErrNotImplemented, player.Name())
	}
	return svc, nil
}

// handleSpotifyError drops the stored tokens when Spotify rejected them.
func (r *Runner) handleSpotifyError(ctx context.Context, err error) error {
	if errors.Is(err, shared.ErrTokenExpired) {
		r.clearTokens(ctx)
		r.writePlainln("⚠ Spotify session expired. Run 'focus spotify auth' to connect again.")
	}
	return err
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, svc *services.SpotifyService) (*oauth2.Token, error) {
	state := shared.GenerateState()

	authURL := svc.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(svc.Config(), state)
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := server.NewHTTPServer(serverAddr, router)

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
