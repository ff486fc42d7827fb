package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/focus/internal/server"
	"github.com/desertthunder/focus/internal/services"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the OAuth relay until interrupted.
//
// Missing credentials do not stop the relay: every endpoint then answers with
// a configuration error, which the dashboard shows to the user.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	logger := shared.WithLogger(r.logger, "component", "relay")

	opts := server.RelayOpts{Logger: logger}
	if r.config.HasSpotifyCredentials() {
		s := r.config.Credentials.Spotify
		opts.Config = services.NewOAuthConfig(s.ClientID, s.ClientSecret, s.RedirectURI)
	} else {
		logger.Warn("spotify credentials missing, relay will report server_configuration")
	}

	if _, err := r.store(); err != nil {
		logger.Warn("token persistence disabled", "error", err)
	} else {
		opts.Tokens = r.tokens
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	}
	srv := server.NewHTTPServer(addr, server.NewRelayRouter(server.NewRelay(opts), logger))

	if cmd.Bool("open") {
		url := r.config.Server.AppURL
		if url == "" {
			url = "http://" + addr
		}
		if err := shared.OpenBrowser(url); err != nil {
			logger.Warn("failed to open browser", "error", err)
		}
	}

	return server.Serve(ctx, srv, logger)
}
