// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in template",
				Action: r.SetupConfig,
			},
		},
	}
}

// notesCommand handles the notes surface.
func notesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Read, format and export the notes",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the notes as text or as the structural document",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.NotesShow,
			},
			{
				Name:  "write",
				Usage: "Append text at the end of the notes",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "text"},
				},
				Action: r.NotesWrite,
			},
			{
				Name:  "format",
				Usage: "Apply a format to the text between two offsets",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "start", Usage: "First selected character (0-based)", Required: true},
					&cli.IntFlag{Name: "end", Usage: "Offset just past the selection", Required: true},
					&cli.StringFlag{
						Name:     "kind",
						Aliases:  []string{"k"},
						Usage:    "h1, h2, h3, bullet, number, checkbox, bold or italic",
						Required: true,
					},
				},
				Action: r.NotesFormat,
			},
			{
				Name:  "toggle",
				Usage: "Toggle a checkbox row",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "row", Usage: "Checkbox row number (1-based)", Required: true},
				},
				Action: r.NotesToggle,
			},
			{
				Name:  "title",
				Usage: "Print or set the title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.NotesTitle,
			},
			{
				Name:  "icon",
				Usage: "Print, set, hide or show the title icon",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "glyph"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "hide", Usage: "Hide the icon"},
					&cli.BoolFlag{Name: "show", Usage: "Show the icon"},
					&cli.BoolFlag{Name: "list", Usage: "List available icons"},
				},
				Action: r.NotesIcon,
			},
			{
				Name:  "width",
				Usage: "Print or set the sidebar width in pixels",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "set", Usage: "New width"},
					&cli.IntFlag{Name: "viewport", Usage: "Viewport width the limit is computed from", Value: 1920},
				},
				Action: r.NotesWidth,
			},
			{
				Name:  "export",
				Usage: "Export the notes to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "markdown, text, html or json",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: notes.<ext>)",
					},
				},
				Action: r.NotesExport,
			},
		},
	}
}

// spotifyCommand handles Spotify playback operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify playback operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.SpotifyAuth,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored Spotify tokens",
				Action: r.SpotifyLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the connected account",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.SpotifyStatus,
			},
			{
				Name:   "now",
				Usage:  "Show what is playing",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.SpotifyNow,
			},
			{Name: "play", Usage: "Resume playback", Action: r.SpotifyControl},
			{Name: "pause", Usage: "Pause playback", Action: r.SpotifyControl},
			{Name: "toggle", Usage: "Play or pause", Action: r.SpotifyControl},
			{Name: "next", Usage: "Skip to the next track", Action: r.SpotifyControl},
			{Name: "prev", Aliases: []string{"previous"}, Usage: "Go back to the previous track", Action: r.SpotifyControl},
			{
				Name:   "devices",
				Usage:  "List Spotify Connect devices",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.SpotifyDevices,
			},
			{
				Name:  "transfer",
				Usage: "Move playback to another device",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "device"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "play", Usage: "Start playing on the new device"},
				},
				Action: r.SpotifyTransfer,
			},
		},
	}
}

// cacheCommand inspects the key-value store shared by notes and tokens.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Aliases: []string{"store"},
		Usage:   "Inspect the key-value store",
		Commands: []*cli.Command{
			{
				Name:   "keys",
				Usage:  "List stored keys",
				Action: r.CacheKeys,
			},
			{
				Name:  "get",
				Usage: "Print a stored value",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Action: r.CacheGet,
			},
			{
				Name:      "clear",
				Usage:     "Delete the given keys, or every key with --all",
				ArgsUsage: "[KEY...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Delete every key"},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// serveCommand runs the OAuth relay for the browser dashboard.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the Spotify OAuth relay for the dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default: server.host:server.port)"},
			&cli.BoolFlag{Name: "open", Usage: "Open the dashboard in a browser"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for the notes editor.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive notes editor",
		Action:  r.TUI,
	}
}
