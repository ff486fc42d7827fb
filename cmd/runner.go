package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/focus/internal/notes"
	"github.com/desertthunder/focus/internal/repositories"
	"github.com/desertthunder/focus/internal/services"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	db     *sql.DB
	kv     *repositories.KVRepository
	tokens *repositories.TokenStore

	player  services.Player
	spotify *services.SpotifyService
}

// RunnerOpts contains configuration options for creating a Runner.
//
// DB and Player are normally opened lazily from the configuration; tests
// inject them.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Player     services.Player
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		player:     opts.Player,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, notesCommand, spotifyCommand, cacheCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. to keep log lines off the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database when the runner opened one.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.kv = repositories.NewKVRepository(db, shared.WithLogger(r.logger, "component", "kv"))
	r.tokens = repositories.NewTokenStore(r.kv)
}

// store opens the configured database on first use and brings its schema up to date.
func (r *Runner) store() (*repositories.KVRepository, error) {
	if r.kv != nil {
		return r.kv, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.attach(db)
	return r.kv, nil
}

// session loads the notes surface from the store.
func (r *Runner) session(menu notes.MenuHost) (*notes.Session, error) {
	kv, err := r.store()
	if err != nil {
		return nil, err
	}
	s := notes.NewSession(notes.SessionOpts{
		Store:  kv,
		Menu:   menu,
		Logger: shared.WithLogger(r.logger, "component", "notes"),
	})
	s.Load()
	return s, nil
}

// spotifyService builds the OAuth-capable client from the configured credentials.
func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}
	if !r.config.HasSpotifyCredentials() {
		return nil, fmt.Errorf("%w: set client_id and client_secret in %s or %s/%s",
			shared.ErrMissingCredentials, r.configFile(), shared.EnvClientID, shared.EnvClientSecret)
	}

	svc, err := services.NewSpotifyService(r.config.SpotifyCredentials())
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}
	r.spotify = svc
	return svc, nil
}

// playback returns a player authenticated with the stored tokens. Refreshed
// tokens are written back to the store.
func (r *Runner) playback(ctx context.Context) (services.Player, error) {
	if r.player != nil {
		return r.player, nil
	}
	if _, err := r.store(); err != nil {
		return nil, err
	}

	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: run 'focus spotify auth' first", err)
	}

	svc, err := r.spotifyService()
	if err != nil {
		return nil, err
	}
	svc.SetTokenRefreshCallback(func(tok *oauth2.Token) {
		if err := r.tokens.Save(context.WithoutCancel(ctx), tok); err != nil {
			r.logger.Warn("failed to save refreshed token", "error", err)
		}
	})
	if err := svc.AuthenticateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.player = svc
	return svc, nil
}

// clearTokens drops stored tokens after the provider rejected them.
func (r *Runner) clearTokens(ctx context.Context) {
	if r.tokens == nil {
		return
	}
	if err := r.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("failed to clear tokens", "error", err)
	}
}

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
