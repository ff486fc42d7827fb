package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/focus/internal/models"
	"github.com/desertthunder/focus/internal/services"
	"github.com/desertthunder/focus/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultInterval     = 3 * time.Second
	DefaultRefreshDelay = 500 * time.Millisecond
	DefaultControlRate  = 2.0
)

// Action is a playback control.
type Action int

const (
	Toggle Action = iota
	Play
	Pause
	Next
	Previous
)

var actionNames = map[Action]string{
	Toggle:   "toggle",
	Play:     "play",
	Pause:    "pause",
	Next:     "next",
	Previous: "previous",
}

func (a Action) String() string {
	return actionNames[a]
}

// ParseAction accepts an action name; "prev" is short for previous.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "prev" {
		return Previous, nil
	}
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", shared.ErrInvalidArgument, s)
}

// EngineOpts configures a [PlaybackEngine]. Zero values take the defaults.
type EngineOpts struct {
	Interval     time.Duration // Poll period
	RefreshDelay time.Duration // Re-poll delay after a control action
	ControlRate  float64       // Control actions per second
	OnExpired    func()        // Called once when the session expires
	Logger       *log.Logger
}

// PlaybackEngine polls a [services.Player] and sends rate limited control actions to it.
type PlaybackEngine struct {
	player  services.Player
	opts    EngineOpts
	limiter *rate.Limiter
	refresh chan struct{}
	expired sync.Once

	mu   sync.Mutex
	last *models.PlaybackState
}

// NewPlaybackEngine creates a new PlaybackEngine for player.
func NewPlaybackEngine(player services.Player, opts EngineOpts) *PlaybackEngine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.RefreshDelay <= 0 {
		opts.RefreshDelay = DefaultRefreshDelay
	}
	if opts.ControlRate <= 0 {
		opts.ControlRate = DefaultControlRate
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &PlaybackEngine{
		player:  player,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.ControlRate), 1),
		refresh: make(chan struct{}, 1),
	}
}

// Last returns the most recently polled state.
func (e *PlaybackEngine) Last() *models.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Poll fetches the playback state once.
func (e *PlaybackEngine) Poll(ctx context.Context) (*models.PlaybackState, error) {
	state, err := e.player.CurrentPlayback(ctx)
	if err != nil {
		e.checkExpired(err)
		return nil, err
	}

	e.mu.Lock()
	e.last = state
	e.mu.Unlock()
	return state, nil
}

// Run polls immediately, then every Interval, and again RefreshDelay after each
// successful [PlaybackEngine.Control]. It returns when ctx is done or the session expires.
func (e *PlaybackEngine) Run(ctx context.Context, updates chan<- Update) error {
	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	var delayed <-chan time.Time

	for {
		if err := e.pollOnce(ctx, updates); err != nil {
			return err
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				break wait
			case <-e.refresh:
				delayed = time.After(e.opts.RefreshDelay)
			case <-delayed:
				delayed = nil
				break wait
			}
		}
	}
}

func (e *PlaybackEngine) pollOnce(ctx context.Context, updates chan<- Update) error {
	state, err := e.Poll(ctx)
	switch {
	case errors.Is(err, shared.ErrTokenExpired):
		sendUpdate(updates, expiredUpdate(err))
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		e.opts.Logger.Warn("failed to fetch playback", "player", e.player.Name(), "error", err)
		sendUpdate(updates, failedUpdate(e.Last(), err))
	default:
		sendUpdate(updates, polledUpdate(state))
	}
	return nil
}

// Control performs action, waiting for the rate limiter first.
func (e *PlaybackEngine) Control(ctx context.Context, action Action) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRateLimited, err)
	}

	var err error
	switch action {
	case Toggle:
		err = services.Toggle(ctx, e.player)
	case Play:
		err = e.player.Play(ctx)
	case Pause:
		err = e.player.Pause(ctx)
	case Next:
		err = e.player.Next(ctx)
	case Previous:
		err = e.player.Previous(ctx)
	default:
		return fmt.Errorf("%w: unknown action %d", shared.ErrInvalidArgument, action)
	}

	if err != nil {
		e.checkExpired(err)
		e.opts.Logger.Warn("playback control failed", "action", action, "error", err)
		return err
	}

	e.opts.Logger.Debug("playback control", "action", action)
	select {
	case e.refresh <- struct{}{}:
	default:
	}
	return nil
}

func (e *PlaybackEngine) checkExpired(err error) {
	if !errors.Is(err, shared.ErrTokenExpired) {
		return
	}
	e.expired.Do(func() {
		e.opts.Logger.Warn("session expired", "player", e.player.Name())
		if e.opts.OnExpired != nil {
			e.opts.OnExpired()
		}
	})
}
