package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/focus/internal/models"
	"github.com/desertthunder/focus/internal/shared"
	th "github.com/desertthunder/focus/internal/testing"
)

func playing() *models.PlaybackState {
	return &models.PlaybackState{
		IsPlaying: true,
		Track:     &models.Track{Title: "Song", Artists: []string{"Artist"}},
	}
}

func receive(t *testing.T, updates <-chan Update) Update {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input   string
		want    Action
		wantErr bool
	}{
		{"toggle", Toggle, false},
		{"Play", Play, false},
		{" pause ", Pause, false},
		{"next", Next, false},
		{"previous", Previous, false},
		{"prev", Previous, false},
		{"shuffle", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %v, got %v (%v)", tt.want, got, err)
			}
		})
	}
}

func TestPlaybackEngine(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		e := NewPlaybackEngine(&th.FakePlayer{}, EngineOpts{})
		if e.opts.Interval != DefaultInterval || e.opts.RefreshDelay != DefaultRefreshDelay || e.opts.ControlRate != DefaultControlRate {
			t.Errorf("unexpected defaults %+v", e.opts)
		}
	})

	t.Run("Poll Stores Last State", func(t *testing.T) {
		e := NewPlaybackEngine(&th.FakePlayer{State: playing()}, EngineOpts{})
		if _, err := e.Poll(context.Background()); err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if e.Last() == nil || e.Last().Track.Title != "Song" {
			t.Errorf("expected last state, got %+v", e.Last())
		}
	})

	t.Run("Run Polls And Refreshes After Control", func(t *testing.T) {
		player := &th.FakePlayer{State: playing()}
		e := NewPlaybackEngine(player, EngineOpts{
			Interval:     time.Hour,
			RefreshDelay: 5 * time.Millisecond,
			ControlRate:  100,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		updates := make(chan Update, 8)
		done := make(chan error, 1)
		go func() { done <- e.Run(ctx, updates) }()

		first := receive(t, updates)
		if first.Phase != Polled || first.Message != "Playing: Song - Artist" {
			t.Errorf("unexpected first update %+v", first)
		}

		if err := e.Control(ctx, Toggle); err != nil {
			t.Fatalf("Control failed: %v", err)
		}
		second := receive(t, updates)
		if second.State == nil || second.State.IsPlaying {
			t.Errorf("expected paused state after toggle, got %+v", second.State)
		}

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if player.Count("pause") != 1 {
			t.Errorf("expected one pause, got %v", player.Calls())
		}
	})

	t.Run("Run Reports Failures And Keeps Going", func(t *testing.T) {
		player := &th.FakePlayer{Err: shared.ErrAPIRequest}
		e := NewPlaybackEngine(player, EngineOpts{Interval: 5 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		updates := make(chan Update, 8)
		go func() { _ = e.Run(ctx, updates) }()

		for range 2 {
			if u := receive(t, updates); u.Phase != Failed || !errors.Is(u.Err, shared.ErrAPIRequest) {
				t.Errorf("expected failed update, got %+v", u)
			}
		}
	})

	t.Run("Run Stops When Session Expires", func(t *testing.T) {
		var expired atomic.Int32
		player := &th.FakePlayer{Err: shared.ErrTokenExpired}
		e := NewPlaybackEngine(player, EngineOpts{
			Interval:  5 * time.Millisecond,
			OnExpired: func() { expired.Add(1) },
		})

		updates := make(chan Update, 8)
		err := e.Run(context.Background(), updates)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if u := receive(t, updates); u.Phase != Expired {
			t.Errorf("expected expired update, got %v", u.Phase)
		}

		_ = e.Control(context.Background(), Next)
		if expired.Load() != 1 {
			t.Errorf("expected OnExpired once, got %d", expired.Load())
		}
	})

	t.Run("Control Actions", func(t *testing.T) {
		tests := []struct {
			action Action
			call   string
		}{
			{Play, "play"},
			{Pause, "pause"},
			{Next, "next"},
			{Previous, "previous"},
		}

		for _, tt := range tests {
			t.Run(tt.action.String(), func(t *testing.T) {
				player := &th.FakePlayer{State: playing()}
				e := NewPlaybackEngine(player, EngineOpts{ControlRate: 100})
				if err := e.Control(context.Background(), tt.action); err != nil {
					t.Fatalf("Control failed: %v", err)
				}
				if player.Count(tt.call) != 1 {
					t.Errorf("expected %s, got %v", tt.call, player.Calls())
				}
			})
		}
	})

	t.Run("Control Is Rate Limited", func(t *testing.T) {
		player := &th.FakePlayer{State: playing()}
		e := NewPlaybackEngine(player, EngineOpts{ControlRate: 0.01})

		if err := e.Control(context.Background(), Next); err != nil {
			t.Fatalf("first control failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := e.Control(ctx, Next); !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
		if player.Count("next") != 1 {
			t.Errorf("expected the limited action to be skipped, got %v", player.Calls())
		}
	})

	t.Run("Unknown Action", func(t *testing.T) {
		e := NewPlaybackEngine(&th.FakePlayer{}, EngineOpts{ControlRate: 100})
		if err := e.Control(context.Background(), Action(42)); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
