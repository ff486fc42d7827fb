package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/focus/internal/notes"
	"github.com/desertthunder/focus/internal/shared"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

var _ notes.Store = (*KVRepository)(nil)

func TestKVRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Put And Lookup", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t), nil)

		if err := repo.Put(ctx, "notesTitle", "Today"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := repo.Put(ctx, "notesTitle", "Tomorrow"); err != nil {
			t.Fatalf("Put overwrite failed: %v", err)
		}

		got, err := repo.Lookup(ctx, "notesTitle")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if got != "Tomorrow" {
			t.Errorf("expected Tomorrow, got %s", got)
		}
	})

	t.Run("Lookup Missing", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t), nil)
		if _, err := repo.Lookup(ctx, "missing"); !errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
		if _, ok := repo.Get("missing"); ok {
			t.Error("expected Get to report absence")
		}
	})

	t.Run("Get Reports Absence On Failure", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewKVRepository(db, nil)
		_ = repo.Set("k", "v")
		db.Close()

		if _, ok := repo.Get("k"); ok {
			t.Error("expected Get to report absence on a closed database")
		}
		if err := repo.Set("k", "v"); err == nil {
			t.Error("expected Set to fail on a closed database")
		}
	})

	t.Run("Delete And Keys", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t), nil)
		for _, k := range []string{"b", "a", "c"} {
			_ = repo.Set(k, k)
		}
		if err := repo.Delete(ctx, "b", "nope"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		keys, err := repo.Keys(ctx)
		if err != nil {
			t.Fatalf("Keys failed: %v", err)
		}
		if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
			t.Errorf("expected [a c], got %v", keys)
		}
	})

	t.Run("Backs A Notes Session", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t), nil)
		s := notes.NewSession(notes.SessionOpts{Store: repo})
		s.Load()
		s.InsertText("buy milk")
		s.Select(0, 8, notes.Rect{}, notes.Size{Height: 800})
		if err := s.Apply(notes.Checkbox); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		reloaded := notes.NewSession(notes.SessionOpts{Store: repo})
		reloaded.Load()
		if len(reloaded.Rows()) != 1 || reloaded.Text() != "buy milk" {
			t.Errorf("expected persisted checkbox row, got %q", reloaded.Text())
		}
	})
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Authenticated", func(t *testing.T) {
		store := NewTokenStore(NewKVRepository(setupTestDB(t), nil))
		if _, err := store.Token(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Save And Load", func(t *testing.T) {
		store := NewTokenStore(NewKVRepository(setupTestDB(t), nil))
		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry}

		if err := store.Save(ctx, tok); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, err := store.Token(ctx)
		if err != nil {
			t.Fatalf("Token failed: %v", err)
		}
		if got.AccessToken != "access" || got.RefreshToken != "refresh" || !got.Expiry.Equal(expiry) {
			t.Errorf("unexpected token %+v", got)
		}
	})

	t.Run("Keeps Refresh Token", func(t *testing.T) {
		store := NewTokenStore(NewKVRepository(setupTestDB(t), nil))
		_ = store.Save(ctx, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"})
		_ = store.Save(ctx, &oauth2.Token{AccessToken: "a2"})

		got, _ := store.Token(ctx)
		if got.AccessToken != "a2" || got.RefreshToken != "r1" {
			t.Errorf("expected a2/r1, got %s/%s", got.AccessToken, got.RefreshToken)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewTokenStore(NewKVRepository(setupTestDB(t), nil))
		_ = store.Save(ctx, &oauth2.Token{AccessToken: "a", RefreshToken: "r"})
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if _, err := store.Token(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated after clear, got %v", err)
		}
	})

	t.Run("Rejects Empty Token", func(t *testing.T) {
		store := NewTokenStore(NewKVRepository(setupTestDB(t), nil))
		if err := store.Save(ctx, &oauth2.Token{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
