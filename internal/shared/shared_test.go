package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "notes")
		logger.Info("saved")

		out := buf.String()
		if !strings.Contains(out, "saved") || !strings.Contains(out, "component=notes") {
			t.Errorf("expected message with context, got %q", out)
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "focus.log")
		logger, closer := NewFileLogger(path)
		logger.Info("to file", "key", "value")
		if err := closer.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected log file: %v", err)
		}
		if !strings.Contains(string(data), "key=value") {
			t.Errorf("expected logfmt entry, got %q", data)
		}
	})
}

func TestIdentifiers(t *testing.T) {
	t.Run("GenerateState", func(t *testing.T) {
		a, b := GenerateState(), GenerateState()
		if a == b {
			t.Error("expected unique states")
		}
		if len(a) != 32 || strings.Contains(a, "-") {
			t.Errorf("expected 32 hex characters, got %q", a)
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		if len(GenerateID()) != 36 {
			t.Error("expected uuid string")
		}
	})
}

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()

	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Setenv("BROWSER", "")
			getRuntime = func() string { return tt.goos }
			cmd, err := browserCommand("http://example.com")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filepath.Base(cmd.Path) != tt.want && cmd.Args[0] != tt.want {
				t.Errorf("expected %s, got %v", tt.want, cmd.Args)
			}
		})
	}

	t.Run("Unsupported", func(t *testing.T) {
		t.Setenv("BROWSER", "")
		getRuntime = func() string { return "plan9" }
		if _, err := browserCommand("http://example.com"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("BROWSER Override", func(t *testing.T) {
		t.Setenv("BROWSER", "firefox")
		cmd, _ := browserCommand("http://example.com")
		if cmd.Args[0] != "firefox" || cmd.Args[1] != "http://example.com" {
			t.Errorf("expected firefox override, got %v", cmd.Args)
		}
	})
}
