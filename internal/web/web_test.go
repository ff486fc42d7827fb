package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIndex(t *testing.T) {
	t.Run("Renders Error Reason", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Index(rec, httptest.NewRequest(http.MethodGet, "/?error=no_code", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `data-reason="no_code"`) || !strings.Contains(body, Describe(ReasonNoCode)) {
			t.Errorf("expected error notice, got %s", body)
		}
	})

	t.Run("Escapes Provider Reasons", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Index(rec, httptest.NewRequest(http.MethodGet, "/?error=%3Cscript%3E", nil))
		if strings.Contains(rec.Body.String(), "<script>alert") || strings.Contains(rec.Body.String(), `data-reason="<script>"`) {
			t.Error("expected reason to be escaped")
		}
	})

	t.Run("Unknown Path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Index(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestSuccess(t *testing.T) {
	t.Run("Hands Tokens To The Dashboard", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Success(&buf, Tokens{AccessToken: "acc'ess", RefreshToken: "ref"}); err != nil {
			t.Fatalf("Success failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "spotifyAccessToken") || !strings.Contains(out, `"ref"`) {
			t.Errorf("expected token script, got %s", out)
		}
		if strings.Contains(out, "'acc'ess'") {
			t.Error("expected token to be JS escaped")
		}
	})

	t.Run("Without Tokens", func(t *testing.T) {
		var buf bytes.Buffer
		_ = Success(&buf, Tokens{})
		if strings.Contains(buf.String(), "localStorage") {
			t.Error("expected no script without tokens")
		}
	})
}
