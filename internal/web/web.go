// Package web renders the HTML pages served next to the OAuth relay: the landing page the
// relay redirects to on failure, and the page shown after a successful authorization.
package web

import (
	"embed"
	"html/template"
	"io"
	"net/http"
)

//go:embed templates/*.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "templates/*.html"))

// Error reasons the relay redirects with.
const (
	ReasonNoCode              = "no_code"
	ReasonInvalidState        = "invalid_state"
	ReasonServerConfiguration = "server_configuration"
	ReasonTokenExchangeFailed = "token_exchange_failed"
)

var reasons = map[string]string{
	ReasonNoCode:              "Spotify did not return an authorization code.",
	ReasonInvalidState:        "The login request expired or was not started here. Try again.",
	ReasonServerConfiguration: "Spotify credentials are not configured on the server.",
	ReasonTokenExchangeFailed: "Spotify rejected the authorization code.",
	"access_denied":           "Access was denied.",
}

// Describe returns a readable message for an error reason. Unknown reasons come from the
// provider and are shown as is.
func Describe(reason string) string {
	if msg, ok := reasons[reason]; ok {
		return msg
	}
	return reason
}

// Tokens are handed to the browser dashboard after authorization.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Success writes the post-authorization page.
func Success(w io.Writer, tokens Tokens) error {
	return pages.ExecuteTemplate(w, "success.html", tokens)
}

// Index serves the landing page. A ?error= parameter is rendered as a notice.
func Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := struct {
		Error   string
		Message string
	}{}
	if reason := r.URL.Query().Get("error"); reason != "" {
		data.Error = reason
		data.Message = Describe(reason)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "index.html", data); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
