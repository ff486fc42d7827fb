package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/focus/internal/services"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/desertthunder/focus/internal/web"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
)

// DefaultStateTTL is how long a login may take before its state is rejected.
const DefaultStateTTL = 10 * time.Minute

// TokenSaver persists tokens obtained by the relay.
type TokenSaver interface {
	Save(ctx context.Context, token *oauth2.Token) error
}

// RelayOpts configures a [Relay]. A nil Config or one without credentials makes every
// endpoint report a configuration error.
type RelayOpts struct {
	Config   *oauth2.Config
	Tokens   TokenSaver
	Logger   *log.Logger
	StateTTL time.Duration
}

// Relay keeps the client secret on the server for the browser dashboard: it starts logins,
// exchanges codes and refreshes tokens.
type Relay struct {
	config *oauth2.Config
	tokens TokenSaver
	logger *log.Logger
	states *cache.Cache
}

// NewRelay creates a new [Relay].
func NewRelay(opts RelayOpts) *Relay {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.StateTTL <= 0 {
		opts.StateTTL = DefaultStateTTL
	}
	return &Relay{
		config: opts.Config,
		tokens: opts.Tokens,
		logger: opts.Logger,
		states: cache.New(opts.StateTTL, 2*opts.StateTTL),
	}
}

// NewRelayRouter builds the router served by `focus serve`.
func NewRelayRouter(relay *Relay, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger), CORS("GET,POST,OPTIONS"))
	relay.Register(router)
	router.Handle(http.MethodGet, "/", http.HandlerFunc(web.Index))
	return router
}

// Register adds the relay endpoints to router. The callback is served on /api/callback and
// on the path of the configured redirect URL.
func (rl *Relay) Register(router Router) {
	router.Handle(http.MethodGet, "/api/spotify/login", http.HandlerFunc(rl.Login))
	router.Handle(http.MethodPost, "/api/spotify/refresh", http.HandlerFunc(rl.Refresh))
	router.Handle(http.MethodGet, "/api/callback", http.HandlerFunc(rl.Callback))
	if path := callbackPath(rl.config, "/api/callback"); path != "/api/callback" {
		router.Handle(http.MethodGet, path, http.HandlerFunc(rl.Callback))
	}
}

func (rl *Relay) hasClientID() bool {
	return rl.config != nil && rl.config.ClientID != ""
}

func (rl *Relay) configured() bool {
	return rl.hasClientID() && rl.config.ClientSecret != ""
}

// Login responds with {"authUrl": ...} for a fresh state.
func (rl *Relay) Login(w http.ResponseWriter, r *http.Request) {
	if !rl.hasClientID() {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Spotify Client ID not configured"})
		return
	}

	state := shared.GenerateState()
	rl.states.Set(state, struct{}{}, cache.DefaultExpiration)
	rl.logger.Debug("login started", "state", state)

	writeJSON(w, http.StatusOK, map[string]string{"authUrl": rl.config.AuthCodeURL(state)})
}

// Callback exchanges the authorization code and renders the success page. Failures redirect
// to /?error=<reason>.
func (rl *Relay) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if reason := query.Get("error"); reason != "" {
		rl.fail(w, r, reason)
		return
	}

	code := query.Get("code")
	if code == "" {
		rl.fail(w, r, web.ReasonNoCode)
		return
	}

	if !rl.configured() {
		rl.fail(w, r, web.ReasonServerConfiguration)
		return
	}

	state := query.Get("state")
	if _, ok := rl.states.Get(state); !ok || state == "" {
		rl.fail(w, r, web.ReasonInvalidState)
		return
	}
	rl.states.Delete(state)

	token, err := rl.config.Exchange(r.Context(), code)
	if err != nil {
		rl.logger.Error("token exchange failed", "error", err)
		rl.fail(w, r, web.ReasonTokenExchangeFailed)
		return
	}

	rl.save(r.Context(), token)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.Success(w, web.Tokens{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}); err != nil {
		rl.logger.Error("failed to render success page", "error", err)
	}
}

// Refresh trades {"refreshToken"} for {"accessToken","refreshToken"}.
func (rl *Relay) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body)

	if body.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Refresh token required"})
		return
	}

	if !rl.configured() {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Server configuration error"})
		return
	}

	token, err := services.RefreshToken(r.Context(), rl.config, body.RefreshToken)
	if err != nil {
		rl.logger.Error("token refresh failed", "error", err)
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Token refresh failed"})
		return
	}

	rl.save(r.Context(), token)

	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":  token.AccessToken,
		"refreshToken": token.RefreshToken,
	})
}

func (rl *Relay) save(ctx context.Context, token *oauth2.Token) {
	if rl.tokens == nil {
		return
	}
	if err := rl.tokens.Save(ctx, token); err != nil {
		rl.logger.Warn("failed to persist tokens", "error", err)
	}
}

func (rl *Relay) fail(w http.ResponseWriter, r *http.Request, reason string) {
	rl.logger.Warn("authorization failed", "reason", reason)
	http.Redirect(w, r, "/?error="+url.QueryEscape(reason), http.StatusFound)
}
