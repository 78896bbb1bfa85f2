package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nuid"
	"github.com/todoapp/server/internal/platform/httpx"
)

const (
	rootPath     = "/"
	deniedPath   = "/denied"
	signInPath   = "/sign-in"
	signOutPath  = "/sign-out"
	callbackPath = "/sign-in-github"
)

// Handler owns the sign-in state machine: anonymous -> pending challenge
// (redirect to the provider) -> authenticated (session cookie issued).
type Handler struct {
	Provider *GitHub
	Sessions *Sessions
	Log      *slog.Logger
	NewState func() string
	// TrustProxy honors X-Forwarded-Proto when building the OAuth
	// redirect URI. Leave false unless a TLS-terminating proxy sits in
	// front of the server; the header is client-controlled otherwise.
	TrustProxy bool
}

func NewHandler(provider *GitHub, sessions *Sessions, log *slog.Logger) *Handler {
	return &Handler{
		Provider: provider,
		Sessions: sessions,
		Log:      log,
		NewState: nuid.Next,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post(signInPath, h.handleSignIn)
	r.Get(callbackPath, h.handleCallback)
	r.With(h.RequireUser).Post(signOutPath, h.handleSignOut)
	r.Get(signOutPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, rootPath, http.StatusFound)
	})
	r.Get(deniedPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, rootPath+"?denied=true", http.StatusFound)
	})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	state := h.NewState()
	h.Sessions.setStateCookie(w, state)
	http.Redirect(w, r, h.Provider.ChallengeURL(h.callbackURL(r), state), http.StatusFound)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.Sessions.clearStateCookie(w)

	if query.Get("error") != "" {
		http.Redirect(w, r, deniedPath, http.StatusFound)
		return
	}

	stateCookie, err := r.Cookie(StateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		h.Log.Warn("oauth callback rejected", "reason", "state mismatch")
		http.Redirect(w, r, rootPath+"?denied=true", http.StatusFound)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Redirect(w, r, rootPath+"?denied=true", http.StatusFound)
		return
	}

	principal, err := h.Provider.Exchange(r.Context(), code, h.callbackURL(r))
	if err != nil {
		// The attempt is abandoned; no provider detail reaches the browser.
		h.Log.Error("oauth code exchange failed", "error", err)
		http.Redirect(w, r, rootPath+"?denied=true", http.StatusFound)
		return
	}

	token, err := h.Sessions.Issue(principal)
	if err != nil {
		h.Log.Error("session issuance failed", "error", err)
		http.Redirect(w, r, rootPath+"?denied=true", http.StatusFound)
		return
	}

	h.Sessions.SetSessionCookie(w, token)
	h.Log.Info("user signed in", "user_id", principal.UserID)
	http.Redirect(w, r, rootPath, http.StatusFound)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearSessionCookie(w)
	http.Redirect(w, r, rootPath, http.StatusFound)
}

// callbackURL rebuilds the absolute OAuth redirect URI from the incoming
// request so the same binary works behind any host name.
func (h *Handler) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || (h.TrustProxy && r.Header.Get("X-Forwarded-Proto") == "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + callbackPath
}

func (h *Handler) principalFromRequest(r *http.Request) (Principal, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return Principal{}, false
	}
	principal, err := h.Sessions.Parse(cookie.Value)
	if err != nil {
		return Principal{}, false
	}
	return principal, true
}

// WithPrincipal attaches the signed-in principal to the request context
// when a valid session cookie is present. Anonymous requests pass
// through untouched.
func (h *Handler) WithPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, ok := h.principalFromRequest(r); ok {
			r = r.WithContext(ContextWithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser gates API routes: requests without a valid session get a
// 401 problem response.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principalFromRequest(r)
		if !ok {
			httpx.WriteProblem(w, r, http.StatusUnauthorized, "Authentication required.")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}
