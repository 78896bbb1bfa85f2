package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoapp/server/internal/app/auth"
)

func newWebRouter(t *testing.T) http.Handler {
	t.Helper()
	handler, err := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	r := chi.NewRouter()
	handler.Register(r)
	return r
}

func TestHomeAnonymous(t *testing.T) {
	router := newWebRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sign in with GitHub")
	assert.NotContains(t, body, "Sign out")
	assert.NotContains(t, body, "Sign-in was cancelled")
}

func TestHomeDeniedBanner(t *testing.T) {
	router := newWebRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/?denied=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign-in was cancelled")
}

func TestHomeSignedIn(t *testing.T) {
	router := newWebRouter(t)

	principal := auth.Principal{
		UserID:     "12345",
		Name:       "Jamie Developer",
		AvatarURL:  "https://avatars.example.com/u/12345",
		ProfileURL: "https://github.com/jamie",
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Jamie Developer")
	assert.Contains(t, body, "Sign out")
	assert.Contains(t, body, "https://avatars.example.com/u/12345")
	assert.NotContains(t, body, "Sign in with GitHub")
}

func TestStaticAssets(t *testing.T) {
	router := newWebRouter(t)

	for _, path := range []string{"/static/styles.css", "/static/app.js"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestErrorPage(t *testing.T) {
	router := newWebRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}
