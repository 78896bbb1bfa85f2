package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/todoapp/server/internal/app/auth"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler renders the browser UI. The page is a thin shell; once signed
// in, the embedded client script drives /api/items directly.
type Handler struct {
	Log       *slog.Logger
	templates *template.Template
}

func NewHandler(log *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &Handler{Log: log, templates: tmpl}, nil
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleHome)
	r.Get("/error", h.handleError)
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))
}

func staticHandler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(subFS))
}

type homeData struct {
	SignedIn   bool
	Name       string
	AvatarURL  string
	ProfileURL string
	Denied     bool
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		Denied: r.URL.Query().Get("denied") == "true",
	}
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		data.SignedIn = true
		data.Name = principal.Name
		data.AvatarURL = principal.AvatarURL
		data.ProfileURL = principal.ProfileURL
	}
	h.render(w, http.StatusOK, "home.html.tmpl", data)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusInternalServerError, "error.html.tmpl", nil)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.Log.Error("template render failed", "template", name, "error", err)
	}
}
