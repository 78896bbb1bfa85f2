package todo

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/todoapp/server/internal/app/auth"
	"github.com/todoapp/server/internal/platform/httpx"
)

const (
	detailNotFound         = "Item not found."
	detailAlreadyCompleted = "Item already completed."
	detailNoText           = "No item text specified."
)

// Handler exposes the item API under /api/items. Every route runs behind
// the session middleware supplied by the auth package.
type Handler struct {
	Service *Service
	Log     *slog.Logger
	Auth    func(http.Handler) http.Handler
}

func NewHandler(service *Service, log *slog.Logger, authMiddleware func(http.Handler) http.Handler) *Handler {
	return &Handler{
		Service: service,
		Log:     log,
		Auth:    authMiddleware,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.Auth)
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/complete", h.handleComplete)
	r.Delete("/{id}", h.handleDelete)
	return r
}

type createItemRequest struct {
	Text string `json:"text"`
}

type createdItemResponse struct {
	ID string `json:"id"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	list, err := h.Service.ListItems(r.Context(), principal.UserID)
	if err != nil {
		h.internalError(w, r, "list items", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	view, err := h.Service.GetItem(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.internalError(w, r, "get item", err)
		return
	}
	if view == nil {
		httpx.WriteProblem(w, r, http.StatusNotFound, detailNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, r, http.StatusBadRequest, detailNoText)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		httpx.WriteProblem(w, r, http.StatusBadRequest, detailNoText)
		return
	}

	id, err := h.Service.AddItem(r.Context(), principal.UserID, req.Text)
	if err != nil {
		h.internalError(w, r, "add item", err)
		return
	}

	w.Header().Set("Location", "/api/items/"+id)
	httpx.WriteJSON(w, http.StatusCreated, createdItemResponse{ID: id})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	result, err := h.Service.CompleteItem(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.internalError(w, r, "complete item", err)
		return
	}

	switch result {
	case CompleteOK:
		w.WriteHeader(http.StatusNoContent)
	case CompleteAlreadyDone:
		httpx.WriteProblem(w, r, http.StatusBadRequest, detailAlreadyCompleted)
	default:
		httpx.WriteProblem(w, r, http.StatusNotFound, detailNotFound)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	deleted, err := h.Service.DeleteItem(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.internalError(w, r, "delete item", err)
		return
	}
	if !deleted {
		httpx.WriteProblem(w, r, http.StatusNotFound, detailNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// internalError logs the underlying failure and returns an opaque 500
// problem; raw error text never reaches the client.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Log.Error("storage operation failed", "op", op, "error", err)
	httpx.WriteProblem(w, r, http.StatusInternalServerError, "An unexpected error occurred.")
}
