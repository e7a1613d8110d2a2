// Package knowledgebase exposes the knowledge base screens' backend,
// delegated to the remote authority. These screens are reachable by any
// authenticated session; they are not gated on the admin capability.
package knowledgebase

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ragster/console/internal/authority"
	"github.com/ragster/console/internal/platform/httpx"
	"github.com/ragster/console/internal/session"
)

// Authority is the slice of the authority client this handler needs.
type Authority interface {
	ListKnowledgeBases(ctx context.Context, credential string) ([]authority.KnowledgeBase, error)
	GetKnowledgeBase(ctx context.Context, credential string, id int64) (authority.KnowledgeBase, error)
	CreateKnowledgeBase(ctx context.Context, credential string, in authority.KnowledgeBaseCreate) (authority.KnowledgeBase, error)
	UpdateKnowledgeBase(ctx context.Context, credential string, id int64, in authority.KnowledgeBaseUpdate) (authority.KnowledgeBase, error)
	DeleteKnowledgeBase(ctx context.Context, credential string, id int64) error
}

// Handler wires HTTP endpoints for knowledge base administration.
type Handler struct {
	logger    *slog.Logger
	authority Authority
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, auth Authority) *Handler {
	return &Handler{logger: logger, authority: auth, validator: validator.New()}
}

// MountRoutes registers knowledge base routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type createRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type updateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	kbs, err := h.authority.ListKnowledgeBases(r.Context(), credential(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, kbs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	kb, err := h.authority.GetKnowledgeBase(r.Context(), credential(r), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, kb)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required")
		return
	}
	kb, err := h.authority.CreateKnowledgeBase(r.Context(), credential(r), authority.KnowledgeBaseCreate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, kb)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be JSON")
		return
	}
	kb, err := h.authority.UpdateKnowledgeBase(r.Context(), credential(r), id, authority.KnowledgeBaseUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, kb)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	if err := h.authority.DeleteKnowledgeBase(r.Context(), credential(r), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func credential(r *http.Request) string {
	return session.FromContext(r.Context()).Credential()
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
