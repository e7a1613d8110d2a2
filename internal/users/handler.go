// Package users exposes the operator account screens' backend. Accounts
// themselves are read-only here; the console only manages a user's role
// within a knowledge base.
package users

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
	ListUsers(ctx context.Context, credential string) ([]authority.User, error)
	GetUser(ctx context.Context, credential string, id int64) (authority.User, error)
	AssignUserRole(ctx context.Context, credential string, userID, knowledgeBaseID, roleID int64) error
	RemoveUserRole(ctx context.Context, credential string, userID, knowledgeBaseID int64) error
}

// Handler wires HTTP endpoints for user administration.
type Handler struct {
	logger    *slog.Logger
	authority Authority
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, auth Authority) *Handler {
	return &Handler{logger: logger, authority: auth, validator: validator.New()}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/role", h.assignRole)
	r.Delete("/{id}/role", h.removeRole)
}

type assignRequest struct {
	KnowledgeBaseID int64 `json:"knowledge_base_id" validate:"required"`
	RoleID          int64 `json:"role_id" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.authority.ListUsers(r.Context(), credential(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	user, err := h.authority.GetUser(r.Context(), credential(r), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "knowledge_base_id and role_id are required")
		return
	}
	if err := h.authority.AssignUserRole(r.Context(), credential(r), id, req.KnowledgeBaseID, req.RoleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	kbID, err := strconv.ParseInt(r.URL.Query().Get("knowledge_base_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "knowledge_base_id must be an integer")
		return
	}
	if err := h.authority.RemoveUserRole(r.Context(), credential(r), id, kbID); err != nil {
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
