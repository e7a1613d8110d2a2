// Package permissions exposes the permission administration screens'
// backend, delegated to the remote authority.
package permissions

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
	ListPermissions(ctx context.Context, credential string) ([]authority.Permission, error)
	GetPermission(ctx context.Context, credential string, id int64) (authority.Permission, error)
	CreatePermission(ctx context.Context, credential string, in authority.PermissionCreate) (authority.Permission, error)
	UpdatePermission(ctx context.Context, credential string, id int64, in authority.PermissionUpdate) (authority.Permission, error)
	DeletePermission(ctx context.Context, credential string, id int64) error
}

// Handler wires HTTP endpoints for permission administration.
type Handler struct {
	logger    *slog.Logger
	authority Authority
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, auth Authority) *Handler {
	return &Handler{logger: logger, authority: auth, validator: validator.New()}
}

// MountRoutes registers permission routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type createRequest struct {
	Code        string `json:"code" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Description string `json:"description"`
}

// updateRequest carries no code field; the business key never changes
// after creation.
type updateRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	perms, err := h.authority.ListPermissions(r.Context(), credential(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	perm, err := h.authority.GetPermission(r.Context(), credential(r), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "code and display_name are required")
		return
	}
	perm, err := h.authority.CreatePermission(r.Context(), credential(r), authority.PermissionCreate{
		Code:        req.Code,
		DisplayName: req.DisplayName,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, perm)
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
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "display_name is required")
		return
	}
	perm, err := h.authority.UpdatePermission(r.Context(), credential(r), id, authority.PermissionUpdate{
		DisplayName: req.DisplayName,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	if err := h.authority.DeletePermission(r.Context(), credential(r), id); err != nil {
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
