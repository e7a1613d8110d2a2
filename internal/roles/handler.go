// Package roles exposes the role administration screens' backend: role
// CRUD plus the permission assignment editor, all delegated to the remote
// authority.
package roles

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ragster/console/internal/authority"
	"github.com/ragster/console/internal/platform/httpx"
	"github.com/ragster/console/internal/reconcile"
	"github.com/ragster/console/internal/session"
)

// Authority is the slice of the authority client this handler needs.
type Authority interface {
	ListRoles(ctx context.Context, credential string) ([]authority.Role, error)
	GetRole(ctx context.Context, credential string, id int64) (authority.Role, error)
	CreateRole(ctx context.Context, credential string, in authority.RoleCreate) (authority.Role, error)
	UpdateRole(ctx context.Context, credential string, id int64, in authority.RoleUpdate) (authority.Role, error)
	DeleteRole(ctx context.Context, credential string, id int64) error
	reconcile.Authority
}

// Handler wires HTTP endpoints for role administration.
type Handler struct {
	logger    *slog.Logger
	authority Authority
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, auth Authority) *Handler {
	return &Handler{logger: logger, authority: auth, validator: validator.New()}
}

// MountRoutes registers role routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Get("/{id}/permissions", h.openEditor)
	r.Post("/{id}/permissions", h.saveEditor)
}

type createRequest struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Description string `json:"description"`
}

// updateRequest deliberately has no name field: the business key is fixed
// at creation and the console never transmits it on edit.
type updateRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.authority.ListRoles(r.Context(), credential(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	role, err := h.authority.GetRole(r.Context(), credential(r), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name and display_name are required")
		return
	}
	role, err := h.authority.CreateRole(r.Context(), credential(r), authority.RoleCreate{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
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
	role, err := h.authority.UpdateRole(r.Context(), credential(r), id, authority.RoleUpdate{
		DisplayName: req.DisplayName,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	if err := h.authority.DeleteRole(r.Context(), credential(r), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type editorResponse struct {
	EditorToken string                 `json:"editor_token"`
	RoleID      int64                  `json:"role_id"`
	Available   []authority.Permission `json:"available"`
	Existing    []int64                `json:"existing"`
	Selected    []int64                `json:"selected"`
}

type saveRequest struct {
	EditorToken string  `json:"editor_token" validate:"required"`
	Selected    []int64 `json:"selected"`
	Existing    []int64 `json:"existing"`
}

type assignmentResponse struct {
	RoleID   int64                  `json:"role_id"`
	Assigned []authority.Permission `json:"assigned"`
}

// openEditor fetches the permission catalog and the role's current
// assignment and opens an editing session. The returned token identifies
// this session; a save carrying a stale token is rejected, which is how a
// completion for a closed editor is kept away from the current one.
func (h *Handler) openEditor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	editor, available, err := reconcile.Open(r.Context(), h.authority, credential(r), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	sess.Set(editorTokenKey(id), editor.Token())

	httpx.JSON(w, http.StatusOK, editorResponse{
		EditorToken: editor.Token(),
		RoleID:      id,
		Available:   available,
		Existing:    editor.Existing(),
		Selected:    editor.Selected(),
	})
}

func (h *Handler) saveEditor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	var req saveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "editor_token is required")
		return
	}

	sess := session.FromContext(r.Context())
	if sess.Get(editorTokenKey(id)) != req.EditorToken {
		httpx.Problem(w, http.StatusConflict, "Conflict", "editor session is stale; reopen the assignment editor")
		return
	}

	assigned, err := reconcile.Save(r.Context(), h.authority, credential(r), id, req.Selected, req.Existing)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sess.Set(editorTokenKey(id), "")

	httpx.JSON(w, http.StatusOK, assignmentResponse{RoleID: id, Assigned: assigned})
}

func editorTokenKey(roleID int64) string {
	return fmt.Sprintf("perm_editor:%d", roleID)
}

func credential(r *http.Request) string {
	return session.FromContext(r.Context()).Credential()
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
