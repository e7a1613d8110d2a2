// Package auth wires the console's login and logout flows. Authentication
// itself happens at the remote authority; this package exchanges operator
// credentials for a bearer token, stores it in the session, and resolves
// the admin capability for the new session exactly once.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ragster/console/internal/authority"
	"github.com/ragster/console/internal/gate"
	"github.com/ragster/console/internal/observability"
	"github.com/ragster/console/internal/platform/httpx"
	"github.com/ragster/console/internal/session"
)

// Session value keys holding the persisted gate resolution. Stored with the
// credential so the capability lives and dies with the session.
const (
	gateStateKey = "gate_state"
	gateAdminKey = "gate_is_admin"
)

// Authority is the slice of the authority client the auth flows need.
type Authority interface {
	Login(ctx context.Context, username, password string) (string, error)
	UserRoles(ctx context.Context, credential string) ([]authority.UserRole, error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	authority Authority
	sessions  *session.Manager
	csrf      *session.CSRFManager
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, auth Authority, sessions *session.Manager, csrf *session.CSRFManager, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		authority: auth,
		sessions:  sessions,
		csrf:      csrf,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/session", h.showSession)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	GateState     string `json:"gate_state"`
	IsAdmin       bool   `json:"is_admin"`
	CSRFToken     string `json:"csrf_token,omitempty"`
}

// showSession reports the session's gate resolution and primes the CSRF
// token a client needs before it may POST.
func (h *Handler) showSession(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	token, err := h.csrf.EnsureToken(sess)
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	res := h.Resolution(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated: sess.Credential() != "",
		GateState:     res.State.String(),
		IsAdmin:       res.IsAdmin,
		CSRFToken:     token,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username and password are required")
		return
	}

	token, err := h.authority.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	sess.SetCredential(token)
	// New credential: any previous capability is void.
	sess.Set(gateStateKey, "")
	sess.Set(gateAdminKey, "")

	res := h.Resolution(r.Context(), sess)
	if h.logger != nil {
		h.logger.Info("operator logged in",
			slog.String("username", req.Username),
			slog.Bool("is_admin", res.IsAdmin))
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		GateState:     res.State.String(),
		IsAdmin:       res.IsAdmin,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	h.sessions.Destroy(sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Resolution returns the gate outcome for the session, computing it on
// first use and persisting it in the session so the capability is derived
// exactly once per credential. A failed fetch is also persisted: it reads
// as not-admin and is not retried until the next login.
func (h *Handler) Resolution(ctx context.Context, sess *session.Session) gate.Resolution {
	if sess.Credential() == "" {
		return gate.Resolution{State: gate.StateUnresolved}
	}
	switch sess.Get(gateStateKey) {
	case "resolved":
		isAdmin, _ := strconv.ParseBool(sess.Get(gateAdminKey))
		return gate.Resolution{State: gate.StateResolved, IsAdmin: isAdmin}
	case "failed":
		return gate.Resolution{State: gate.StateFailed}
	}

	g := gate.New(h.authority, h.logger)
	g.SetCredential(sess.Credential())
	res := g.Resolve(ctx)
	switch res.State {
	case gate.StateResolved:
		sess.Set(gateStateKey, "resolved")
		sess.Set(gateAdminKey, strconv.FormatBool(res.IsAdmin))
	case gate.StateFailed:
		sess.Set(gateStateKey, "failed")
		h.metrics.GateResolutionFailed()
	}
	return res
}

// RequireAdmin hides privileged surfaces from sessions whose gate did not
// resolve to admin.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		res := h.Resolution(r.Context(), sess)
		if !res.IsAdmin {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "administrative role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
