package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ragster/console/internal/auth"
	"github.com/ragster/console/internal/knowledgebase"
	"github.com/ragster/console/internal/observability"
	"github.com/ragster/console/internal/permissions"
	"github.com/ragster/console/internal/platform/httpx"
	"github.com/ragster/console/internal/roles"
	"github.com/ragster/console/internal/session"
	"github.com/ragster/console/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *session.Manager
	CSRFManager    *session.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler          *auth.Handler
	RolesHandler         *roles.Handler
	PermissionsHandler   *permissions.Handler
	UsersHandler         *users.Handler
	KnowledgeBaseHandler *knowledgebase.Handler
}

// NewRouter constructs the chi.Router with console defaults. Everything
// under /dashboard sits behind the edge guard; the role, permission and
// user surfaces additionally require the admin capability.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Unauthenticated entry point. Authenticated sessions are pointed at
	// the dashboard instead.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess.Credential() != "" {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"service":       "ragster-console",
			"authenticated": false,
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(RequireSession)

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			sess := session.FromContext(req.Context())
			res := params.AuthHandler.Resolution(req.Context(), sess)
			httpx.JSON(w, http.StatusOK, map[string]any{
				"authenticated": true,
				"is_admin":      res.IsAdmin,
			})
		})

		r.Route("/knowledgebases", params.KnowledgeBaseHandler.MountRoutes)

		// Privileged surfaces: hidden unless the gate resolved to admin.
		r.Group(func(r chi.Router) {
			r.Use(params.AuthHandler.RequireAdmin)
			r.Route("/roles", params.RolesHandler.MountRoutes)
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			r.Route("/users", params.UsersHandler.MountRoutes)
		})
	})

	return r
}
