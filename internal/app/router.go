package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/employees"
	"github.com/meridian-hrm/meridian-hrm/internal/gate"
	"github.com/meridian-hrm/meridian-hrm/internal/observability"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/rbac"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Gateway          *gate.Gateway
	AuthHandler      *auth.Handler
	RBACHandler      *rbac.Handler
	EmployeesHandler *employees.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults. The gateway
// runs ahead of every route; paths outside the route table pass through.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Gateway.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The login entry point the gateway redirects to. Page rendering lives
	// elsewhere; this surface only speaks JSON.
	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"login": "POST /auth/login"})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/api/admin", params.RBACHandler.MountRoutes)
	r.Route("/api/hr/employees", params.EmployeesHandler.MountHRRoutes)
	r.Route("/api/employee", params.EmployeesHandler.MountEmployeeRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
