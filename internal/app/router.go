package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/credisphere/credisphere/internal/auth"
	"github.com/credisphere/credisphere/internal/membership/categories"
	"github.com/credisphere/credisphere/internal/membership/clubs"
	"github.com/credisphere/credisphere/internal/membership/competitions"
	"github.com/credisphere/credisphere/internal/membership/parties"
	"github.com/credisphere/credisphere/internal/membership/powerteams"
	"github.com/credisphere/credisphere/internal/observability"
	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
	"github.com/credisphere/credisphere/internal/users"
	"github.com/credisphere/credisphere/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	Metrics             *observability.Metrics
	AuthHandler         *auth.Handler
	RolesHandler        *rbac.Handler
	UsersHandler        *users.Handler
	ClubsHandler        *clubs.Handler
	PartiesHandler      *parties.Handler
	CompetitionsHandler *competitions.Handler
	PowerTeamsHandler   *powerteams.Handler
	CategoriesHandler   *categories.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with CrediSphere defaults. Everything
// except /healthz, /metrics and POST /auth/login requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.With(httprate.LimitByIP(20, time.Minute)).Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthHandler.Middleware().Authenticate)
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.ClubsHandler != nil {
			r.Route("/clubs", params.ClubsHandler.MountRoutes)
		}
		if params.PartiesHandler != nil {
			r.Route("/parties", params.PartiesHandler.MountRoutes)
		}
		if params.CompetitionsHandler != nil {
			r.Route("/competitions", params.CompetitionsHandler.MountRoutes)
		}
		if params.PowerTeamsHandler != nil {
			r.Route("/power-teams", params.PowerTeamsHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
