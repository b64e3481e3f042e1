package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/marquee-cms/marquee/internal/accounts"
	"github.com/marquee-cms/marquee/internal/activity"
	"github.com/marquee-cms/marquee/internal/auth"
	"github.com/marquee-cms/marquee/internal/authz"
	"github.com/marquee-cms/marquee/internal/festivals"
	"github.com/marquee-cms/marquee/internal/observability"
	"github.com/marquee-cms/marquee/internal/pages"
	"github.com/marquee-cms/marquee/internal/shared"
	"github.com/marquee-cms/marquee/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authz          authz.Middleware

	AuthHandler      *auth.Handler
	AccountsHandler  *accounts.Handler
	FestivalsHandler *festivals.Handler
	PagesHandler     *pages.Handler
	ActivityHandler  *activity.Handler
	AuthzHandler     *authz.Handler
	JobHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Marquee defaults.
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

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires an authenticated principal. The principal is
	// loaded fresh from storage per request so role or status changes take
	// effect immediately.
	r.Group(func(r chi.Router) {
		r.Use(params.Authz.WithPrincipal)

		r.Route("/accounts", params.AccountsHandler.MountRoutes)
		if params.FestivalsHandler != nil {
			r.Route("/festivals", params.FestivalsHandler.MountRoutes)
		}
		if params.PagesHandler != nil {
			r.Route("/pages", params.PagesHandler.MountRoutes)
		}
		if params.ActivityHandler != nil {
			r.Route("/activity", params.ActivityHandler.MountRoutes)
		}
		if params.AuthzHandler != nil {
			params.AuthzHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.Authz.Require(authz.PermSystemMaintenance))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
