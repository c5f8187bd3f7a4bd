package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stocktide/stocktide/internal/auth"
	"github.com/stocktide/stocktide/internal/catalog"
	"github.com/stocktide/stocktide/internal/importer"
	"github.com/stocktide/stocktide/internal/stock"
	"github.com/stocktide/stocktide/internal/summary"
	"github.com/stocktide/stocktide/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	CatalogHandler  *catalog.Handler
	StockHandler    *stock.Handler
	SummaryHandler  *summary.Handler
	ImporterHandler *importer.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with stocktide defaults. Everything
// under /api except login requires a session token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.AuthService.RequireSession)

			r.Route("/catalog", func(r chi.Router) {
				params.CatalogHandler.MountRoutes(r)
			})
			r.Route("/transactions", func(r chi.Router) {
				params.StockHandler.MountRoutes(r)
			})
			r.Route("/summary", func(r chi.Router) {
				params.SummaryHandler.MountRoutes(r)
			})
			r.Route("/import", func(r chi.Router) {
				params.ImporterHandler.MountRoutes(r)
			})
			if params.JobHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					params.JobHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}
