package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-campus/meridian/internal/admissions"
	"github.com/meridian-campus/meridian/internal/catalog"
	"github.com/meridian-campus/meridian/internal/ledger"
	"github.com/meridian-campus/meridian/internal/observability"
	"github.com/meridian-campus/meridian/internal/reports"
	"github.com/meridian-campus/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	CatalogHandler    *catalog.Handler
	AdmissionsHandler *admissions.Handler
	LedgerHandler     *ledger.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
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

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.CatalogHandler != nil {
		r.Route("/courses", params.CatalogHandler.MountRoutes)
	}
	if params.AdmissionsHandler != nil {
		r.Route("/admissions", func(r chi.Router) {
			params.AdmissionsHandler.MountRoutes(r)
			if params.LedgerHandler != nil {
				params.LedgerHandler.MountAdmissionRoutes(r)
			}
		})
	}
	if params.LedgerHandler != nil {
		r.Route("/receipts", params.LedgerHandler.MountReceiptRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
