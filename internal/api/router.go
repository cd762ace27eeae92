package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/GovDesign/internal/hermes"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

func NewRouter(p *scoring.Provider, s store.Store, ws *weights.Store, h hermes.Client, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(600))

	reference := NewReferenceHandler(p)
	scores := NewScoringHandler(p)
	projects := NewProjectsHandler(s, p, h, logger)
	weightConfigs := NewWeightsHandler(s, ws, p, h, logger)
	transfer := NewTransferHandler(s, ws, h, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/reference/objectives", reference.Objectives)
		r.Get("/reference/factors", reference.Factors)
		r.Get("/reference/defaults", reference.Defaults)
		r.Get("/reference/baselines", reference.Baselines)

		r.Post("/score/{factorId}", scores.Score)
		r.Post("/scope/initial", scores.InitialScope)
		r.Post("/scope/refined", scores.RefinedScope)
		r.Post("/capability", scores.Capability)
		r.Post("/stats/{factorId}", scores.Stats)
		r.Post("/canvas", scores.Canvas)

		r.Post("/projects", projects.Create)
		r.Get("/projects", projects.List)
		r.Get("/projects/{id}", projects.Get)
		r.Put("/projects/{id}", projects.Update)
		r.Delete("/projects/{id}", projects.Delete)
		r.Get("/projects/{id}/canvas", projects.GetCanvas)
		r.Put("/projects/{id}/canvas", projects.SaveCanvas)
		r.Post("/projects/{id}/canvas/report", projects.CanvasReport)
		r.Get("/projects/{id}/export", projects.Export)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/weights", weightConfigs.List)
			r.Post("/weights", weightConfigs.Create)
			r.Get("/weights/active", weightConfigs.Active)
			r.Delete("/weights/active", weightConfigs.Deactivate)
			r.Get("/weights/factors/{factorId}", weightConfigs.FactorWeights)
			r.Get("/weights/{id}", weightConfigs.Get)
			r.Put("/weights/{id}", weightConfigs.Update)
			r.Delete("/weights/{id}", weightConfigs.Delete)
			r.Post("/weights/{id}/activate", weightConfigs.Activate)

			r.Get("/export", transfer.Export)
			r.Post("/import", transfer.Import)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
