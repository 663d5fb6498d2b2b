package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/mboard/backend/internal/setup"
	"github.com/itchan-dev/mboard/shared/domain"
	mw "github.com/itchan-dev/mboard/shared/middleware"
	"github.com/itchan-dev/mboard/shared/middleware/metrics"
)

// New creates the chi router with all the routes.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mw.RequestId)
	r.Use(metrics.Middleware)
	r.Use(mw.AccessLog)
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureCookies))

	if origins := deps.Config.Public.CorsOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIdHeader},
			ExposedHeaders:   []string{mw.RequestIdHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.NeedAuth())

		reader := mw.RequireScope(domain.ScopeReader)
		writer := mw.RequireScope(domain.ScopeWriter)
		editor := mw.RequireScope(domain.ScopeEditor)

		r.With(reader).Get("/threads", h.ListThreads)
		r.With(writer).Post("/threads", h.CreateThread)
		r.With(editor).Put("/threads/lock", h.SetThreadLock)
		r.With(editor).Put("/threads/pin", h.SetThreadPin)

		r.With(reader).Get("/messages", h.ListMessages)
		r.With(writer).Post("/messages", h.PostMessage)
		r.With(writer).Put("/messages", h.EditMessage)
		r.With(writer).Delete("/messages", h.DeleteMessage)
	})

	return r
}
