package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// pipelineTimeout covers a full sequential fallback run with its pacing delays.
const pipelineTimeout = 3 * time.Minute

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(pipelineTimeout))

	r.Get("/", s.handleDocs)
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/search", s.handleSearch)
		r.Post("/inspect", s.handleInspect)
	})

	return r
}
