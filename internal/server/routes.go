package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	// Project routes
	r.Route("/project", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.getProject)
			r.Delete("/", s.deleteProject)

			r.Get("/transcript", s.getTranscript)
			r.Post("/generate", s.generateProject)

			r.Get("/event", s.projectEvents)
		})
	})

	// Event streaming (SSE)
	r.Get("/event", s.globalEvents)

	// Providers and models
	r.Get("/provider", s.listProviders)
	r.Get("/model", s.listModels)

	// Configuration
	r.Get("/config", s.getConfig)

	// Health
	r.Get("/health", s.health)
}
