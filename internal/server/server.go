// Package server provides the HTTP server for the SiteSmith API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sitesmith-ai/sitesmith/internal/admin"
	"github.com/sitesmith-ai/sitesmith/internal/cache"
	"github.com/sitesmith-ai/sitesmith/internal/generate"
	"github.com/sitesmith-ai/sitesmith/internal/project"
	"github.com/sitesmith-ai/sitesmith/internal/provider"
	"github.com/sitesmith-ai/sitesmith/internal/storage"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for SSE
	}
}

// Server is the HTTP server.
type Server struct {
	config      *Config
	router      *chi.Mux
	httpSrv     *http.Server
	appConfig   *types.Config
	projects    *project.Service
	providerReg *provider.Registry
	generator   *generate.Generator
}

// New creates a new Server instance. responseCache and forwarder may be nil.
func New(cfg *Config, appConfig *types.Config, store *storage.Store, providerReg *provider.Registry, responseCache *cache.Cache, forwarder *admin.Forwarder) *Server {
	projects := project.NewService(store)

	s := &Server{
		config:      cfg,
		router:      chi.NewRouter(),
		appConfig:   appConfig,
		projects:    projects,
		providerReg: providerReg,
		generator:   generate.New(providerReg, responseCache, projects, forwarder),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
