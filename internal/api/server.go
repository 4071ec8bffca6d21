package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/todmy/doc-reconciler/internal/auth"
	"github.com/todmy/doc-reconciler/internal/registry"
	"github.com/todmy/doc-reconciler/internal/workspace"
)

// ServerConfig holds server dependencies
type ServerConfig struct {
	Registry  *registry.Registry
	Workspace *workspace.Workspace
	// JWTSecret enables bearer-token verification on /api/v1 when set.
	// Token issuing is handled by an external identity service.
	JWTSecret string
}

type Server struct {
	router    *chi.Mux
	registry  *registry.Registry
	workspace *workspace.Workspace
	verifier  *auth.Verifier
}

func NewServer(cfg ServerConfig) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:    r,
		registry:  cfg.Registry,
		workspace: cfg.Workspace,
	}
	if cfg.JWTSecret != "" {
		s.verifier = auth.NewVerifier(cfg.JWTSecret)
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		if s.verifier != nil {
			r.Use(auth.Middleware(s.verifier))
		}

		r.Get("/conflicts", s.handleListConflicts)
		r.Get("/conflicts/{conflictID}", s.handleGetConflict)

		r.Route("/workspace", func(r chi.Router) {
			r.Get("/", s.handleWorkspace)
			r.Post("/select", s.handleSelect)
			r.Post("/resolve", s.handleStartResolution)
			r.Post("/resolve/manual", s.handleStartManual)
			r.Post("/cancel", s.handleCancel)
			r.Post("/draft", s.handleUpdateDraft)
			r.Post("/draft/edits/{mentionID}", s.handleUpdateManualEdit)
			r.Get("/preview", s.handleGetPreview)
			r.Post("/preview", s.handlePreview)
			r.Post("/edit", s.handleReturnToEdit)
			r.Post("/submit", s.handleSubmit)
			r.Post("/advance", s.handleAdvance)
		})

		r.Get("/export", s.handleExport)
	})
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
