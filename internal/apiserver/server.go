// Package apiserver exposes the diff/validate/autofix core as a local
// HTTP service, for callers that prefer a request/response loop over
// embedding this module directly. It owns no domain logic: every
// handler is a thin adapter onto internal/diff, internal/validate, and
// internal/autofix.
package apiserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
)

// Server wires the core packages to HTTP handlers. BaseURL is used to
// build the agent-card's self-referential URL.
type Server struct {
	Catalog  catalog.Catalog
	Registry breaking.Registry
	BaseURL  string
}

// NewServer builds a Server backed by cat and reg.
func NewServer(cat catalog.Catalog, reg breaking.Registry) *Server {
	return &Server{Catalog: cat, Registry: reg}
}

// Handler builds the chi router: logger/recoverer middleware,
// permissive CORS, then grouped routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/diff", s.handleDiff)
		r.Post("/autofix", s.handleAutofix)
	})

	r.Route("/a2a", func(r chi.Router) {
		r.Get("/agent-card", s.handleAgentCard)
	})

	return r
}
