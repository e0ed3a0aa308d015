// Package server implements the treecontrast HTTP API.
//
// The API accepts inline tree and trait documents, runs the contrast
// pipeline, and persists each computation as a run that can be fetched
// later:
//
//	POST   /api/v1/contrasts   compute contrasts, persist and return a run
//	GET    /api/v1/runs        list persisted runs
//	GET    /api/v1/runs/{id}   fetch one run
//	DELETE /api/v1/runs/{id}   delete one run
//	GET    /healthz            liveness probe
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/treecontrast/pkg/pipeline"
	"github.com/matzehuels/treecontrast/pkg/store"
)

// Server wires the pipeline runner and run store behind the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// New creates a server. A nil store disables persistence endpoints' storage
// backend and is replaced with an in-memory store; a nil logger uses the
// default.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		store:  st,
		logger: logger,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/contrasts", s.handleCompute)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
	})

	return r
}
