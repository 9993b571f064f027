package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/meltforce/splits/internal/ingest/splitcsv"
	"github.com/meltforce/splits/internal/storage"
	"github.com/meltforce/splits/internal/training"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc        *training.Service
	splits     *splitcsv.Provider
	importLogs storage.ImportLogStore
	log        *slog.Logger
	apiKey     string
	router     chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *training.Service, splits *splitcsv.Provider, importLogs storage.ImportLogStore, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:        svc,
		splits:     splits,
		importLogs: importLogs,
		log:        log,
		apiKey:     apiKey,
		router:     chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(CORS)

	// Stateless calculator endpoints
	s.router.Post("/api/v1/segments/augment", s.handleAugment)
	s.router.Post("/api/v1/segments/total", s.handleTotal)
	s.router.Get("/api/v1/paces", s.handleNamedPaces)
	s.router.Get("/api/v1/paces/resolve", s.handleResolvePace)
	s.router.Get("/api/v1/paces/400", s.handlePace400)

	s.router.Route("/api/v1/trainings", func(r chi.Router) {
		r.Get("/", s.handleListTrainings)
		r.Get("/{id}", s.handleGetTraining)
		r.Get("/{id}/total", s.handleTrainingTotal)
		r.Post("/{id}/segments/{segmentID}/dirty", s.handleSegmentDirty)

		// Writes (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleCreateTraining)
			r.Delete("/{id}", s.handleDeleteTraining)
			r.Post("/{id}/segments", s.handleAddSegment)
			r.Put("/{id}/segments/{segmentID}", s.handleUpdateSegment)
			r.Delete("/{id}/segments/{segmentID}", s.handleRemoveSegment)
			r.Post("/{id}/import", s.handleImport)
		})
	})

	s.router.Get("/api/v1/import-logs", s.handleImportLogs)
}
