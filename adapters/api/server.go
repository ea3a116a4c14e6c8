package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"perfeval/app"
	"perfeval/internal"
	"perfeval/ports"
)

// Server exposes the evaluation service over HTTP.
type Server struct {
	router  *chi.Mux
	service *app.EvaluationService
	repo    ports.EvaluationRepository
	logger  *internal.Logger
}

func NewServer(service *app.EvaluationService, repo ports.EvaluationRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		repo:    repo,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/measures", s.handleListMeasures)
	s.router.Post("/api/evaluate", s.handleEvaluate)
	if s.repo != nil {
		s.router.Get("/api/evaluations", s.handleListEvaluations)
		s.router.Get("/api/evaluations/{id}", s.handleGetEvaluation)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
