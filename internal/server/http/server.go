// Package httpserver provides the HTTP REST API server for the job board service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/helixir/job-board-service/internal/database"
	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/search"
)

// JobPostService is the job post write path. *jobpost.Service satisfies it.
type JobPostService interface {
	List(ctx context.Context, userID string) []domain.JobPostDTO
	Get(ctx context.Context, id, userID string) *domain.JobPostDTO
	Create(ctx context.Context, userID string, params domain.JobPostParams) (*domain.JobPostDTO, error)
	Update(ctx context.Context, id, userID string, params domain.JobPostParams) (*domain.JobPostDTO, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// JobPostSearcher serves paginated job post searches.
// *search.Gateway[domain.JobPostDTO] satisfies it.
type JobPostSearcher interface {
	Search(ctx context.Context, index string, page, pageSize int, query map[string]any) domain.Result[search.Page[domain.JobPostDTO]]
}

// HealthChecker reports store health. *database.DB satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// SearchPinger reports whether the search engine answers.
// *search.ElasticEngine satisfies it.
type SearchPinger interface {
	Ping(ctx context.Context) error
}

var _ SearchPinger = (*search.ElasticEngine)(nil)

// readinessTimeout bounds the search engine ping of /readyz.
const readinessTimeout = 5 * time.Second

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	jobPosts   JobPostService
	searcher   JobPostSearcher
	health     HealthChecker
	searchPing SearchPinger
	validate   *validator.Validate
	cfg        Config
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// SearchIndex is the index queried by the search endpoint.
	SearchIndex string
	// DefaultPageSize applies when a search omits page_size.
	DefaultPageSize int
	// MaxPageSize caps page_size.
	MaxPageSize int
}

// NewServer creates a new HTTP server with all dependencies.
// searchPing may be nil, in which case readiness ignores the search engine.
func NewServer(
	cfg Config,
	jobPosts JobPostService,
	searcher JobPostSearcher,
	health HealthChecker,
	searchPing SearchPinger,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		jobPosts:   jobPosts,
		searcher:   searcher,
		health:     health,
		searchPing: searchPing,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		cfg:        cfg,
		logger:     logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestContextMiddleware)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(jsonContentTypeMiddleware)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/job-posts/search", s.searchJobPosts)

		r.Route("/users/{userID}/job-posts", func(r chi.Router) {
			r.Use(userContextMiddleware)

			r.Get("/", s.listJobPosts)
			r.Post("/", s.createJobPost)
			r.Get("/{jobPostID}", s.getJobPost)
			r.Put("/{jobPostID}", s.updateJobPost)
			r.Delete("/{jobPostID}", s.deleteJobPost)
		})
	})

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports ready only while the job post store and, when
// configured, the search engine answer.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ready := true
	resp := map[string]string{}

	health := s.health.Health(r.Context())
	resp["database"] = health.Status
	if !health.Healthy() {
		ready = false
		resp["database_error"] = health.Error
	}

	if s.searchPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := s.searchPing.Ping(ctx); err != nil {
			ready = false
			resp["search"] = database.StatusUnhealthy
			resp["search_error"] = err.Error()
		} else {
			resp["search"] = database.StatusHealthy
		}
	}

	if !ready {
		resp["status"] = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["status"] = "ready"
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are already sent; nothing useful can be done with an encode error.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}
