package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/clausecheck/internal/config"
	"github.com/dgallion1/clausecheck/internal/metrics"
	"github.com/dgallion1/clausecheck/internal/parser"
	"github.com/dgallion1/clausecheck/internal/pipeline"
)

// Server is the HTTP API server for clausecheck.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	reviewer     *pipeline.Reviewer
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. m may be nil, in which
// case /metrics is not served.
func NewServer(orch *pipeline.Orchestrator, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		orchestrator: orch,
		reviewer:     orch.Reviewer(),
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(MetricsMiddleware(s.metrics))
	}

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/packs", s.handleListPacks)
		r.Get("/api/rules", s.handleListRules)

		r.Post("/api/review", s.handleReview)
		r.Post("/api/review/upload", s.handleUpload)
		r.Get("/api/review/{jobID}/status", s.handleUploadStatus)

		r.Get("/api/reviews", s.handleListReviews)
		r.Get("/api/reviews/{id}", s.handleGetReview)
		r.Get("/api/reviews/{id}/report", s.handleReviewReport)
		r.Post("/api/reviews/{id}/findings/{findingID}/resolve", s.handleResolveFinding)

		r.Post("/api/highlight", s.handleHighlight)
		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/compare", s.handleCompare)
		r.Post("/api/analyze-clause", s.handleAnalyzeClause)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) parserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
