// Package server provides the HTTP API for GPW Digest.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/config"
	"github.com/xHezuSx/gpwdigest/internal/index"
	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/storage"
)

// RunTrigger starts one scrape-summarize-report run. The job runner
// implements it; tests substitute a fake.
type RunTrigger interface {
	Run(ctx context.Context, jobCfg config.JobConfig, dateFrom, dateTo string) (*models.CollectiveReport, error)
}

// Server is the HTTP server for the GPW Digest API.
type Server struct {
	storage storage.Storage
	index   *index.ReportIndex
	runner  RunTrigger
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. index and runner
// may be nil; the matching endpoints then respond 501.
func NewServer(
	store storage.Storage,
	idx *index.ReportIndex,
	runner RunTrigger,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		storage: store,
		index:   idx,
		runner:  runner,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Runs wait for model inference, which can take minutes for a large batch.
	r.Use(middleware.Timeout(30 * time.Minute))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/runs", s.handleTriggerRun)
	r.Get("/api/v1/reports", s.handleListReports)
	r.Get("/api/v1/reports/search", s.handleSearchReports)
	r.Get("/api/v1/reports/{id}", s.handleGetReport)
	r.Get("/api/v1/executions", s.handleListExecutions)
	r.Get("/api/v1/jobs", s.handleListJobs)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
