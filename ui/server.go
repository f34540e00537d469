package ui

import (
	"context"
	"net/http"
	"time"

	"modelrank/adapters/excel"
	"modelrank/app"
	"modelrank/internal"
	"modelrank/internal/config"
	"modelrank/ports"

	"github.com/gin-gonic/gin"
)

// Server exposes the comparison and sweep services over HTTP
type Server struct {
	router      *gin.Engine
	comparisons *app.ComparisonService
	sweeps      *app.SweepService
	cfg         *config.Config
	logger      *internal.Logger
	datasets    ports.DatasetReader
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, comparisons *app.ComparisonService, sweeps *app.SweepService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:      gin.Default(),
		comparisons: comparisons,
		sweeps:      sweeps,
		cfg:         cfg,
		logger:      logger,
	}
	if cfg.Data.DatasetFile != "" {
		s.datasets = excel.NewDataReader(cfg.Data.DatasetFile)
	}
	s.registerRoutes()
	return s
}

// SetDatasetReader overrides the dataset source for sweep requests
func (s *Server) SetDatasetReader(r ports.DatasetReader) {
	s.datasets = r
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/comparisons", s.handleCreateComparison)
		api.GET("/comparisons", s.handleListComparisons)
		api.GET("/comparisons/:id", s.handleGetComparison)
		api.GET("/comparisons/:id/report", s.handleComparisonReport)
		api.GET("/comparisons/:id/confidence-set", s.handleConfidenceSet)
		api.POST("/sweeps", s.handleRunSweep)
	}
}

// Router returns the underlying gin engine (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API listening on :%s", s.cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
