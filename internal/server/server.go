// Package server exposes the bill-extraction pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/bill-extraction/internal/export"
	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
	"github.com/joseph-ayodele/bill-extraction/internal/llm"
	"github.com/joseph-ayodele/bill-extraction/internal/ocr"
	"github.com/joseph-ayodele/bill-extraction/internal/repository"
	"github.com/joseph-ayodele/bill-extraction/internal/validation"
)

type Config struct {
	DownloadTimeout  time.Duration
	MaxDownloadBytes int64
}

func (c Config) withDefaults() Config {
	if c.DownloadTimeout <= 0 {
		c.DownloadTimeout = 30 * time.Second
	}
	if c.MaxDownloadBytes <= 0 {
		c.MaxDownloadBytes = 20 << 20
	}
	return c
}

// PageReader produces OCR output for one image on disk. *ocr.Extractor is
// the production implementation; tests substitute a stub.
type PageReader interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// Deps are the pipeline collaborators the server wires together. Items and
// Jobs may be nil: without Items every request takes the heuristic path,
// and without Jobs nothing is persisted and export returns 404.
type Deps struct {
	Pages     PageReader
	Heuristic *extraction.Extractor
	Validator *validation.Pipeline
	Items     llm.ItemExtractor
	Jobs      repository.ExtractionJobRepository
	Exporter  *export.Service
}

type Server struct {
	cfg        Config
	deps       Deps
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Server{
		cfg:        cfg,
		deps:       deps,
		httpClient: &http.Client{Timeout: cfg.DownloadTimeout},
		logger:     logger,
	}
}

// Routes builds the gin engine with all endpoints registered.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/health", s.handleHealth)
	r.POST("/extract-bill-data", s.handleExtractBill)
	r.GET("/extraction-jobs/:id/export", s.handleExportJob)
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
