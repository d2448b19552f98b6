// billd is the bill-extraction HTTP service: it downloads a bill image,
// preprocesses it, runs OCR, extracts line items (LLM when configured,
// positional heuristic otherwise), validates them, and serves the result.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/bill-extraction/internal/common"
	"github.com/joseph-ayodele/bill-extraction/internal/export"
	"github.com/joseph-ayodele/bill-extraction/internal/extraction"
	"github.com/joseph-ayodele/bill-extraction/internal/llm"
	"github.com/joseph-ayodele/bill-extraction/internal/llm/groq"
	"github.com/joseph-ayodele/bill-extraction/internal/ocr"
	"github.com/joseph-ayodele/bill-extraction/internal/repository"
	"github.com/joseph-ayodele/bill-extraction/internal/server"
	"github.com/joseph-ayodele/bill-extraction/internal/validation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := server.Deps{
		Pages: ocr.NewExtractor(ocr.Config{
			Tesseract:   cfg.OCR.Tesseract,
			Lang:        cfg.OCR.Lang,
			TessdataDir: cfg.OCR.TessdataDir,
			PSM:         cfg.OCR.PSM,
			OEM:         cfg.OCR.OEM,
		}, logger),
		Heuristic: extraction.NewExtractor(extraction.Config{
			RowYThreshold: cfg.Extraction.RowYThreshold,
		}, logger),
		Validator: validation.NewPipeline(validation.Config{
			OutlierSigma:        cfg.Extraction.OutlierSigma,
			LowConfidenceCutoff: cfg.Extraction.LowConfidenceCutoff,
		}, logger),
		Exporter: export.NewService(logger),
	}

	if cfg.LLM.APIKey != "" {
		client := groq.NewClient(groq.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		deps.Items = llm.ItemExtractor(client)
		logger.Info("LLM extraction enabled", "model", cfg.LLM.Model)
	} else {
		logger.Info("LLM extraction disabled, heuristic pipeline only")
	}

	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
			logger.Error("database health check failed", "error", err)
			os.Exit(1)
		}
		jobs := repository.NewExtractionJobRepository(pool, logger)
		if err := jobs.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		deps.Jobs = jobs
	} else {
		logger.Info("persistence disabled, extraction jobs will not be stored")
	}

	srv := server.New(server.Config{
		DownloadTimeout:  cfg.Server.DownloadTimeout,
		MaxDownloadBytes: cfg.Server.MaxDownloadBytes,
	}, deps, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
