package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ericytex/barcode-gene-backend/src/config"
	"github.com/ericytex/barcode-gene-backend/src/database"
	"github.com/ericytex/barcode-gene-backend/src/logging"
	"github.com/ericytex/barcode-gene-backend/src/metrics"
	"github.com/ericytex/barcode-gene-backend/src/router"
	"github.com/ericytex/barcode-gene-backend/src/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("tls", cfg.TLSEnabled()).
		Msg("starting server")

	// An empty key would make every request pass the constant-time
	// comparison with an empty header. Refuse to boot instead.
	if cfg.APIKey == "" {
		log.Fatal().Msg("API_KEY must be set")
	}

	// Ensure working directories exist before anything touches them
	dirs := []string{
		filepath.Dir(cfg.DatabasePath),
		cfg.BarcodeDir, cfg.PDFDir, cfg.UploadDir, cfg.ArchiveDir, cfg.LogsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabasePath)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.DatabasePath).Msg("database connected")

	// Label layout: built-in defaults, optionally overridden from YAML
	layout, err := services.LoadLabelLayout(cfg.LabelConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LabelConfigPath).Msg("failed to load label layout")
	}

	renderer, err := services.NewLabelRenderer(layout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize label renderer")
	}

	// Initialize services
	pdfService := services.NewPDFService(db, cfg.BarcodeDir, cfg.PDFDir)
	archiveService := services.NewArchiveService(db, cfg.BarcodeDir, cfg.PDFDir, cfg.ArchiveDir)
	barcodeService := services.NewBarcodeService(db, renderer, pdfService, archiveService, cfg.BarcodeDir, cfg.LogsDir, cfg.Workers)
	excelService := services.NewExcelService()

	// Purge stale uploads and leftover outputs from interrupted runs
	archiveService.CleanupOldFiles([]string{cfg.UploadDir, cfg.BarcodeDir, cfg.PDFDir}, 24*time.Hour)

	m := metrics.New()

	engine := router.New(cfg, router.Services{
		DB:       db,
		Barcodes: barcodeService,
		Excel:    excelService,
		PDF:      pdfService,
		Archive:  archiveService,
		Metrics:  m,
	})

	// HTTP server with timeouts to protect from slow clients
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		var err error
		if cfg.TLSEnabled() {
			log.Info().Str("addr", srv.Addr).Msg("server listening (https)")
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			log.Info().Str("addr", srv.Addr).Msg("server listening")
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shut down successfully")
}
