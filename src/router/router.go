package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ericytex/barcode-gene-backend/src/config"
	"github.com/ericytex/barcode-gene-backend/src/database"
	"github.com/ericytex/barcode-gene-backend/src/handlers"
	"github.com/ericytex/barcode-gene-backend/src/metrics"
	"github.com/ericytex/barcode-gene-backend/src/middleware"
	"github.com/ericytex/barcode-gene-backend/src/services"
)

// Services bundles the collaborators the route handlers depend on.
type Services struct {
	DB       *database.Database
	Barcodes *services.BarcodeService
	Excel    *services.ExcelService
	PDF      *services.PDFService
	Archive  *services.ArchiveService
	Metrics  *metrics.Metrics
}

// operation is one API route. Every operation is mounted twice: once under
// the current namespace and once under the legacy /api prefix, so both
// resolve to the same handler.
type operation struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// New builds the Gin engine with middleware and all routes mounted.
func New(cfg *config.Config, svc Services) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())
	router.Use(svc.Metrics.GinMiddleware())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.APIKeyHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	setupRoutes(router, cfg, svc)

	return router
}

func setupRoutes(router *gin.Engine, cfg *config.Config, svc Services) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(svc.DB)
	barcodeHandler := handlers.NewBarcodeHandler(
		svc.Barcodes, svc.Excel, svc.PDF, svc.Metrics,
		cfg.BarcodeDir, cfg.PDFDir, cfg.UploadDir, cfg.BackendTimeout,
	)
	databaseHandler := handlers.NewDatabaseHandler(svc.DB)
	archiveHandler := handlers.NewArchiveHandler(svc.Archive)

	// Liveness and readiness stay outside authentication so orchestrators
	// can probe without credentials.
	router.GET("/", healthHandler.HandleAPIInfo)
	router.GET("/health", healthHandler.HandleLiveness)
	router.GET("/healthz", healthHandler.HandleLiveness)
	router.GET("/ready", healthHandler.HandleReady)
	router.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))

	bodyLimit := middleware.MaxBodySize(cfg.MaxUploadSize)

	ops := []operation{
		{"POST", "/barcodes/generate", barcodeHandler.HandleGenerate},
		{"POST", "/barcodes/upload-excel", chain(bodyLimit, barcodeHandler.HandleUploadExcel)},
		{"GET", "/barcodes/list", barcodeHandler.HandleListFiles},
		{"GET", "/barcodes/download/:filename", barcodeHandler.HandleDownload},
		{"GET", "/barcodes/download-pdf/:filename", barcodeHandler.HandleDownloadPDF},
		{"POST", "/barcodes/create-pdf", barcodeHandler.HandleCreatePDF},
		{"GET", "/database/files", databaseHandler.HandleListFiles},
		{"GET", "/database/file/:filename", databaseHandler.HandleGetFile},
		{"GET", "/archive/statistics", archiveHandler.HandleStatistics},
		{"GET", "/archive/sessions", archiveHandler.HandleListSessions},
		{"GET", "/archive/session/:session_id/files", archiveHandler.HandleSessionFiles},
	}

	authed := []gin.HandlerFunc{
		middleware.RequireAPIKey(cfg.APIKey),
		middleware.NewIPRateLimitingMiddleware(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
	}

	// Same operation table mounted on both namespaces keeps the legacy
	// prefix in lockstep with the current one.
	current := router.Group("", authed...)
	legacy := router.Group("/api", authed...)
	for _, op := range ops {
		current.Handle(op.method, op.path, op.handler)
		legacy.Handle(op.method, op.path, op.handler)
	}
}

// chain runs a middleware inline before the final handler for routes that
// need per-route middleware while staying in the shared operation table.
func chain(mw gin.HandlerFunc, final gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		mw(c)
		if c.IsAborted() {
			return
		}
		final(c)
	}
}
