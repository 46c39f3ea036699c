package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericytex/barcode-gene-backend/src/database"
)

var startTime = time.Now()

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db *database.Database
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleLiveness reports process health only. It deliberately touches
// neither the database nor the filesystem: an orchestrator must not
// restart a healthy process because a dependency is degraded, and the
// probe must answer even when the API key is misconfigured.
func (hh *HealthHandler) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "barcode-generator-api",
		"uptime":  time.Since(startTime).String(),
	})
}

// HandleAPIInfo answers the bare root with a map of the API surface so a
// client poking the service can find its way
func (hh *HealthHandler) HandleAPIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Barcode Generator API",
		"version": "1.0.0",
		"health":  "/healthz",
		"endpoints": gin.H{
			"generate_barcodes": "/api/barcodes/generate",
			"upload_excel":      "/api/barcodes/upload-excel",
			"list_files":        "/api/barcodes/list",
			"download_file":     "/api/barcodes/download/{filename}",
			"download_pdf":      "/api/barcodes/download-pdf/{filename}",
			"create_pdf":        "/api/barcodes/create-pdf",
		},
	})
}

// HandleReady reports dependency readiness (for load balancers); unlike
// liveness it pings the database
func (hh *HealthHandler) HandleReady(c *gin.Context) {
	if err := hh.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ready":    false,
			"database": "disconnected",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ready":    true,
		"database": "connected",
	})
}
