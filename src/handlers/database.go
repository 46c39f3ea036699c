package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericytex/barcode-gene-backend/src/database"
)

// DatabaseHandler exposes read access to the barcode file catalog
type DatabaseHandler struct {
	db *database.Database
}

// NewDatabaseHandler creates a new database handler
func NewDatabaseHandler(db *database.Database) *DatabaseHandler {
	return &DatabaseHandler{db: db}
}

// HandleListFiles returns every recorded file, newest first
func (dh *DatabaseHandler) HandleListFiles(c *gin.Context) {
	files, err := dh.db.GetAllFiles(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"files":       files,
		"total_count": len(files),
	})
}

// HandleGetFile returns the catalog record for a single filename
func (dh *DatabaseHandler) HandleGetFile(c *gin.Context) {
	safeName, err := sanitizeFilename(c.Param("filename"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	record, err := dh.db.GetFileByFilename(c.Request.Context(), safeName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, "not_found", "file record not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    record,
	})
}
