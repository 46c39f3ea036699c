package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericytex/barcode-gene-backend/src/services"
)

// ArchiveHandler exposes archive statistics and session history
type ArchiveHandler struct {
	archive *services.ArchiveService
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(archive *services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// HandleStatistics returns aggregate counts over archived and active files
func (ah *ArchiveHandler) HandleStatistics(c *gin.Context) {
	stats, err := ah.archive.Statistics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"statistics": stats,
	})
}

// HandleListSessions returns the most recent generation sessions
func (ah *ArchiveHandler) HandleListSessions(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	if limit <= 0 {
		limit = 10
	}

	sessions, err := ah.archive.ListSessions(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": sessions,
	})
}

// HandleSessionFiles returns every file recorded under a session
func (ah *ArchiveHandler) HandleSessionFiles(c *gin.Context) {
	sessionID := c.Param("session_id")

	files, err := ah.archive.SessionFiles(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
		"files":      files,
	})
}
