package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericytex/barcode-gene-backend/src/services"
)

// respondError emits the stable error body shape: a machine-readable kind
// plus a human-readable message. Messages never contain filesystem paths
// or the shared secret.
func respondError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{
		"error":   kind,
		"message": message,
	})
}

// respondServiceError maps service failures onto the error taxonomy. A
// specific code always wins over a generic 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "timeout", "the operation did not complete in time")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written, but close the
		// request with a sensible status for the access log.
		respondError(c, 499, "canceled", "request canceled")
	case errors.Is(err, services.ErrFileNotFound), errors.Is(err, sql.ErrNoRows):
		respondError(c, http.StatusNotFound, "not_found", "file not found")
	case errors.Is(err, services.ErrNoLabelImages):
		respondError(c, http.StatusNotFound, "not_found", "no barcode images found to create PDF")
	case errors.Is(err, services.ErrNoBarcodesGenerated):
		respondError(c, http.StatusBadRequest, "bad_request", "no barcodes were generated, check your input data")
	case errors.Is(err, services.ErrInvalidFileType):
		respondError(c, http.StatusBadRequest, "bad_request", "only Excel files (.xlsx, .xls) are supported")
	case errors.Is(err, services.ErrInvalidFilename):
		respondError(c, http.StatusBadRequest, "bad_request", "invalid filename")
	case errors.Is(err, services.ErrEmptyWorkbook):
		respondError(c, http.StatusBadRequest, "bad_request", "the workbook contains no data rows")
	default:
		respondError(c, http.StatusInternalServerError, "backend_failure", "the operation failed")
	}
}
