package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ericytex/barcode-gene-backend/src/services"
)

func TestRespondServiceError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"deadline exceeded", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"canceled", context.Canceled, 499, "canceled"},
		{"file not found", services.ErrFileNotFound, http.StatusNotFound, "not_found"},
		{"no rows", sql.ErrNoRows, http.StatusNotFound, "not_found"},
		{"no label images", services.ErrNoLabelImages, http.StatusNotFound, "not_found"},
		{"no barcodes generated", services.ErrNoBarcodesGenerated, http.StatusBadRequest, "bad_request"},
		{"invalid file type", services.ErrInvalidFileType, http.StatusBadRequest, "bad_request"},
		{"invalid filename", services.ErrInvalidFilename, http.StatusBadRequest, "bad_request"},
		{"empty workbook", services.ErrEmptyWorkbook, http.StatusBadRequest, "bad_request"},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError, "backend_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := createTestContext()

			respondServiceError(c, tt.err)

			assertStatusCode(t, w, tt.wantStatus)
			assertJSONError(t, w, tt.wantKind)
		})
	}
}

func TestRespondServiceError_WrappedErrorsStillMap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w, c := createTestContext()

	respondServiceError(c, errors.Join(errors.New("render run"), context.DeadlineExceeded))

	assertStatusCode(t, w, http.StatusGatewayTimeout)
	assertJSONError(t, w, "timeout")
}

func TestSanitizeFilename(t *testing.T) {
	valid := []string{"label.png", "barcode_label_123456789012345_1.png", "My File.xlsx"}
	for _, name := range valid {
		if _, err := sanitizeFilename(name); err != nil {
			t.Errorf("expected %q to be accepted, got %v", name, err)
		}
	}

	got, err := sanitizeFilename("../../etc/passwd")
	if err != nil {
		t.Fatalf("path components should be stripped, got error %v", err)
	}
	if got != "passwd" {
		t.Errorf("expected 'passwd', got %q", got)
	}

	invalid := []string{"", "   ", ".", ".."}
	for _, name := range invalid {
		if _, err := sanitizeFilename(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
