package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ericytex/barcode-gene-backend/src/metrics"
	"github.com/ericytex/barcode-gene-backend/src/models"
	"github.com/ericytex/barcode-gene-backend/src/services"
)

// BarcodeHandler handles generation, upload, listing and download requests
type BarcodeHandler struct {
	barcodes *services.BarcodeService
	excel    *services.ExcelService
	pdf      *services.PDFService
	metrics  *metrics.Metrics

	barcodeDir     string
	pdfDir         string
	uploadDir      string
	backendTimeout time.Duration
}

// NewBarcodeHandler creates a new barcode handler
func NewBarcodeHandler(barcodes *services.BarcodeService, excel *services.ExcelService, pdf *services.PDFService, m *metrics.Metrics, barcodeDir, pdfDir, uploadDir string, backendTimeout time.Duration) *BarcodeHandler {
	return &BarcodeHandler{
		barcodes:       barcodes,
		excel:          excel,
		pdf:            pdf,
		metrics:        m,
		barcodeDir:     barcodeDir,
		pdfDir:         pdfDir,
		uploadDir:      uploadDir,
		backendTimeout: backendTimeout,
	}
}

// HandleGenerate generates barcode labels from a JSON payload
func (bh *BarcodeHandler) HandleGenerate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid JSON payload")
		return
	}
	if len(req.Items) == 0 {
		respondError(c, http.StatusBadRequest, "bad_request", "items must not be empty")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bh.backendTimeout)
	defer cancel()

	result, err := bh.barcodes.Generate(ctx, req.Items, services.GenerateOptions{
		CreatePDF:      req.CreatePDF,
		PDFGridCols:    req.PDFGridCols,
		PDFGridRows:    req.PDFGridRows,
		AutoSecondIMEI: req.AutoSecondIMEI(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	bh.recordRunMetrics(result)
	c.JSON(http.StatusOK, generationResponse(result, fmt.Sprintf("Successfully generated %d barcodes", len(result.Files))))
}

// HandleUploadExcel accepts a workbook upload and runs the generation
// pipeline over its rows. The body size cap has already been enforced by
// middleware before any parsing happens here.
func (bh *BarcodeHandler) HandleUploadExcel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "multipart field 'file' is required")
		return
	}

	if err := bh.excel.ValidateExtension(fileHeader.Filename); err != nil {
		respondServiceError(c, err)
		return
	}

	safeName, err := sanitizeFilename(fileHeader.Filename)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := os.MkdirAll(bh.uploadDir, 0o755); err != nil {
		log.Error().Err(err).Msg("failed to create upload directory")
		respondError(c, http.StatusInternalServerError, "backend_failure", "failed to store upload")
		return
	}

	// Unique prefix so concurrent uploads of the same workbook never clash
	tempPath := filepath.Join(bh.uploadDir, uuid.New().String()[:8]+"_"+safeName)
	if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
		log.Error().Err(err).Msg("failed to save upload")
		respondError(c, http.StatusInternalServerError, "backend_failure", "failed to store upload")
		return
	}
	defer os.Remove(tempPath)

	items, err := bh.excel.ParseFile(tempPath)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	bh.metrics.ExcelUploadsTotal.Inc()

	ctx, cancel := context.WithTimeout(c.Request.Context(), bh.backendTimeout)
	defer cancel()

	result, err := bh.barcodes.Generate(ctx, items, services.GenerateOptions{
		CreatePDF:      formBool(c, "create_pdf", true),
		PDFGridCols:    formInt(c, "pdf_grid_cols", 0),
		PDFGridRows:    formInt(c, "pdf_grid_rows", 0),
		AutoSecondIMEI: formBool(c, "auto_generate_second_imei", true),
		ExcelFilename:  safeName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	bh.recordRunMetrics(result)
	c.JSON(http.StatusOK, generationResponse(result, fmt.Sprintf("Successfully generated %d barcodes from Excel file", len(result.Files))))
}

// HandleListFiles lists generated label PNGs and PDF collections
func (bh *BarcodeHandler) HandleListFiles(c *gin.Context) {
	pngs, err := listFilenames(bh.barcodeDir, ".png")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "backend_failure", "failed to list files")
		return
	}
	pdfs, err := listFilenames(bh.pdfDir, ".pdf")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "backend_failure", "failed to list files")
		return
	}

	files := append(pngs, pdfs...)
	c.JSON(http.StatusOK, models.FileListResponse{
		Success:    true,
		Files:      files,
		TotalCount: len(files),
	})
}

// HandleDownload serves a generated label PNG
func (bh *BarcodeHandler) HandleDownload(c *gin.Context) {
	bh.serveFile(c, bh.barcodeDir, "image/png")
}

// HandleDownloadPDF serves a generated PDF collection
func (bh *BarcodeHandler) HandleDownloadPDF(c *gin.Context) {
	bh.serveFile(c, bh.pdfDir, "application/pdf")
}

func (bh *BarcodeHandler) serveFile(c *gin.Context, dir, contentType string) {
	safeName, err := sanitizeFilename(c.Param("filename"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	path := filepath.Join(dir, safeName)
	if _, err := os.Stat(path); err != nil {
		respondError(c, http.StatusNotFound, "not_found", "file not found")
		return
	}

	c.Header("Content-Type", contentType)
	c.FileAttachment(path, safeName)
}

// HandleCreatePDF assembles a PDF from the labels already on disk
func (bh *BarcodeHandler) HandleCreatePDF(c *gin.Context) {
	pdfFilename := ""
	if v := c.Query("pdf_filename"); v != "" {
		safe, err := sanitizeFilename(v)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		pdfFilename = safe
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bh.backendTimeout)
	defer cancel()

	sessionID := "manual_" + time.Now().Format("20060102_150405")
	pdfFile, _, err := bh.pdf.CreateFromLabels(ctx, pdfFilename, queryInt(c, "grid_cols", 0), queryInt(c, "grid_rows", 0), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	bh.metrics.PDFsCreatedTotal.Inc()
	c.JSON(http.StatusOK, models.GenerationResponse{
		Success:        true,
		Message:        "PDF created successfully from existing barcodes",
		GeneratedFiles: []string{},
		PDFFile:        &pdfFile,
		TotalItems:     0,
	})
}

func (bh *BarcodeHandler) recordRunMetrics(result *services.GenerateResult) {
	bh.metrics.LabelsGeneratedTotal.Add(float64(len(result.Files)))
	if result.PDFFile != "" {
		bh.metrics.PDFsCreatedTotal.Inc()
	}
	if result.ArchivedCount > 0 {
		bh.metrics.FilesArchivedTotal.Add(float64(result.ArchivedCount))
	}
}

func generationResponse(result *services.GenerateResult, message string) models.GenerationResponse {
	resp := models.GenerationResponse{
		Success:        true,
		Message:        message,
		GeneratedFiles: result.Files,
		TotalItems:     len(result.Files),
	}
	if result.PDFFile != "" {
		pdf := result.PDFFile
		resp.PDFFile = &pdf
	}
	return resp
}

// sanitizeFilename strips any path components from a client-supplied name
func sanitizeFilename(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == ".." ||
		strings.ContainsAny(base, "/\\") || strings.Contains(base, "..") {
		return "", services.ErrInvalidFilename
	}
	return base, nil
}

func listFilenames(dir, ext string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

func formBool(c *gin.Context, field string, defaultValue bool) bool {
	v := c.PostForm(field)
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func formInt(c *gin.Context, field string, defaultValue int) int {
	v := c.PostForm(field)
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func queryInt(c *gin.Context, field string, defaultValue int) int {
	v := c.Query(field)
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}
