package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/ericytex/barcode-gene-backend/src/database"
	"github.com/ericytex/barcode-gene-backend/src/logging"
	"github.com/ericytex/barcode-gene-backend/src/models"
)

// PDFService arranges the current label images into a printable A4 grid
// and records the resulting document in the metadata store.
type PDFService struct {
	db         *database.Database
	barcodeDir string
	pdfDir     string
	logger     zerolog.Logger
}

// NewPDFService creates a new PDF service
func NewPDFService(db *database.Database, barcodeDir, pdfDir string) *PDFService {
	return &PDFService{
		db:         db,
		barcodeDir: barcodeDir,
		pdfDir:     pdfDir,
		logger:     logging.NewLogger("pdf"),
	}
}

const (
	defaultGridCols = 5
	defaultGridRows = 12
	pageMarginMM    = 8.0
	cellPaddingMM   = 1.5
)

// CreateFromLabels collects every label PNG into a grid PDF, persists its
// record under sessionID and returns the PDF filename and size.
// ErrNoLabelImages is returned when the label directory holds nothing to
// collect.
func (ps *PDFService) CreateFromLabels(ctx context.Context, pdfFilename string, gridCols, gridRows int, sessionID string) (string, int64, error) {
	if gridCols <= 0 {
		gridCols = defaultGridCols
	}
	if gridRows <= 0 {
		gridRows = defaultGridRows
	}
	if pdfFilename == "" {
		pdfFilename = fmt.Sprintf("barcode_collection_%s.pdf", time.Now().Format("20060102_150405"))
	}

	images, err := filepath.Glob(filepath.Join(ps.barcodeDir, "*.png"))
	if err != nil {
		return "", 0, fmt.Errorf("failed to list label images: %w", err)
	}
	if len(images) == 0 {
		return "", 0, ErrNoLabelImages
	}
	sort.Strings(images)

	if err := os.MkdirAll(ps.pdfDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create pdf directory: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pageW, pageH := pdf.GetPageSize()
	cellW := (pageW - 2*pageMarginMM) / float64(gridCols)
	cellH := (pageH - 2*pageMarginMM) / float64(gridRows)
	imgW := cellW - 2*cellPaddingMM
	imgH := cellH - 2*cellPaddingMM

	perPage := gridCols * gridRows
	for i, path := range images {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		slot := i % perPage
		row := slot / gridCols
		col := slot % gridCols

		x := pageMarginMM + float64(col)*cellW + cellPaddingMM
		y := pageMarginMM + float64(row)*cellH + cellPaddingMM

		pdf.ImageOptions(path, x, y, imgW, imgH, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	pdfPath := filepath.Join(ps.pdfDir, pdfFilename)
	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return "", 0, fmt.Errorf("failed to write pdf: %w", err)
	}

	var size int64
	if info, err := os.Stat(pdfPath); err == nil {
		size = info.Size()
	}

	createdAt := time.Now().Format(time.RFC3339)
	if _, err := ps.db.InsertBarcodeRecord(ctx, &models.BarcodeRecord{
		Filename:          pdfFilename,
		FilePath:          pdfPath,
		ArchivePath:       pdfPath,
		FileType:          models.FileTypePDF,
		FileSize:          size,
		CreatedAt:         createdAt,
		ArchivedAt:        createdAt,
		GenerationSession: sessionID,
		Product:           fmt.Sprintf("Collection of %d barcodes", len(images)),
	}); err != nil {
		ps.logger.Error().Err(err).Str("file", pdfFilename).Msg("failed to persist pdf record")
	}

	ps.logger.Info().
		Str("pdf", pdfFilename).
		Int("images", len(images)).
		Int("cols", gridCols).
		Int("rows", gridRows).
		Msg("pdf collection created")

	return pdfFilename, size, nil
}
