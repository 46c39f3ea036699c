package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ericytex/barcode-gene-backend/src/database"
	"github.com/ericytex/barcode-gene-backend/src/logging"
	"github.com/ericytex/barcode-gene-backend/src/models"
)

// BarcodeService runs the generation pipeline: archive previous output,
// resolve each input item, render labels in parallel, persist metadata and
// optionally assemble the PDF collection.
type BarcodeService struct {
	db       *database.Database
	renderer *LabelRenderer
	pdf      *PDFService
	archive  *ArchiveService

	barcodeDir  string
	imeiLogPath string
	workers     int

	logger zerolog.Logger
}

// NewBarcodeService creates a new barcode service
func NewBarcodeService(db *database.Database, renderer *LabelRenderer, pdf *PDFService, archive *ArchiveService, barcodeDir, logsDir string, workers int) *BarcodeService {
	if workers <= 0 {
		workers = 1
	}
	return &BarcodeService{
		db:          db,
		renderer:    renderer,
		pdf:         pdf,
		archive:     archive,
		barcodeDir:  barcodeDir,
		imeiLogPath: filepath.Join(logsDir, "imei_log.csv"),
		workers:     workers,
		logger:      logging.NewLogger("barcode"),
	}
}

// GenerateOptions controls one generation run
type GenerateOptions struct {
	CreatePDF      bool
	PDFGridCols    int
	PDFGridRows    int
	AutoSecondIMEI bool
	ExcelFilename  string // recorded on the session when the run came from an upload
}

// GenerateResult reports what a run produced
type GenerateResult struct {
	SessionID     string
	Files         []string
	PDFFile       string // empty when no PDF was requested or produced
	ArchivedCount int
}

// Generate runs the full pipeline for the given items. It honors ctx
// between items so an abandoned or timed-out request stops consuming
// resources. Returns ErrNoBarcodesGenerated when no item was usable.
func (bs *BarcodeService) Generate(ctx context.Context, items []models.BarcodeItem, opts GenerateOptions) (*GenerateResult, error) {
	now := time.Now()

	// Previous run's output moves into the archive before new files land
	archived, err := bs.archive.ArchiveExisting(ctx, "cleanup_"+now.Format("20060102_150405"))
	if err != nil {
		return nil, fmt.Errorf("failed to archive existing files: %w", err)
	}

	sessionID := "session_" + now.Format("20060102_150405")

	var usedIMEIs map[string]struct{}
	if opts.AutoSecondIMEI {
		usedIMEIs = bs.loadUsedIMEIs()
	}

	resolved := bs.resolveItems(items, opts.AutoSecondIMEI, usedIMEIs)
	if len(resolved) == 0 {
		return nil, ErrNoBarcodesGenerated
	}

	if err := os.MkdirAll(bs.barcodeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	createdAt := now.Format(time.RFC3339)
	files := make([]string, len(resolved))
	var totalSize int64
	var sizeMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.workers)

	for i, item := range resolved {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			filename := fmt.Sprintf("barcode_label_%s_%d.png", item.input.IMEI, item.index+1)
			path := filepath.Join(bs.barcodeDir, filename)

			size, err := bs.renderer.RenderToFile(item.input, path)
			if err != nil {
				bs.logger.Error().Err(err).Str("imei", item.input.IMEI).Msg("failed to render label")
				return nil // one bad item must not sink the run
			}

			if _, err := bs.db.InsertBarcodeRecord(gctx, &models.BarcodeRecord{
				Filename:          filename,
				FilePath:          path,
				ArchivePath:       path,
				FileType:          models.FileTypePNG,
				FileSize:          size,
				CreatedAt:         createdAt,
				ArchivedAt:        createdAt,
				GenerationSession: sessionID,
				IMEI:              item.input.IMEI,
				BoxID:             item.input.SecondValue,
				Model:             item.input.Model,
				Product:           item.product,
				Color:             item.input.Color,
				DN:                item.input.DN,
			}); err != nil {
				bs.logger.Error().Err(err).Str("file", filename).Msg("failed to persist record")
			}

			sizeMu.Lock()
			files[i] = filename
			totalSize += size
			sizeMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	generated := make([]string, 0, len(files))
	for _, f := range files {
		if f != "" {
			generated = append(generated, f)
		}
	}
	if len(generated) == 0 {
		return nil, ErrNoBarcodesGenerated
	}

	if opts.AutoSecondIMEI {
		for _, item := range resolved {
			if item.generatedIMEI2 {
				bs.appendIMEILog(item.input.IMEI, item.input.SecondValue)
			}
		}
	}

	result := &GenerateResult{
		SessionID:     sessionID,
		Files:         generated,
		ArchivedCount: archived.TotalFiles,
	}

	pdfCount := 0
	if opts.CreatePDF {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdfFile, pdfSize, err := bs.pdf.CreateFromLabels(ctx, "", opts.PDFGridCols, opts.PDFGridRows, sessionID)
		if err != nil {
			bs.logger.Error().Err(err).Msg("failed to create pdf collection")
		} else {
			result.PDFFile = pdfFile
			pdfCount = 1
			totalSize += pdfSize
		}
	}

	if _, err := bs.db.InsertGenerationSession(ctx, &models.GenerationSession{
		SessionID:     sessionID,
		CreatedAt:     createdAt,
		TotalFiles:    len(generated) + pdfCount,
		PNGCount:      len(generated),
		PDFCount:      pdfCount,
		TotalSize:     totalSize,
		ExcelFilename: opts.ExcelFilename,
	}); err != nil {
		bs.logger.Error().Err(err).Str("session", sessionID).Msg("failed to persist session")
	}

	bs.logger.Info().
		Str("session", sessionID).
		Int("labels", len(generated)).
		Bool("pdf", result.PDFFile != "").
		Msg("generation run complete")

	return result, nil
}

// resolvedItem is a validated input with its second symbol decided
type resolvedItem struct {
	index          int
	input          renderInput
	product        string
	generatedIMEI2 bool
}

// resolveItems validates and normalizes raw items. Unusable rows are
// skipped, not fatal; indexes are preserved for filename numbering.
func (bs *BarcodeService) resolveItems(items []models.BarcodeItem, autoIMEI2 bool, usedIMEIs map[string]struct{}) []resolvedItem {
	resolved := make([]resolvedItem, 0, len(items))

	for i, item := range items {
		imei := strings.TrimSpace(item.IMEI)
		if imei == "" || isNullish(imei) {
			bs.logger.Warn().Int("item", i).Msg("skipping item without IMEI")
			continue
		}
		if len(imei) < 5 {
			bs.logger.Warn().Int("item", i).Int("length", len(imei)).Msg("skipping item with short IMEI")
			continue
		}

		model := strings.TrimSpace(item.Model)
		if model == "" {
			model = "Unknown"
		}

		colorValue := strings.TrimSpace(item.Color)
		product := strings.TrimSpace(item.Product)
		if product != "" && !isNullish(product) {
			colorValue = ExtractColorFromProduct(product)
		} else if colorValue == "" {
			colorValue = "Unknown Color"
		}

		dn := strings.TrimSpace(item.DN)
		if dn == "" {
			dn = "M8N7"
		}

		secondValue := strings.TrimSpace(item.BoxID)
		secondLabel := "Box ID"
		generated := false
		if autoIMEI2 {
			imei2 := strings.TrimSpace(item.IMEI2)
			if imei2 == "" {
				imei2 = generateUniqueIMEI(imei, usedIMEIs)
				generated = true
			}
			secondValue = imei2
			secondLabel = "IMEI"
		}

		resolved = append(resolved, resolvedItem{
			index: i,
			input: renderInput{
				IMEI:        imei,
				SecondValue: secondValue,
				SecondLabel: secondLabel,
				Model:       model,
				Color:       colorValue,
				DN:          dn,
			},
			product:        product,
			generatedIMEI2: generated,
		})
	}

	return resolved
}

// ExtractColorFromProduct pulls the color out of product strings like
// "SMART 8 64+3 SHINY GOLD": everything after the storage token ("64+3"),
// uppercased. Without text after the token (or no token at all) the last
// two words are assumed to be the color.
func ExtractColorFromProduct(product string) string {
	parts := strings.Fields(strings.TrimSpace(product))
	if len(parts) < 2 {
		return "Unknown Color"
	}

	for i, part := range parts {
		if strings.Contains(part, "+") && strings.ContainsAny(part, "0123456789") {
			if i+1 < len(parts) {
				return strings.ToUpper(strings.Join(parts[i+1:], " "))
			}
			break
		}
	}

	return strings.ToUpper(strings.Join(parts[len(parts)-2:], " "))
}

// generateUniqueIMEI builds a second IMEI from the first 8 characters of
// the base plus a random 7-digit suffix not seen before
func generateUniqueIMEI(base string, used map[string]struct{}) string {
	prefix := base
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	for {
		candidate := fmt.Sprintf("%s%07d", prefix, rand.Intn(9000000)+1000000)
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
	}
}

// loadUsedIMEIs reads previously issued second IMEIs from the log
func (bs *BarcodeService) loadUsedIMEIs() map[string]struct{} {
	used := make(map[string]struct{})

	f, err := os.Open(bs.imeiLogPath)
	if err != nil {
		return used
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return used
	}
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue // header
		}
		if rec[1] != "" {
			used[rec[1]] = struct{}{}
		}
	}
	return used
}

// appendIMEILog records an issued (IMEI, IMEI2) pair
func (bs *BarcodeService) appendIMEILog(imei, imei2 string) {
	if err := os.MkdirAll(filepath.Dir(bs.imeiLogPath), 0o755); err != nil {
		return
	}

	_, statErr := os.Stat(bs.imeiLogPath)
	f, err := os.OpenFile(bs.imeiLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		bs.logger.Warn().Err(err).Msg("failed to open imei log")
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		_ = w.Write([]string{"IMEI", "IMEI2"})
	}
	_ = w.Write([]string{imei, imei2})
	w.Flush()
}

// isNullish matches spreadsheet placeholder values that mean "no data"
func isNullish(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return true
	}
	return false
}
