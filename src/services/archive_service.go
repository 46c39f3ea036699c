package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ericytex/barcode-gene-backend/src/database"
	"github.com/ericytex/barcode-gene-backend/src/logging"
	"github.com/ericytex/barcode-gene-backend/src/models"
)

// ArchiveService moves finished output files into per-session archive
// folders instead of deleting them, and answers archive queries from the
// metadata store.
type ArchiveService struct {
	db         *database.Database
	barcodeDir string
	pdfDir     string
	archiveDir string
	logger     zerolog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(db *database.Database, barcodeDir, pdfDir, archiveDir string) *ArchiveService {
	return &ArchiveService{
		db:         db,
		barcodeDir: barcodeDir,
		pdfDir:     pdfDir,
		archiveDir: archiveDir,
		logger:     logging.NewLogger("archive"),
	}
}

// ArchiveResult summarizes one archive pass
type ArchiveResult struct {
	SessionID  string `json:"session_id"`
	TotalFiles int    `json:"total_files"`
	PNGCount   int    `json:"png_count"`
	PDFCount   int    `json:"pdf_count"`
}

// ArchiveExisting moves current label PNGs and PDFs into
// archive/<session>/{barcodes,pdfs} and records the new locations.
// Nothing to move is not an error.
func (as *ArchiveService) ArchiveExisting(ctx context.Context, sessionID string) (*ArchiveResult, error) {
	result := &ArchiveResult{SessionID: sessionID}

	pngs, err := filepath.Glob(filepath.Join(as.barcodeDir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list label images: %w", err)
	}
	pdfs, err := filepath.Glob(filepath.Join(as.pdfDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list pdfs: %w", err)
	}
	if len(pngs) == 0 && len(pdfs) == 0 {
		return result, nil
	}

	archivedAt := time.Now().Format(time.RFC3339)

	moved, err := as.moveAll(ctx, pngs, filepath.Join(as.archiveDir, sessionID, "barcodes"), archivedAt)
	if err != nil {
		return nil, err
	}
	result.PNGCount = moved

	moved, err = as.moveAll(ctx, pdfs, filepath.Join(as.archiveDir, sessionID, "pdfs"), archivedAt)
	if err != nil {
		return nil, err
	}
	result.PDFCount = moved
	result.TotalFiles = result.PNGCount + result.PDFCount

	as.logger.Info().
		Str("session", sessionID).
		Int("png", result.PNGCount).
		Int("pdf", result.PDFCount).
		Msg("existing files archived")

	return result, nil
}

func (as *ArchiveService) moveAll(ctx context.Context, files []string, destDir, archivedAt string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create archive directory: %w", err)
	}

	moved := 0
	for _, src := range files {
		name := filepath.Base(src)
		dst := filepath.Join(destDir, name)
		if err := os.Rename(src, dst); err != nil {
			as.logger.Warn().Err(err).Str("file", name).Msg("failed to archive file")
			continue
		}
		if err := as.db.UpdateArchivePath(ctx, name, dst, archivedAt); err != nil {
			as.logger.Warn().Err(err).Str("file", name).Msg("failed to record archive path")
		}
		moved++
	}
	return moved, nil
}

// Statistics aggregates the metadata store
func (as *ArchiveService) Statistics(ctx context.Context) (*models.ArchiveStatistics, error) {
	return as.db.GetStatistics(ctx)
}

// ListSessions returns recent generation sessions
func (as *ArchiveService) ListSessions(ctx context.Context, limit int) ([]models.GenerationSession, error) {
	if limit <= 0 {
		limit = 10
	}
	return as.db.GetRecentSessions(ctx, limit)
}

// SessionFiles returns the file records of one session
func (as *ArchiveService) SessionFiles(ctx context.Context, sessionID string) ([]models.BarcodeRecord, error) {
	return as.db.GetFilesBySession(ctx, sessionID)
}

// CleanupOldFiles removes files older than maxAge from the given
// directories. Runs once at startup; leftover uploads and stale outputs
// have no value after a day.
func (as *ArchiveService) CleanupOldFiles(dirs []string, maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		as.logger.Info().Int("removed", removed).Msg("stale files cleaned up")
	}
}
